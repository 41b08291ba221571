package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handleKey stores, clears or reports the access key sent with every request.
// The user's message is deleted afterwards so the key doesn't linger in chat.
func (h *Handler) handleKey(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	parts := strings.SplitN(msg.Text, " ", 2)
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch {
	case arg == "":
		status := "not set"
		if h.prefs.Get(ctx, chatID).AccessKey != "" {
			status = "set"
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🔑 Access key is " + status + ".\nUse /key <value> to set it or /key clear to remove it.",
		})
		return

	case arg == "clear":
		if err := h.prefs.SetAccessKey(ctx, chatID, ""); err != nil {
			slog.Error("clear access key", "error", err, "chat_id", chatID)
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Couldn't remove the key."})
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "🔑 Access key removed."})

	default:
		if err := h.prefs.SetAccessKey(ctx, chatID, arg); err != nil {
			slog.Error("set access key", "error", err, "chat_id", chatID)
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Couldn't save the key."})
			return
		}
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "🔑 Access key saved."})
	}

	// Best effort: keep the secret out of the visible history.
	b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: msg.ID})
}

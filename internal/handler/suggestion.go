package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/service"
)

// handleSuggestion dispatches a clicked suggestion. Callback data carries the
// source message id and suggestion index; the text is re-parsed from the
// timeline, since callback payloads are too small to hold it.
func (h *Handler) handleSuggestion(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID

	parts := strings.Split(strings.TrimPrefix(cb.Data, "sg_"), "_")
	if len(parts) != 2 {
		return
	}
	msgID, err1 := strconv.ParseInt(parts[0], 10, 64)
	idx, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return
	}

	tl := h.conversations.Timeline(ctx, chatID)
	msg, ok := tl.MessageByID(msgID)
	if !ok {
		// Conversation was cleared since the keyboard was sent.
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "💬 That suggestion belongs to an earlier conversation.",
		})
		return
	}

	parsed := service.ParseReply(msg.Text)
	if idx < 0 || idx >= len(parsed.Suggestions) {
		return
	}

	h.dispatch(ctx, b, chatID, parsed.Suggestions[idx])
}

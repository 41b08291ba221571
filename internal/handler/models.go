package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/middleware"
	tg "github.com/pale-fire/chatpilot/internal/telegram"
)

func (h *Handler) handleModels(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	selected := ""
	if p := middleware.GetPrefs(ctx); p != nil {
		selected = p.Model
	}

	var rows [][]models.InlineKeyboardButton
	var lines []string
	for _, m := range h.catalog.Models {
		label := m.Name
		if m.ID == selected {
			label = "✅ " + label
		}
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, "m_"+m.ID)))
		lines = append(lines, fmt.Sprintf("*%s* — %s", m.Name, m.Description))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🤖 *Models:*\n\n" + strings.Join(lines, "\n"),
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleModelSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	id := strings.TrimPrefix(cb.Data, "m_")

	model, err := h.catalog.Model(id)
	if err != nil {
		slog.Warn("model select", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ That model is no longer offered."})
		return
	}

	if err := h.prefs.SetModel(ctx, chatID, model.ID); err != nil {
		slog.Error("set model", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Couldn't save the model choice."})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🤖 Model set to " + model.Name + ".",
	})
}

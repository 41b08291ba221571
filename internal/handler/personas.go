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

func (h *Handler) handlePersonas(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	selected := ""
	if p := middleware.GetPrefs(ctx); p != nil {
		selected = p.Persona
	}

	var rows [][]models.InlineKeyboardButton
	var lines []string
	for _, p := range h.catalog.Personas {
		label := p.Name
		if p.ID == selected {
			label = "✅ " + label
		}
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, "pe_"+p.ID)))
		lines = append(lines, fmt.Sprintf("*%s* — %s", p.Name, p.Description))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🎭 *Personas:*\n\n" + strings.Join(lines, "\n"),
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handlePersonaSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	id := strings.TrimPrefix(cb.Data, "pe_")

	persona, err := h.catalog.Persona(id)
	if err != nil {
		slog.Warn("persona select", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ That persona is no longer offered."})
		return
	}

	if err := h.prefs.SetPersona(ctx, chatID, persona.ID); err != nil {
		slog.Error("set persona", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Couldn't save the persona choice."})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🎭 Persona set to " + persona.Name + ".",
	})
}

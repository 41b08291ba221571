package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/middleware"
	tg "github.com/pale-fire/chatpilot/internal/telegram"
)

func (h *Handler) handleLanguage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	selected := config.DefaultDictationLanguage
	if p := middleware.GetPrefs(ctx); p != nil {
		selected = p.DictationLanguage
	}

	var rows [][]models.InlineKeyboardButton
	for _, lang := range config.DictationLanguages {
		label := lang
		if lang == selected {
			label = "✅ " + label
		}
		rows = append(rows, tg.ButtonRow(tg.InlineButton(label, "lang_"+lang)))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🌐 Dictation language:",
		ReplyMarkup: tg.InlineKeyboard(rows...),
	})
}

func (h *Handler) handleLanguageSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	lang := strings.TrimPrefix(cb.Data, "lang_")

	known := false
	for _, l := range config.DictationLanguages {
		if l == lang {
			known = true
			break
		}
	}
	if !known {
		return
	}

	if err := h.prefs.SetDictationLanguage(ctx, chatID, lang); err != nil {
		slog.Error("set dictation language", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Couldn't save the language choice."})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "🌐 Dictation language set to " + lang + "."})
}

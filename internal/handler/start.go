package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/middleware"
)

const introNotice = "ℹ️ One thing before we start: replies come from an AI model " +
	"and can be wrong. Photos you send are forwarded to the assistant service " +
	"for the current request only."

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	chatID := update.Message.Chat.ID

	// One-time intro notice, remembered across sessions.
	p := middleware.GetPrefs(ctx)
	if p == nil {
		prefs := h.prefs.Get(ctx, chatID)
		p = &prefs
	}
	if !p.IntroSeen {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: introNotice})
		if err := h.prefs.MarkIntroSeen(ctx, chatID); err != nil {
			slog.Error("mark intro seen", "error", err, "chat_id", chatID)
		}
	}

	welcomeText := "👋 *Welcome!*\n\n" +
		"Send me a message, a photo or a voice note and I'll answer.\n\n" +
		"📋 *Commands:*\n" +
		"/models — Choose a model\n" +
		"/personas — Choose a persona\n" +
		"/language — Dictation language\n" +
		"/key — Access key\n" +
		"/new — Start a fresh conversation"

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      welcomeText,
		ParseMode: models.ParseModeMarkdown,
	})

	// Ensure the timeline exists (seeds the greeting on first contact).
	h.conversations.Timeline(ctx, chatID)
}

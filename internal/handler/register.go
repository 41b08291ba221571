package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers all command and callback handlers on the bot instance.
// Plain text, photo and voice updates are routed from the default handler in
// main.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNew)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/models", bot.MatchTypePrefix, h.handleModels)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/personas", bot.MatchTypePrefix, h.handlePersonas)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/language", bot.MatchTypePrefix, h.handleLanguage)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/key", bot.MatchTypePrefix, h.handleKey)

	// Selection callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "m_", bot.MatchTypePrefix, h.handleModelSelect)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "pe_", bot.MatchTypePrefix, h.handlePersonaSelect)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "lang_", bot.MatchTypePrefix, h.handleLanguageSelect)

	// Suggestion clicks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "sg_", bot.MatchTypePrefix, h.handleSuggestion)

	// Pending input callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "draft_send", bot.MatchTypeExact, h.handleDraftSend)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "draft_clear", bot.MatchTypeExact, h.handleDraftClear)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "img_cancel", bot.MatchTypeExact, h.handleImageCancel)
}

// RouteMessage sends non-command private messages to the right input
// modality handler.
func (h *Handler) RouteMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Chat.Type != "private" {
		return
	}

	switch {
	case msg.Voice != nil || msg.Audio != nil:
		h.HandleVoice(ctx, b, update)
	case len(msg.Photo) > 0 || msg.Document != nil:
		h.HandlePhoto(ctx, b, update)
	case msg.Text != "":
		h.HandleText(ctx, b, update)
	}
}

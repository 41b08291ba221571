package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handleNew clears the conversation: pending input is dropped, the timeline
// is reseeded to a single greeting.
func (h *Handler) handleNew(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	chatID := update.Message.Chat.ID

	h.input.Clear(chatID)
	greeting := h.conversations.Timeline(ctx, chatID).Clear(ctx)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🧹 Conversation cleared.\n\n" + greeting.Text,
	})
}

// handleDraftSend dispatches whatever is pending (dictated draft and/or
// selected attachment).
func (h *Handler) handleDraftSend(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	h.dispatch(ctx, b, cb.Message.Message.Chat.ID, "")
}

// handleDraftClear discards the dictated draft but keeps any selected image.
func (h *Handler) handleDraftClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	h.input.ClearDraft(chatID)
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "🗑 Draft discarded."})
}

// handleImageCancel abandons the selected attachment; its preview handle is
// released by the input service.
func (h *Handler) handleImageCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	h.input.SetImage(chatID, nil)
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "✖ Image removed."})
}

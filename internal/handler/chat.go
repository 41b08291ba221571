package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/domain"
	"github.com/pale-fire/chatpilot/internal/ops"
)

// HandleText processes plain private text messages as dispatch intents.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	msg := update.Message
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	h.dispatch(ctx, b, msg.Chat.ID, msg.Text)
}

// dispatch runs one send cycle and maps gate rejections to transient notices.
func (h *Handler) dispatch(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	err := h.dispatcher.Dispatch(ctx, chatID, text)
	if err == nil {
		return
	}

	var notice string
	switch {
	case errors.Is(err, domain.ErrCooldown):
		notice = "⏳ Not so fast. Give it a second and try again."
		ops.DispatchesTotal.WithLabelValues(ops.OutcomeRejected).Inc()
	case errors.Is(err, domain.ErrRequestInFlight):
		notice = "⏳ Wait for the previous reply to finish."
		ops.DispatchesTotal.WithLabelValues(ops.OutcomeRejected).Inc()
	case errors.Is(err, domain.ErrEmptyIntent):
		notice = "✍️ Send some text, a photo or a voice note first."
		ops.DispatchesTotal.WithLabelValues(ops.OutcomeRejected).Inc()
	default:
		slog.Error("dispatch failed", "error", err, "chat_id", chatID)
		notice = domain.ErrorMarker + " Something went wrong. Please try again."
	}

	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: notice})
}

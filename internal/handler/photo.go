package handler

import (
	"context"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	tg "github.com/pale-fire/chatpilot/internal/telegram"
)

// HandlePhoto stages an incoming photo or document as the chat's pending
// attachment. With a caption it dispatches immediately; without one the
// selection waits for text, a voice note, or an explicit send.
func (h *Handler) HandlePhoto(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	var fileID, name, mediaType string
	switch {
	case len(msg.Photo) > 0:
		// Highest resolution variant is last.
		fileID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Document != nil:
		fileID = msg.Document.FileID
		name = msg.Document.FileName
		mediaType = msg.Document.MimeType
	default:
		return
	}

	data, filePath, err := tg.DownloadFile(ctx, b, fileID)
	if err != nil {
		slog.Error("download attachment", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📎 Couldn't fetch that file from Telegram. Try sending it again.",
		})
		return
	}

	if name == "" {
		name = filepath.Base(filePath)
	}
	if mediaType == "" {
		mediaType = mime.TypeByExtension(filepath.Ext(filePath))
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	att, err := h.attachments.Stage(name, mediaType, data)
	if err != nil {
		slog.Error("stage attachment", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📎 Couldn't store that file. Try again.",
		})
		return
	}

	h.input.SetImage(chatID, att)

	if msg.Caption != "" {
		h.dispatch(ctx, b, chatID, msg.Caption)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "📎 Got it: " + name + "\nAdd a message, or send it as is.",
		ReplyMarkup: tg.InlineKeyboard(tg.ButtonRow(
			tg.InlineButton("📤 Send now", "draft_send"),
			tg.InlineButton("✖ Remove", "img_cancel"),
		)),
	})
}

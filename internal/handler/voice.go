package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/middleware"
	tg "github.com/pale-fire/chatpilot/internal/telegram"
)

// HandleVoice feeds a voice note into the dictation controller. The resulting
// transcript lands in the chat's pending draft, not directly in a dispatch.
func (h *Handler) HandleVoice(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	if !h.dictation.Available() {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🎤 Voice input isn't available: no transcription service is configured.",
		})
		return
	}

	var fileID, mimeType string
	switch {
	case msg.Voice != nil:
		fileID = msg.Voice.FileID
		mimeType = msg.Voice.MimeType
	case msg.Audio != nil:
		fileID = msg.Audio.FileID
		mimeType = msg.Audio.MimeType
	default:
		return
	}
	if mimeType == "" {
		mimeType = "audio/ogg"
	}

	audio, _, err := tg.DownloadFile(ctx, b, fileID)
	if err != nil {
		slog.Error("download voice note", "error", err, "chat_id", chatID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🎤 Couldn't fetch that recording from Telegram. Try again.",
		})
		return
	}

	language := ""
	if p := middleware.GetPrefs(ctx); p != nil {
		language = p.DictationLanguage
	}
	if language == "" {
		language = h.prefs.Get(ctx, chatID).DictationLanguage
	}

	h.dictation.Start(ctx, chatID, audio, mimeType, language)
}

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/domain"
	"github.com/pale-fire/chatpilot/internal/service"
	tg "github.com/pale-fire/chatpilot/internal/telegram"
)

// Telegram photo captions are capped well below message length.
const maxCaptionLen = 1024

// TelegramRenderer projects timeline mutations into the chat: a status
// message plus typing indicator while a dispatch is in flight, replaced by
// the rendered reply (or removed) when it settles. It also carries dictation
// notices and draft previews.
type TelegramRenderer struct {
	b *bot.Bot

	mu     sync.Mutex
	status map[statusKey]*statusEntry
}

// statusKey identifies one in-flight dispatch. Loading message ids are
// monotonic per timeline, so different chats routinely produce the same id;
// the chat id keeps their entries apart.
type statusKey struct {
	chatID    int64
	loadingID int64
}

type statusEntry struct {
	messageID  int
	stopTyping context.CancelFunc
}

func NewTelegramRenderer(b *bot.Bot) *TelegramRenderer {
	return &TelegramRenderer{b: b, status: make(map[statusKey]*statusEntry)}
}

func (r *TelegramRenderer) track(chatID, loadingID int64, e *statusEntry) {
	r.mu.Lock()
	r.status[statusKey{chatID: chatID, loadingID: loadingID}] = e
	r.mu.Unlock()
}

func (r *TelegramRenderer) take(chatID, loadingID int64) *statusEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := statusKey{chatID: chatID, loadingID: loadingID}
	e := r.status[key]
	delete(r.status, key)
	return e
}

// UserMessageQueued is a no-op on Telegram: the user's own message is already
// visible in the chat.
func (r *TelegramRenderer) UserMessageQueued(ctx context.Context, chatID int64, msg domain.Message) {}

func (r *TelegramRenderer) LoadingStarted(ctx context.Context, chatID int64, msg domain.Message) {
	entry := &statusEntry{stopTyping: tg.StartTyping(ctx, r.b, chatID)}

	m, err := r.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "⏳ Thinking...",
	})
	if err != nil {
		slog.Warn("send status message", "error", err, "chat_id", chatID)
	} else if m != nil {
		entry.messageID = m.ID
	}

	r.track(chatID, msg.ID, entry)
}

func (r *TelegramRenderer) LoadingReplaced(ctx context.Context, chatID int64, loadingID int64, final *domain.Message) {
	entry := r.take(chatID, loadingID)

	if entry != nil {
		entry.stopTyping()
		if entry.messageID != 0 {
			r.b.DeleteMessage(ctx, &bot.DeleteMessageParams{
				ChatID:    chatID,
				MessageID: entry.messageID,
			})
		}
	}

	if final == nil {
		return
	}
	r.renderBotMessage(ctx, chatID, *final)
}

func (r *TelegramRenderer) renderBotMessage(ctx context.Context, chatID int64, msg domain.Message) {
	if msg.IsError() {
		if _, err := r.b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msg.Text}); err != nil {
			slog.Error("send error message", "error", err, "chat_id", chatID)
		}
		return
	}

	// Suggestions are extracted at render time; the timeline keeps raw text.
	parsed := service.ParseReply(msg.Text)
	body := tg.FlattenHTML(parsed.Body)
	keyboard := suggestionKeyboard(msg.ID, parsed.Suggestions)

	if msg.ImageURL != "" {
		caption := body
		if len([]rune(caption)) > maxCaptionLen {
			caption = string([]rune(caption)[:maxCaptionLen-3]) + "..."
		}
		if err := tg.SendPhotoURL(ctx, r.b, chatID, msg.ImageURL, caption, keyboard); err != nil {
			slog.Error("send reply photo", "error", err, "chat_id", chatID)
		}
		return
	}

	if err := tg.SendLongMessage(ctx, r.b, chatID, body, keyboard); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}

// Notify surfaces a transient notice that never enters the timeline.
func (r *TelegramRenderer) Notify(ctx context.Context, chatID int64, text string) {
	if _, err := r.b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		slog.Warn("send notice", "error", err, "chat_id", chatID)
	}
}

// DraftUpdated shows the pending input after a dictation transcript landed.
func (r *TelegramRenderer) DraftUpdated(ctx context.Context, chatID int64, draft string) {
	_, err := r.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("🎤 Heard:\n\n%s", draft),
		ReplyMarkup: tg.InlineKeyboard(tg.ButtonRow(
			tg.InlineButton("📤 Send", "draft_send"),
			tg.InlineButton("🗑 Discard", "draft_clear"),
		)),
	})
	if err != nil {
		slog.Warn("send draft preview", "error", err, "chat_id", chatID)
	}
}

func suggestionKeyboard(msgID int64, suggestions []string) models.ReplyMarkup {
	if len(suggestions) == 0 {
		return nil
	}
	rows := make([][]models.InlineKeyboardButton, 0, len(suggestions))
	for i, s := range suggestions {
		label := s
		if len([]rune(label)) > 40 {
			label = string([]rune(label)[:39]) + "…"
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton("💬 "+label, fmt.Sprintf("sg_%d_%d", msgID, i)),
		))
	}
	return tg.InlineKeyboard(rows...)
}

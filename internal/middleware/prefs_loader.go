package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/service"
)

type ctxKey string

const PrefsKey ctxKey = "prefs"

// GetPrefs extracts the chat preferences from context.
func GetPrefs(ctx context.Context) *service.Prefs {
	p, ok := ctx.Value(PrefsKey).(*service.Prefs)
	if !ok {
		return nil
	}
	return p
}

// PrefsLoader returns middleware that loads the chat's preferences into
// context for every private-chat update.
func PrefsLoader(prefs *service.PrefsService) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var chatID int64

			if update.Message != nil {
				chatID = update.Message.Chat.ID
			} else if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
				chatID = update.CallbackQuery.Message.Message.Chat.ID
			}

			if chatID != 0 {
				p := prefs.Get(ctx, chatID)
				ctx = context.WithValue(ctx, PrefsKey, &p)
			}

			next(ctx, b, update)
		}
	}
}

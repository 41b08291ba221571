package middleware

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pale-fire/chatpilot/internal/config"
	"golang.org/x/time/rate"
)

// RateLimit returns middleware enforcing a per-chat token bucket. It guards
// the whole update surface; the dispatch cooldown underneath is stricter and
// specific to sends.
func RateLimit() bot.Middleware {
	var mu sync.Mutex
	limiters := make(map[int64]*rate.Limiter)

	limiterFor := func(chatID int64) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[chatID]
		if !ok {
			l = rate.NewLimiter(rate.Limit(config.RateLimitPerMinute)/60, config.RateLimitBurst)
			limiters[chatID] = l
		}
		return l
	}

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages (not callbacks or other updates)
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			if !limiterFor(chatID).Allow() {
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ Too many requests. Give it a moment.",
				})
				return
			}

			next(ctx, b, update)
		}
	}
}

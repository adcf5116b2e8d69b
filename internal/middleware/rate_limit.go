package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/postrelay/internal/config"
)

// RateCounter counts messages per chat in the current minute.
type RateCounter interface {
	Increment(ctx context.Context, chatID int64) (int64, error)
}

// RateLimit returns middleware that enforces a per-minute message limit per
// chat. A non-positive limit disables it.
func RateLimit(counter RateCounter, limit int) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		if limit <= 0 || counter == nil {
			return next
		}
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages (not callbacks or other updates)
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID

			count, err := counter.Increment(ctx, chatID)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "chat_id", chatID)
				next(ctx, b, update)
				return
			}

			if count > int64(limit) {
				slog.Debug("rate limited", "chat_id", chatID, "count", count, "limit", limit)
				// Only the first rejected message gets a reply.
				if count == int64(limit)+1 {
					b.SendMessage(ctx, &bot.SendMessageParams{
						ChatID: chatID,
						Text:   config.TextTooManyRequest,
					})
				}
				return
			}

			next(ctx, b, update)
		}
	}
}

package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (h *Handler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		slog.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) answer(ctx context.Context, b *bot.Bot, callbackID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		slog.Debug("failed to answer callback", "error", err)
	}
}

// callbackMessage returns the message a callback button belongs to, or nil
// when it is no longer accessible.
func callbackMessage(update *models.Update) *models.Message {
	return update.CallbackQuery.Message.Message
}

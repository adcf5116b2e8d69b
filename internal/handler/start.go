package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/postrelay/internal/config"
	"github.com/set-night/postrelay/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.resetAndReply(ctx, b, update, config.TextWelcome)
}

func (h *Handler) handleReset(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.resetAndReply(ctx, b, update, config.TextReset)
}

func (h *Handler) resetAndReply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	userID := update.Message.From.ID
	if err := h.conversation.Reset(ctx, userID); err != nil {
		slog.Error("failed to reset session", "user_id", userID, "error", err)
		h.tgLogger.LogError(err, "reset session")
		h.reply(ctx, b, update.Message.Chat.ID, config.TextError, nil)
		return
	}

	h.reply(ctx, b, update.Message.Chat.ID, text, telegram.MainMenu())
}

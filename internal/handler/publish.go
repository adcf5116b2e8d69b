package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/postrelay/internal/config"
	"github.com/set-night/postrelay/internal/domain"
	"github.com/set-night/postrelay/internal/service"
)

func (h *Handler) handlePublish(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	channel, proposalID, err := service.ParsePublishData(cb.Data)
	if err != nil {
		slog.Warn("invalid publish callback", "data", cb.Data, "error", err)
		h.answer(ctx, b, cb.ID, "")
		return
	}

	msg := callbackMessage(update)
	if msg == nil {
		h.answer(ctx, b, cb.ID, config.TextStale)
		return
	}

	res, err := h.publisher.Publish(ctx, service.PublishRequest{
		Channel:    channel,
		ProposalID: proposalID,
		AdminID:    cb.From.ID,
		Instance:   domain.Content{ChatID: msg.Chat.ID, MessageID: msg.ID},
	})
	switch {
	case err != nil:
		slog.Error("failed to publish", "channel_id", channel, "proposal_id", proposalID, "admin_id", cb.From.ID, "error", err)
		h.tgLogger.LogError(err, fmt.Sprintf("publish to %s", channel))
		h.answer(ctx, b, cb.ID, fmt.Sprintf(config.TextPublishFailed, res.ChannelName))
	case res.AlreadyPublished:
		h.answer(ctx, b, cb.ID, config.TextAlreadyDone)
	default:
		h.tgLogger.LogPublication(channel, res.ChannelName, cb.From.ID, res.MessageID)
		h.answer(ctx, b, cb.ID, fmt.Sprintf(config.TextPublished, res.ChannelName))
	}
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/postrelay/internal/config"
	"github.com/set-night/postrelay/internal/domain"
	"github.com/set-night/postrelay/internal/service"
	"github.com/set-night/postrelay/internal/telegram"
)

func channelKeyboard(channels []domain.Channel) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(channels))
	for _, ch := range channels {
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton(ch.DisplayName(), service.ChannelChoiceData(ch.ID)),
		))
	}
	return telegram.InlineKeyboard(rows...)
}

func (h *Handler) handlePropose(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	channels, err := h.conversation.RequestSubmission(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNoChannels):
		h.reply(ctx, b, chatID, config.TextNoChannels, nil)
		return
	case err != nil:
		slog.Error("failed to start submission", "user_id", userID, "error", err)
		h.tgLogger.LogError(err, "request submission")
		h.reply(ctx, b, chatID, config.TextError, nil)
		return
	}

	h.reply(ctx, b, chatID, config.TextChooseChannel, channelKeyboard(channels))
}

func (h *Handler) handleChannelSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	id, err := service.ParseChannelChoice(cb.Data)
	if err != nil {
		h.answer(ctx, b, cb.ID, "")
		return
	}

	ch, err := h.conversation.SelectChannel(ctx, cb.From.ID, id)
	switch {
	case errors.Is(err, domain.ErrUnexpectedState):
		h.answer(ctx, b, cb.ID, config.TextStale)
		return
	case err != nil:
		slog.Error("failed to select channel", "user_id", cb.From.ID, "channel_id", id, "error", err)
		h.tgLogger.LogError(err, "select channel")
		h.answer(ctx, b, cb.ID, config.TextError)
		return
	}

	h.answer(ctx, b, cb.ID, fmt.Sprintf(config.TextSelected, ch.DisplayName()))

	if msg := callbackMessage(update); msg != nil {
		_, err := b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
			ChatID:      msg.Chat.ID,
			MessageID:   msg.ID,
			ReplyMarkup: telegram.ControlsKeyboard(nil),
		})
		if err != nil {
			slog.Debug("failed to clear channel keyboard", "user_id", cb.From.ID, "error", err)
		}
	}
	h.reply(ctx, b, cb.From.ID, config.TextSendDraft, nil)
}

func submitterName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if u.Username != "" {
		if name == "" {
			return "@" + u.Username
		}
		return fmt.Sprintf("%s (@%s)", name, u.Username)
	}
	return name
}

func (h *Handler) handleDraft(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	draft := domain.Draft{
		Content:       domain.Content{ChatID: msg.Chat.ID, MessageID: msg.ID},
		Text:          text,
		SubmitterID:   msg.From.ID,
		SubmitterName: submitterName(msg.From),
	}

	report, err := h.conversation.SubmitDraft(ctx, draft)
	switch {
	case errors.Is(err, domain.ErrUnexpectedState):
		slog.Debug("message outside of a submission ignored", "user_id", msg.From.ID)
		return
	case err != nil:
		slog.Error("failed to submit draft", "user_id", msg.From.ID, "error", err)
		h.tgLogger.LogError(err, "submit draft")
		h.reply(ctx, b, msg.Chat.ID, config.TextError, telegram.MainMenu())
		return
	}

	slog.Info("draft dispatched",
		"user_id", msg.From.ID,
		"proposal_id", report.ProposalID,
		"admins", report.Admins,
		"delivered", report.Delivered,
		"failed", report.Failed,
	)
	h.reply(ctx, b, msg.Chat.ID, config.TextProposed, telegram.MainMenu())
}

package handler

import (
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/postrelay/internal/service"
	"github.com/set-night/postrelay/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypePrefix, h.handleReset)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reset", bot.MatchTypePrefix, h.handleReset)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/propose", bot.MatchTypePrefix, h.handlePropose)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, telegram.ProposeButton, bot.MatchTypeExact, h.handlePropose)

	// Callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, service.ChannelChoicePrefix, bot.MatchTypePrefix, h.handleChannelSelect)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, service.PublishPrefix, bot.MatchTypePrefix, h.handlePublish)

	// Anything else sent in a private chat is a draft candidate.
	h.bot.RegisterHandlerMatchFunc(isDraftCandidate, h.handleDraft)
}

// isDraftCandidate matches private, non-command messages that no other
// handler claims.
func isDraftCandidate(update *models.Update) bool {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat.Type != models.ChatTypePrivate {
		return false
	}
	if strings.HasPrefix(msg.Text, "/") || msg.Text == telegram.ProposeButton {
		return false
	}
	return true
}

package handler

import (
	"github.com/go-telegram/bot"

	"github.com/set-night/postrelay/internal/service"
	"github.com/set-night/postrelay/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot          *bot.Bot
	conversation *service.Conversation
	publisher    *service.Publisher
	tgLogger     *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot          *bot.Bot
	Conversation *service.Conversation
	Publisher    *service.Publisher
	TgLogger     *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:          deps.Bot,
		conversation: deps.Conversation,
		publisher:    deps.Publisher,
		tgLogger:     deps.TgLogger,
	}
}

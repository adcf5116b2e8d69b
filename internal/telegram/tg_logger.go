package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"

	"github.com/set-night/postrelay/internal/domain"
)

// LogChat describes the forum chat that mirrors notable events.
type LogChat struct {
	ChatID       int64
	TopicError   int
	TopicPublish int
}

// TelegramLogger mirrors errors and publications into a log chat. A zero
// chat id or topic disables the corresponding messages.
type TelegramLogger struct {
	api  API
	chat LogChat
}

func NewTelegramLogger(api API, chat LogChat) *TelegramLogger {
	return &TelegramLogger{api: api, chat: chat}
}

type LogType string

const (
	LogTypeError   LogType = "error"
	LogTypePublish LogType = "publish"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.chat.ChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.chat.ChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

// markdownEscaper escapes the entity markers of Telegram's legacy Markdown.
var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// codeSpan makes s safe inside a `code` entity, which cannot hold backticks.
func codeSpan(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		escapeMarkdown(context), codeSpan(err.Error()), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogPublication(channel domain.ChannelID, channelName string, adminID int64, messageID int) {
	msg := fmt.Sprintf("📣 *Post Published*\n\n*Channel:* %s (`%s`)\n*Approved by:* `%d`\n*Message:* `%d`",
		escapeMarkdown(channelName), codeSpan(string(channel)), adminID, messageID)
	l.Log(LogTypePublish, msg)
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.chat.TopicError
	case LogTypePublish:
		return l.chat.TopicPublish
	default:
		return 0
	}
}

package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/postrelay/internal/domain"
)

const MaxMessageLen = 4096

// API is the subset of *bot.Bot used by Messenger.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error)
	EditMessageReplyMarkup(ctx context.Context, params *bot.EditMessageReplyMarkupParams) (*models.Message, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// Messenger adapts the Telegram Bot API to the moderation workflow.
type Messenger struct {
	api API
}

func NewMessenger(api API) *Messenger {
	return &Messenger{api: api}
}

// chatID converts a target to what the Bot API accepts: a numeric id or an
// @username.
func chatID(t domain.ChatTarget) any {
	if id, err := strconv.ParseInt(string(t), 10, 64); err == nil {
		return id
	}
	return string(t)
}

func (m *Messenger) SendText(ctx context.Context, to domain.ChatTarget, text string) error {
	if r := []rune(text); len(r) > MaxMessageLen {
		text = string(r[:MaxMessageLen-3]) + "..."
	}
	_, err := m.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID(to),
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	return nil
}

func (m *Messenger) CopyContent(ctx context.Context, to domain.ChatTarget, src domain.Content, controls []domain.Control) (int, error) {
	params := &bot.CopyMessageParams{
		ChatID:     chatID(to),
		FromChatID: src.ChatID,
		MessageID:  src.MessageID,
	}
	if len(controls) > 0 {
		params.ReplyMarkup = ControlsKeyboard(controls)
	}

	msg, err := m.api.CopyMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("copy message to %s: %w", to, err)
	}
	return msg.ID, nil
}

func (m *Messenger) ClearControls(ctx context.Context, chat domain.ChatTarget, messageID int) error {
	_, err := m.api.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID(chat),
		MessageID:   messageID,
		ReplyMarkup: ControlsKeyboard(nil),
	})
	if err != nil {
		return fmt.Errorf("clear controls of %s/%d: %w", chat, messageID, err)
	}
	return nil
}

func (m *Messenger) MemberStatus(ctx context.Context, channel domain.ChannelID, userID int64) (domain.MemberStatus, error) {
	member, err := m.api.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID(channel.Target()),
		UserID: userID,
	})
	if err != nil {
		return domain.MemberStatusNone, fmt.Errorf("get chat member %d in %s: %w", userID, channel, err)
	}
	return memberStatus(member), nil
}

func memberStatus(m *models.ChatMember) domain.MemberStatus {
	if m == nil {
		return domain.MemberStatusNone
	}
	switch m.Type {
	case models.ChatMemberTypeOwner:
		return domain.MemberStatusOwner
	case models.ChatMemberTypeAdministrator:
		return domain.MemberStatusAdministrator
	case models.ChatMemberTypeMember:
		return domain.MemberStatusMember
	case models.ChatMemberTypeLeft, models.ChatMemberTypeBanned:
		return domain.MemberStatusNone
	default:
		return domain.MemberStatusOther
	}
}

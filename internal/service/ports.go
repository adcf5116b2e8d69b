package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/set-night/postrelay/internal/domain"
)

// Messenger is the part of the chat transport the moderation workflow uses.
type Messenger interface {
	SendText(ctx context.Context, to domain.ChatTarget, text string) error
	CopyContent(ctx context.Context, to domain.ChatTarget, src domain.Content, controls []domain.Control) (int, error)
	ClearControls(ctx context.Context, chat domain.ChatTarget, messageID int) error
}

// MembershipChecker reports a user's status in a channel.
type MembershipChecker interface {
	MemberStatus(ctx context.Context, channel domain.ChannelID, userID int64) (domain.MemberStatus, error)
}

// ChannelDirectory is the read-only view of the channel directory.
type ChannelDirectory interface {
	Channels(ctx context.Context) ([]domain.Channel, error)
	Admins(ctx context.Context, id domain.ChannelID) ([]int64, error)
	Name(ctx context.Context, id domain.ChannelID) string
}

// SessionStore keeps one Session per user. Get returns an idle session for
// unknown users.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (domain.Session, error)
	Put(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, userID int64) error
}

// ProposalLedger records proposals and their administrator copies and grants
// the right to publish a proposal to exactly one administrator.
type ProposalLedger interface {
	Create(ctx context.Context, p domain.Proposal) error
	AddInstance(ctx context.Context, inst domain.ProposalInstance) error
	// Claim returns true for the first caller only. Unknown ids yield
	// domain.ErrProposalNotFound.
	Claim(ctx context.Context, id uuid.UUID, adminID int64) (bool, error)
	// Release undoes a claim whose publication failed.
	Release(ctx context.Context, id uuid.UUID) error
	MarkPublished(ctx context.Context, id uuid.UUID, messageID int) error
	Instances(ctx context.Context, id uuid.UUID) ([]domain.ProposalInstance, error)
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)
}

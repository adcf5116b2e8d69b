package service

import (
	"context"
	"fmt"
	"time"

	"github.com/set-night/postrelay/internal/domain"
)

// Conversation is the per-user submission state machine:
// idle -> awaiting channel choice -> awaiting draft -> idle.
type Conversation struct {
	sessions   SessionStore
	resolver   *PermissionResolver
	directory  ChannelDirectory
	dispatcher *Dispatcher
	now        func() time.Time
}

func NewConversation(sessions SessionStore, resolver *PermissionResolver, directory ChannelDirectory, dispatcher *Dispatcher) *Conversation {
	return &Conversation{
		sessions:   sessions,
		resolver:   resolver,
		directory:  directory,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// State returns the current state of a user's conversation.
func (c *Conversation) State(ctx context.Context, userID int64) (domain.State, error) {
	s, err := c.sessions.Get(ctx, userID)
	if err != nil {
		return domain.StateIdle, fmt.Errorf("get session: %w", err)
	}
	return s.State, nil
}

// Reset discards any session data. Used for start, cancel and reset.
func (c *Conversation) Reset(ctx context.Context, userID int64) error {
	if err := c.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// RequestSubmission starts a submission. It returns the channels to offer,
// or domain.ErrNoChannels, in which case the session is left untouched.
func (c *Conversation) RequestSubmission(ctx context.Context, userID int64) ([]domain.Channel, error) {
	channels, err := c.resolver.EligibleChannels(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, domain.ErrNoChannels
	}

	if err := c.put(ctx, userID, domain.StateAwaitingChannelChoice, ""); err != nil {
		return nil, err
	}
	return channels, nil
}

// SelectChannel records the chosen channel. The id is trusted as presented
// in the selection keyboard.
func (c *Conversation) SelectChannel(ctx context.Context, userID int64, id domain.ChannelID) (domain.Channel, error) {
	s, err := c.sessions.Get(ctx, userID)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("get session: %w", err)
	}
	if s.State != domain.StateAwaitingChannelChoice {
		return domain.Channel{}, fmt.Errorf("%w: select channel in %s", domain.ErrUnexpectedState, s.State)
	}

	if err := c.put(ctx, userID, domain.StateAwaitingDraft, id); err != nil {
		return domain.Channel{}, err
	}
	return domain.Channel{ID: id, Name: c.directory.Name(ctx, id)}, nil
}

// SubmitDraft ends the conversation and fans the draft out to the channel
// administrators. The session is cleared before delivery starts.
func (c *Conversation) SubmitDraft(ctx context.Context, draft domain.Draft) (DispatchReport, error) {
	s, err := c.sessions.Get(ctx, draft.SubmitterID)
	if err != nil {
		return DispatchReport{}, fmt.Errorf("get session: %w", err)
	}
	if s.State != domain.StateAwaitingDraft || s.Channel == "" {
		return DispatchReport{}, fmt.Errorf("%w: submit draft in %s", domain.ErrUnexpectedState, s.State)
	}

	if err := c.Reset(ctx, draft.SubmitterID); err != nil {
		return DispatchReport{}, err
	}
	return c.dispatcher.Dispatch(ctx, draft, s.Channel)
}

func (c *Conversation) put(ctx context.Context, userID int64, state domain.State, channel domain.ChannelID) error {
	err := c.sessions.Put(ctx, domain.Session{
		UserID:    userID,
		State:     state,
		Channel:   channel,
		UpdatedAt: c.now(),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

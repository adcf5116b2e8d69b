package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/set-night/postrelay/internal/domain"
)

// PublishRequest is one activation of a publish control.
type PublishRequest struct {
	Channel    domain.ChannelID
	ProposalID uuid.UUID
	AdminID    int64
	// Instance is the administrator's copy carrying the control.
	Instance domain.Content
}

type PublishResult struct {
	ChannelName      string
	Published        bool
	AlreadyPublished bool
	MessageID        int
	SiblingsCleared  int
}

// Publisher reduces any number of approvals of one proposal to a single
// publication.
type Publisher struct {
	directory ChannelDirectory
	messenger Messenger
	ledger    ProposalLedger
}

func NewPublisher(directory ChannelDirectory, messenger Messenger, ledger ProposalLedger) *Publisher {
	return &Publisher{directory: directory, messenger: messenger, ledger: ledger}
}

// Publish handles an approval. The first approval of a known proposal wins
// the ledger claim; later ones only lose their control. Approvals without a
// known proposal follow the best-effort path, where a failure to clear the
// activating control stops publication.
//
// A claimed publication that fails is not retried, but its claim is
// released: the cleared control stays cleared, and any sibling copy that
// still carries one may publish instead.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	res := PublishResult{ChannelName: p.directory.Name(ctx, req.Channel)}
	instanceChat := domain.UserChat(req.Instance.ChatID)

	claimed := false
	if req.ProposalID != uuid.Nil {
		ok, err := p.ledger.Claim(ctx, req.ProposalID, req.AdminID)
		switch {
		case errors.Is(err, domain.ErrProposalNotFound):
			slog.Info("unknown proposal, publishing best effort", "proposal_id", req.ProposalID)
		case err != nil:
			return res, fmt.Errorf("claim proposal: %w", err)
		case !ok:
			res.AlreadyPublished = true
			if err := p.messenger.ClearControls(ctx, instanceChat, req.Instance.MessageID); err != nil {
				slog.Debug("clear control of late approval", "proposal_id", req.ProposalID, "error", err)
			}
			return res, nil
		default:
			claimed = true
		}
	}

	if err := p.messenger.ClearControls(ctx, instanceChat, req.Instance.MessageID); err != nil {
		if !claimed {
			return res, fmt.Errorf("clear approval control: %w", err)
		}
		slog.Warn("failed to clear approval control", "proposal_id", req.ProposalID, "error", err)
	}

	msgID, err := p.messenger.CopyContent(ctx, req.Channel.Target(), req.Instance, nil)
	if err != nil {
		if claimed {
			if rerr := p.ledger.Release(ctx, req.ProposalID); rerr != nil {
				slog.Error("failed to release claim", "proposal_id", req.ProposalID, "error", rerr)
			}
		}
		return res, fmt.Errorf("publish to %s: %w", req.Channel, err)
	}
	res.Published = true
	res.MessageID = msgID

	if err := p.messenger.ClearControls(ctx, req.Channel.Target(), msgID); err != nil {
		slog.Debug("clear controls of published copy", "channel_id", req.Channel, "error", err)
	}

	if claimed {
		if err := p.ledger.MarkPublished(ctx, req.ProposalID, msgID); err != nil {
			slog.Warn("failed to mark proposal published", "proposal_id", req.ProposalID, "error", err)
		}
		res.SiblingsCleared = p.clearSiblings(ctx, req)
	}

	slog.Info("post published",
		"channel_id", req.Channel,
		"proposal_id", req.ProposalID,
		"admin_id", req.AdminID,
		"message_id", msgID,
	)
	return res, nil
}

func (p *Publisher) clearSiblings(ctx context.Context, req PublishRequest) int {
	instances, err := p.ledger.Instances(ctx, req.ProposalID)
	if err != nil {
		slog.Warn("failed to load proposal instances", "proposal_id", req.ProposalID, "error", err)
		return 0
	}

	cleared := 0
	for _, inst := range instances {
		if inst.AdminID == req.AdminID && inst.MessageID == req.Instance.MessageID {
			continue
		}
		if err := p.messenger.ClearControls(ctx, domain.UserChat(inst.AdminID), inst.MessageID); err != nil {
			slog.Debug("clear sibling control", "admin_id", inst.AdminID, "error", err)
			continue
		}
		cleared++
	}
	return cleared
}

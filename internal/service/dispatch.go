package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/set-night/postrelay/internal/classify"
	"github.com/set-night/postrelay/internal/domain"
)

const unknownLabel = "unknown"

// DispatchReport summarizes one fan-out. It is informational only; the
// submitter always gets the same acknowledgment.
type DispatchReport struct {
	ProposalID uuid.UUID
	Admins     int
	Delivered  int
	Failed     int
}

type DispatcherOptions struct {
	Concurrency     int
	ClassifyTimeout time.Duration
}

// Dispatcher delivers a draft to every administrator of a channel.
type Dispatcher struct {
	directory  ChannelDirectory
	classifier classify.Classifier
	messenger  Messenger
	ledger     ProposalLedger
	opts       DispatcherOptions
	newID      func() uuid.UUID
	now        func() time.Time
}

func NewDispatcher(directory ChannelDirectory, classifier classify.Classifier, messenger Messenger, ledger ProposalLedger, opts DispatcherOptions) *Dispatcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Dispatcher{
		directory:  directory,
		classifier: classifier,
		messenger:  messenger,
		ledger:     ledger,
		opts:       opts,
		newID:      uuid.New,
		now:        time.Now,
	}
}

// Dispatch classifies the draft once and sends a notice plus a copy with a
// publish control to each administrator. A failed delivery never stops the
// remaining ones. Dispatch is not cancellable once started.
func (d *Dispatcher) Dispatch(ctx context.Context, draft domain.Draft, channel domain.ChannelID) (DispatchReport, error) {
	ctx = context.WithoutCancel(ctx)

	admins, err := d.directory.Admins(ctx, channel)
	if err != nil {
		return DispatchReport{}, fmt.Errorf("dispatch: %w", err)
	}
	if len(admins) == 0 {
		slog.Info("channel has no admins, nothing to dispatch", "channel_id", channel)
		return DispatchReport{}, nil
	}

	name := d.directory.Name(ctx, channel)
	verdict := d.classify(ctx, draft.Text)

	proposal := domain.Proposal{
		ID:          d.newID(),
		Channel:     channel,
		SubmitterID: draft.SubmitterID,
		CreatedAt:   d.now(),
	}
	if err := d.ledger.Create(ctx, proposal); err != nil {
		slog.Warn("failed to record proposal", "proposal_id", proposal.ID, "error", err)
	}

	notice := Notice(draft.SubmitterName, name, verdict)
	controls := []domain.Control{{
		Text: "✅ Publish to " + name,
		Data: PublishData(channel, proposal.ID),
	}}

	var delivered, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(d.opts.Concurrency)
	for _, adminID := range admins {
		g.Go(func() error {
			if err := d.deliver(ctx, adminID, proposal.ID, draft.Content, notice, controls); err != nil {
				failed.Add(1)
				slog.Warn("proposal delivery failed", "admin_id", adminID, "channel_id", channel, "proposal_id", proposal.ID, "error", err)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	g.Wait()

	report := DispatchReport{
		ProposalID: proposal.ID,
		Admins:     len(admins),
		Delivered:  int(delivered.Load()),
		Failed:     int(failed.Load()),
	}
	slog.Info("proposal dispatched",
		"proposal_id", proposal.ID,
		"channel_id", channel,
		"user_id", draft.SubmitterID,
		"delivered", report.Delivered,
		"failed", report.Failed,
	)
	return report, nil
}

func (d *Dispatcher) deliver(ctx context.Context, adminID int64, proposalID uuid.UUID, content domain.Content, notice string, controls []domain.Control) error {
	to := domain.UserChat(adminID)
	if err := d.messenger.SendText(ctx, to, notice); err != nil {
		return fmt.Errorf("send notice: %w", err)
	}

	msgID, err := d.messenger.CopyContent(ctx, to, content, controls)
	if err != nil {
		return fmt.Errorf("copy draft: %w", err)
	}

	err = d.ledger.AddInstance(ctx, domain.ProposalInstance{
		ProposalID: proposalID,
		AdminID:    adminID,
		MessageID:  msgID,
	})
	if err != nil {
		slog.Warn("failed to record proposal instance", "proposal_id", proposalID, "admin_id", adminID, "error", err)
	}
	return nil
}

func (d *Dispatcher) classify(ctx context.Context, text string) domain.Classification {
	if d.opts.ClassifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.ClassifyTimeout)
		defer cancel()
	}

	verdict, err := d.classifier.Classify(ctx, text)
	if err != nil {
		slog.Warn("classification failed", "error", err)
		return domain.Classification{Label: unknownLabel}
	}
	return verdict
}

// Notice is the text sent to an administrator ahead of the draft copy.
func Notice(submitter, channelName string, c domain.Classification) string {
	if submitter == "" {
		submitter = "anonymous"
	}
	return fmt.Sprintf("📝 New post for %s from %s\nTopic: %s (%d%%)\n%s\n%s",
		channelName, submitter, c.Label, c.Percent(), c.Spam, c.Keywords)
}

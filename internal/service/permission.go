package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/set-night/postrelay/internal/domain"
)

const membershipConcurrency = 8

// PermissionResolver finds the channels a user may submit posts to.
type PermissionResolver struct {
	directory ChannelDirectory
	members   MembershipChecker
}

func NewPermissionResolver(directory ChannelDirectory, members MembershipChecker) *PermissionResolver {
	return &PermissionResolver{directory: directory, members: members}
}

type eligibility struct {
	status domain.MemberStatus
	err    error
}

// EligibleChannels returns the channels where userID is a member, admin or
// owner, in directory presentation order. A failed membership check counts
// as not eligible and never aborts the others.
func (r *PermissionResolver) EligibleChannels(ctx context.Context, userID int64) ([]domain.Channel, error) {
	channels, err := r.directory.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}

	results := make([]eligibility, len(channels))
	var g errgroup.Group
	g.SetLimit(membershipConcurrency)
	for i, ch := range channels {
		g.Go(func() error {
			status, err := r.members.MemberStatus(ctx, ch.ID, userID)
			results[i] = eligibility{status: status, err: err}
			return nil
		})
	}
	g.Wait()

	eligible := make([]domain.Channel, 0, len(channels))
	for i, ch := range channels {
		res := results[i]
		if res.err != nil {
			slog.Debug("membership check failed", "channel_id", ch.ID, "user_id", userID, "error", res.err)
			continue
		}
		if res.status.Elevated() {
			eligible = append(eligible, ch)
		}
	}
	return eligible, nil
}

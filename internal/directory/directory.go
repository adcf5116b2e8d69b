package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/set-night/postrelay/internal/domain"
)

// Directory resolves channels from the key-value store.
type Directory struct {
	store Store
}

func New(store Store) *Directory {
	return &Directory{store: store}
}

// Name returns the display name of a channel, or its id when none is stored.
func (d *Directory) Name(ctx context.Context, id domain.ChannelID) string {
	name, err := d.store.Get(ctx, NameKey(string(id)))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("channel name lookup failed", "channel_id", id, "error", err)
		}
		return string(id)
	}
	if name == "" {
		return string(id)
	}
	return name
}

// Admins returns the administrator ids registered for a channel.
// Members that are not integer ids are skipped.
func (d *Directory) Admins(ctx context.Context, id domain.ChannelID) ([]int64, error) {
	members, err := d.store.SMembers(ctx, AdminsKey(string(id)))
	if err != nil {
		return nil, fmt.Errorf("load admins of %s: %w", id, err)
	}

	admins := make([]int64, 0, len(members))
	for _, m := range members {
		uid, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			slog.Warn("skipping malformed admin id", "channel_id", id, "member", m)
			continue
		}
		admins = append(admins, uid)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i] < admins[j] })
	return admins, nil
}

// Channel loads a single channel. A channel without admins is reported as
// domain.ErrChannelNotFound.
func (d *Directory) Channel(ctx context.Context, id domain.ChannelID) (domain.Channel, error) {
	admins, err := d.Admins(ctx, id)
	if err != nil {
		return domain.Channel{}, err
	}
	if len(admins) == 0 {
		return domain.Channel{}, domain.ErrChannelNotFound
	}
	return domain.Channel{ID: id, Name: d.Name(ctx, id), Admins: admins}, nil
}

// Channels lists every known channel ordered by display name, then id.
// Channels without administrators are not selectable and are left out.
func (d *Directory) Channels(ctx context.Context) ([]domain.Channel, error) {
	keys, err := d.store.Scan(ctx, AdminsPattern)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	seen := make(map[string]struct{}, len(keys))
	channels := make([]domain.Channel, 0, len(keys))
	for _, key := range keys {
		id, ok := channelIDFromKey(key)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		ch, err := d.Channel(ctx, domain.ChannelID(id))
		if err != nil {
			if !errors.Is(err, domain.ErrChannelNotFound) {
				slog.Warn("skipping channel", "channel_id", id, "error", err)
			}
			continue
		}
		channels = append(channels, ch)
	}

	SortChannels(channels)
	return channels, nil
}

// SortChannels orders channels for presentation.
func SortChannels(channels []domain.Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		a, b := channels[i].DisplayName(), channels[j].DisplayName()
		if a != b {
			return a < b
		}
		return channels[i].ID < channels[j].ID
	})
}

package directory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/set-night/postrelay/internal/domain"
)

// Admin maintains channel records. It is used by the command line tooling,
// never by the bot itself.
type Admin struct {
	*Directory
	w Writer
}

func NewAdmin(w Writer) *Admin {
	return &Admin{Directory: New(w), w: w}
}

// SetChannel stores the name and replaces the administrator set of a channel.
func (a *Admin) SetChannel(ctx context.Context, ch domain.Channel) error {
	if ch.ID == "" {
		return fmt.Errorf("channel id is required")
	}
	if len(ch.ID) > domain.MaxChannelIDLen {
		return fmt.Errorf("channel id %q is longer than %d characters", ch.ID, domain.MaxChannelIDLen)
	}
	if len(ch.Admins) == 0 {
		return fmt.Errorf("channel %s: at least one admin is required", ch.ID)
	}

	if ch.Name != "" {
		if err := a.w.Set(ctx, NameKey(string(ch.ID)), ch.Name); err != nil {
			return err
		}
	} else if err := a.w.Delete(ctx, NameKey(string(ch.ID))); err != nil {
		return err
	}

	members := make([]string, len(ch.Admins))
	for i, uid := range ch.Admins {
		members[i] = strconv.FormatInt(uid, 10)
	}
	return a.w.ReplaceSet(ctx, AdminsKey(string(ch.ID)), members)
}

func (a *Admin) RemoveChannel(ctx context.Context, id domain.ChannelID) error {
	return a.w.Delete(ctx, NameKey(string(id)), AdminsKey(string(id)))
}

package domain

import "time"

type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingChannelChoice State = "awaiting_channel_choice"
	StateAwaitingDraft         State = "awaiting_draft"
)

// Session is the transient conversation record of one user.
// Channel is set only in StateAwaitingDraft.
type Session struct {
	UserID    int64     `json:"user_id"`
	State     State     `json:"state"`
	Channel   ChannelID `json:"channel,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

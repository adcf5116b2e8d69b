package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Content references a message that can be copy-forwarded. The core never
// looks inside it.
type Content struct {
	ChatID    int64
	MessageID int
}

type Classification struct {
	Label      string
	Confidence float64
	Spam       string
	Keywords   string
}

// Percent returns the confidence as a whole percentage in [0, 100].
func (c Classification) Percent() int {
	p := int(math.Round(c.Confidence * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Draft is a user submission on its way to the channel administrators.
type Draft struct {
	Content       Content
	Text          string
	SubmitterID   int64
	SubmitterName string
}

// Proposal ties all administrator copies of one draft together.
type Proposal struct {
	ID          uuid.UUID
	Channel     ChannelID
	SubmitterID int64
	CreatedAt   time.Time
}

// ProposalInstance is the copy of a draft delivered to one administrator.
type ProposalInstance struct {
	ProposalID uuid.UUID
	AdminID    int64
	MessageID  int
}

// Control is an actionable button attached to a message.
type Control struct {
	Text string
	Data string
}

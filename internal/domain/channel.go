package domain

import "strconv"

// ChannelID is the opaque chat identifier of a destination channel.
// It is kept as the string stored in the directory so that both numeric
// ids ("-1001234") and public usernames ("@news") work.
type ChannelID string

// MaxChannelIDLen fits the longest public username, "@" plus 32 characters.
const MaxChannelIDLen = 33

type Channel struct {
	ID     ChannelID
	Name   string
	Admins []int64
}

// DisplayName returns the channel name, falling back to its id.
func (c Channel) DisplayName() string {
	if c.Name == "" {
		return string(c.ID)
	}
	return c.Name
}

// Selectable reports whether the channel has anyone to approve posts.
func (c Channel) Selectable() bool {
	return len(c.Admins) > 0
}

// MemberStatus is a user's status in a chat as reported by the platform.
type MemberStatus string

const (
	MemberStatusNone          MemberStatus = "none"
	MemberStatusMember        MemberStatus = "member"
	MemberStatusAdministrator MemberStatus = "administrator"
	MemberStatusOwner         MemberStatus = "owner"
	MemberStatusOther         MemberStatus = "other"
)

// Elevated reports whether the status allows submitting to the channel.
func (s MemberStatus) Elevated() bool {
	switch s {
	case MemberStatusMember, MemberStatusAdministrator, MemberStatusOwner:
		return true
	default:
		return false
	}
}

// ChatTarget addresses any chat: a user's private chat or a channel.
type ChatTarget string

// UserChat returns the private chat target of a user.
func UserChat(userID int64) ChatTarget {
	return ChatTarget(strconv.FormatInt(userID, 10))
}

func (c ChannelID) Target() ChatTarget {
	return ChatTarget(c)
}

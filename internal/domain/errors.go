package domain

import "errors"

var (
	ErrNoChannels        = errors.New("no channels available")
	ErrUnexpectedState   = errors.New("unexpected conversation state")
	ErrChannelNotFound   = errors.New("channel not found")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrAlreadyPublished  = errors.New("proposal already published")
	ErrInvalidCallback   = errors.New("invalid callback data")
	ErrClassifierBackend = errors.New("classifier backend failed")
)

package service

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/set-night/postrelay/internal/domain"
)

// Callback data prefixes. Telegram limits callback data to 64 bytes.
const (
	ChannelChoicePrefix = "ch:"
	PublishPrefix       = "pub:"

	MaxCallbackData = 64
)

func ChannelChoiceData(id domain.ChannelID) string {
	return ChannelChoicePrefix + string(id)
}

func ParseChannelChoice(data string) (domain.ChannelID, error) {
	id, ok := strings.CutPrefix(data, ChannelChoicePrefix)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCallback, data)
	}
	return domain.ChannelID(id), nil
}

// PublishData encodes the proposal id as 22 characters of unpadded base64url
// so that the longest channel username (@ plus 32) still fits.
func PublishData(id domain.ChannelID, proposalID uuid.UUID) string {
	if proposalID == uuid.Nil {
		return PublishPrefix + string(id)
	}
	return PublishPrefix + string(id) + ":" + base64.RawURLEncoding.EncodeToString(proposalID[:])
}

func parseProposalID(s string) (uuid.UUID, error) {
	if len(s) == base64.RawURLEncoding.EncodedLen(len(uuid.Nil)) {
		raw, err := base64.RawURLEncoding.DecodeString(s)
		if err != nil {
			return uuid.Nil, err
		}
		return uuid.FromBytes(raw)
	}
	return uuid.Parse(s)
}

// ParsePublishData accepts "pub:<channel>:<proposal>" with the proposal in
// compact or canonical form, and the legacy "pub:<channel>" form, which
// yields uuid.Nil.
func ParsePublishData(data string) (domain.ChannelID, uuid.UUID, error) {
	rest, ok := strings.CutPrefix(data, PublishPrefix)
	if !ok || rest == "" {
		return "", uuid.Nil, fmt.Errorf("%w: %q", domain.ErrInvalidCallback, data)
	}

	channel, proposal, hasProposal := strings.Cut(rest, ":")
	if channel == "" {
		return "", uuid.Nil, fmt.Errorf("%w: %q", domain.ErrInvalidCallback, data)
	}
	if !hasProposal {
		return domain.ChannelID(channel), uuid.Nil, nil
	}

	id, err := parseProposalID(proposal)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %q: %v", domain.ErrInvalidCallback, data, err)
	}
	return domain.ChannelID(channel), id, nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/set-night/postrelay/internal/domain"
)

var errUnreachable = errors.New("bot was blocked by the user")

type sentText struct {
	to   domain.ChatTarget
	text string
}

type copiedContent struct {
	to       domain.ChatTarget
	src      domain.Content
	controls []domain.Control
	id       int
}

type clearedControls struct {
	chat      domain.ChatTarget
	messageID int
}

type fakeMessenger struct {
	mu          sync.Mutex
	nextID      int
	texts       []sentText
	copies      []copiedContent
	cleared     []clearedControls
	unreachable map[domain.ChatTarget]bool
	failCopyTo  map[domain.ChatTarget]bool
	failClear   map[clearedControls]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		nextID:      1000,
		unreachable: make(map[domain.ChatTarget]bool),
		failCopyTo:  make(map[domain.ChatTarget]bool),
		failClear:   make(map[clearedControls]bool),
	}
}

func (m *fakeMessenger) SendText(_ context.Context, to domain.ChatTarget, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable[to] {
		return errUnreachable
	}
	m.texts = append(m.texts, sentText{to: to, text: text})
	return nil
}

func (m *fakeMessenger) CopyContent(_ context.Context, to domain.ChatTarget, src domain.Content, controls []domain.Control) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable[to] || m.failCopyTo[to] {
		return 0, errUnreachable
	}
	m.nextID++
	m.copies = append(m.copies, copiedContent{to: to, src: src, controls: controls, id: m.nextID})
	return m.nextID, nil
}

func (m *fakeMessenger) ClearControls(_ context.Context, chat domain.ChatTarget, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := clearedControls{chat: chat, messageID: messageID}
	if m.failClear[c] {
		return errors.New("message is not modified")
	}
	m.cleared = append(m.cleared, c)
	return nil
}

func (m *fakeMessenger) textsTo(to domain.ChatTarget) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, t := range m.texts {
		if t.to == to {
			out = append(out, t.text)
		}
	}
	return out
}

func (m *fakeMessenger) copiesTo(to domain.ChatTarget) []copiedContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []copiedContent
	for _, c := range m.copies {
		if c.to == to {
			out = append(out, c)
		}
	}
	return out
}

func (m *fakeMessenger) wasCleared(chat domain.ChatTarget, messageID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cleared {
		if c.chat == chat && c.messageID == messageID {
			return true
		}
	}
	return false
}

type fakeMembers struct {
	status map[domain.ChannelID]map[int64]domain.MemberStatus
	fail   map[domain.ChannelID]bool
}

func (f *fakeMembers) MemberStatus(_ context.Context, channel domain.ChannelID, userID int64) (domain.MemberStatus, error) {
	if f.fail[channel] {
		return "", errors.New("Bad Request: user not found")
	}
	if s, ok := f.status[channel][userID]; ok {
		return s, nil
	}
	return domain.MemberStatusNone, nil
}

type fakeDirectory struct {
	channels []domain.Channel
	err      error
}

func (d *fakeDirectory) Channels(context.Context) ([]domain.Channel, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.channels, nil
}

func (d *fakeDirectory) Admins(_ context.Context, id domain.ChannelID) ([]int64, error) {
	if d.err != nil {
		return nil, d.err
	}
	for _, ch := range d.channels {
		if ch.ID == id {
			return ch.Admins, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) Name(_ context.Context, id domain.ChannelID) string {
	for _, ch := range d.channels {
		if ch.ID == id {
			return ch.DisplayName()
		}
	}
	return string(id)
}

type countingClassifier struct {
	calls  atomic.Int32
	result domain.Classification
	err    error
}

func (c *countingClassifier) Classify(context.Context, string) (domain.Classification, error) {
	c.calls.Add(1)
	return c.result, c.err
}

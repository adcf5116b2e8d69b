package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/set-night/postrelay/internal/domain"
)

type memoryProposal struct {
	proposal  domain.Proposal
	claimedBy int64
	claimed   bool
	published bool
	messageID int
	instances []domain.ProposalInstance
}

// MemoryProposals is an in-process proposal ledger. Its contents are lost on
// restart; approvals of forgotten proposals fall back to best-effort
// publishing.
type MemoryProposals struct {
	mu        sync.Mutex
	proposals map[uuid.UUID]*memoryProposal
}

func NewMemoryProposals() *MemoryProposals {
	return &MemoryProposals{proposals: make(map[uuid.UUID]*memoryProposal)}
}

func (m *MemoryProposals) Create(_ context.Context, p domain.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[p.ID] = &memoryProposal{proposal: p}
	return nil
}

func (m *MemoryProposals) AddInstance(_ context.Context, inst domain.ProposalInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[inst.ProposalID]
	if !ok {
		return domain.ErrProposalNotFound
	}
	p.instances = append(p.instances, inst)
	return nil
}

func (m *MemoryProposals) Claim(_ context.Context, id uuid.UUID, adminID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return false, domain.ErrProposalNotFound
	}
	if p.claimed {
		return false, nil
	}
	p.claimed = true
	p.claimedBy = adminID
	return true, nil
}

func (m *MemoryProposals) Release(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.proposals[id]; ok && !p.published {
		p.claimed = false
		p.claimedBy = 0
	}
	return nil
}

func (m *MemoryProposals) MarkPublished(_ context.Context, id uuid.UUID, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return domain.ErrProposalNotFound
	}
	p.published = true
	p.messageID = messageID
	return nil
}

func (m *MemoryProposals) Instances(_ context.Context, id uuid.UUID) ([]domain.ProposalInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	out := make([]domain.ProposalInstance, len(p.instances))
	copy(out, p.instances)
	return out, nil
}

func (m *MemoryProposals) PurgeBefore(_ context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, p := range m.proposals {
		if p.proposal.CreatedAt.Before(t) {
			delete(m.proposals, id)
			n++
		}
	}
	return n, nil
}

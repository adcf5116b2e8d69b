package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/set-night/postrelay/internal/domain"
)

func idleSession(userID int64) domain.Session {
	return domain.Session{UserID: userID, State: domain.StateIdle}
}

// MemorySessions keeps conversation sessions in process memory. Sessions
// untouched for longer than ttl read as idle and are dropped by Purge.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessions creates a store. A non-positive ttl keeps sessions
// until they are reset.
func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{
		sessions: make(map[int64]domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemorySessions) expired(s domain.Session, now time.Time) bool {
	return m.ttl > 0 && !s.UpdatedAt.IsZero() && now.Sub(s.UpdatedAt) > m.ttl
}

func (m *MemorySessions) Get(_ context.Context, userID int64) (domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok || m.expired(s, m.now()) {
		return idleSession(userID), nil
	}
	return s, nil
}

// Purge removes expired sessions and reports how many were dropped.
func (m *MemorySessions) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for uid, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, uid)
			n++
		}
	}
	return n
}

func (m *MemorySessions) Put(_ context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
	return nil
}

func (m *MemorySessions) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// RedisSessions stores sessions as JSON values that expire after ttl.
type RedisSessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessions(rdb *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, ttl: ttl}
}

func sessionKey(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}

func (r *RedisSessions) Get(ctx context.Context, userID int64) (domain.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return idleSession(userID), nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

func (r *RedisSessions) Put(ctx context.Context, s domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(s.UserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (r *RedisSessions) Delete(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

package conversation

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domconv "github.com/TechTorque-2025/Agent-Bot/internal/domain/conversation"
)

// Compile-time check: MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

type memSession struct {
	mu      sync.Mutex
	session domconv.Session
}

// MemoryStore keeps sessions in process memory. Appends to one session are serialized;
// different sessions never contend beyond the map lookup.
type MemoryStore struct {
	mu         sync.RWMutex
	sessions   map[string]*memSession
	maxHistory int
	ttl        time.Duration
	now        func() time.Time
}

// NewMemoryStore creates an in-memory store. ttl <= 0 keeps sessions forever.
func NewMemoryStore(maxHistory int, ttl time.Duration) *MemoryStore {
	if maxHistory <= 0 {
		maxHistory = domconv.DefaultMaxHistory
	}
	return &MemoryStore{
		sessions:   make(map[string]*memSession),
		maxHistory: maxHistory,
		ttl:        ttl,
		now:        time.Now,
	}
}

// CreateSession implements Store.
func (m *MemoryStore) CreateSession(_ context.Context, userID string) (string, error) {
	id := uuid.NewString()
	now := m.now()

	m.mu.Lock()
	m.sessions[id] = &memSession{session: domconv.Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		Metadata:     map[string]string{},
	}}
	m.mu.Unlock()

	return id, nil
}

// AddMessage implements Store.
func (m *MemoryStore) AddMessage(
	_ context.Context, sessionID string, role domconv.Role, content string, metadata map[string]string,
) (bool, error) {
	if !role.Valid() {
		return false, fmt.Errorf("role %q: %w", role, domain.ErrInvalidRequest)
	}

	s := m.lookup(sessionID)
	if s == nil {
		return false, nil
	}

	now := m.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Messages = append(s.session.Messages, domconv.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
		Metadata:  maps.Clone(metadata),
	})
	if len(s.session.Messages) > m.maxHistory {
		s.session.Messages = slices.Clone(domconv.Trim(s.session.Messages, m.maxHistory))
	}
	s.session.LastActivity = now
	return true, nil
}

// GetHistory implements Store.
func (m *MemoryStore) GetHistory(_ context.Context, sessionID string, limit int) ([]domconv.Message, error) {
	s := m.lookup(sessionID)
	if s == nil {
		return []domconv.Message{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return domconv.Tail(s.session.Messages, limit), nil
}

// Exists implements Store.
func (m *MemoryStore) Exists(_ context.Context, sessionID string) (bool, error) {
	return m.lookup(sessionID) != nil, nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// lookup returns the session or nil, dropping it first when it has expired.
func (m *MemoryStore) lookup(id string) *memSession {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.ttl <= 0 {
		return s
	}

	s.mu.Lock()
	expired := m.now().Sub(s.session.LastActivity) > m.ttl
	s.mu.Unlock()
	if !expired {
		return s
	}

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/repositories"
)

// MemoryStore keeps sessions in process memory. Sessions idle longer than
// the TTL are treated as absent; once MaxEntries is reached the least
// recently active session is evicted on insert.
type MemoryStore struct {
	mu         sync.RWMutex
	sessions   map[string]*entities.ChatSession
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// Option configures a MemoryStore
type Option func(*MemoryStore)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates a new in-memory session store. A zero ttl or
// maxEntries disables that limit.
func NewMemoryStore(ttl time.Duration, maxEntries int, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:   make(map[string]*entities.ChatSession),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repositories.SessionRepository = (*MemoryStore)(nil)

// Get returns a copy of the session
func (s *MemoryStore) Get(_ context.Context, id string) (*entities.ChatSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || s.expired(session, s.now()) {
		return nil, repositories.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Upsert stores a copy of the session
func (s *MemoryStore) Upsert(_ context.Context, session *entities.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; !exists && s.maxEntries > 0 {
		for len(s.sessions) >= s.maxEntries {
			s.evictOldest()
		}
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Delete removes a session
func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok, nil
}

// ListExpired returns the ids of sessions idle past the TTL at now
func (s *MemoryStore) ListExpired(_ context.Context, now time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, session := range s.sessions {
		if s.expired(session, now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(session *entities.ChatSession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(session.LastActive) > s.ttl
}

// evictOldest must be called with the write lock held
func (s *MemoryStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, session := range s.sessions {
		if oldestID == "" || session.LastActive.Before(oldest) {
			oldestID = id
			oldest = session.LastActive
		}
	}
	delete(s.sessions, oldestID)
}

// Package memory holds process-local stand-ins for the Redis adapters, used
// when no Redis address is configured and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
)

type sessionEntry struct {
	rec     ports.SessionRecord
	expires time.Time
}

// SessionStore is an in-memory ports.SessionStore with lazy expiry.
type SessionStore struct {
	mu   sync.Mutex
	recs map[string]sessionEntry
	now  func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{recs: make(map[string]sessionEntry), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, id string, rec ports.SessionRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[id] = sessionEntry{rec: rec, expires: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Load(_ context.Context, id string) (*ports.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.recs[id]
	if !ok || !s.now().Before(e.expires) {
		delete(s.recs, id)
		return nil, domain.ErrSessionNotFound
	}
	rec := e.rec
	return &rec, nil
}

func (s *SessionStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.recs[id]; ok {
		e.expires = s.now().Add(ttl)
		s.recs[id] = e
	}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aimatch/portal/internal/core/ports"
)

// SubmitLock is a single-process ports.SubmitLocker.
type SubmitLock struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

var _ ports.SubmitLocker = (*SubmitLock)(nil)

func NewSubmitLock() *SubmitLock {
	return &SubmitLock{held: make(map[string]time.Time), now: time.Now}
}

func (l *SubmitLock) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if exp, ok := l.held[key]; ok && l.now().Before(exp) {
		return false, nil
	}
	l.held[key] = l.now().Add(ttl)
	return true, nil
}

func (l *SubmitLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

package ports

import (
	"context"
	"time"
)

// SessionRecord is the persisted state of one browser session: the
// marketplace token and the raw user record returned at login.
type SessionRecord struct {
	Token string
	User  []byte
}

// SessionStore persists session records with a sliding TTL.
type SessionStore interface {
	Save(ctx context.Context, id string, rec SessionRecord, ttl time.Duration) error
	// Load returns domain.ErrSessionNotFound for an unknown or expired id.
	Load(ctx context.Context, id string) (*SessionRecord, error)
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

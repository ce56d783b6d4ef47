package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
)

const (
	fieldToken = "token"
	fieldUser  = "user"
)

// SessionStore keeps session records in Redis hashes.
// Key format: session:<id> with fields token and user.
type SessionStore struct {
	client *redis.Client
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Save(ctx context.Context, id string, rec ports.SessionRecord, ttl time.Duration) error {
	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, fieldToken, rec.Token, fieldUser, string(rec.User))
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, id string) (*ports.SessionRecord, error) {
	vals, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	token, ok := vals[fieldToken]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &ports.SessionRecord{Token: token, User: []byte(vals[fieldUser])}, nil
}

// Touch slides the expiry forward. A missing key is not an error.
func (s *SessionStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	return s.client.Expire(ctx, s.key(id), ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aimatch/portal/internal/core/ports"
)

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmitLock is a cross-replica mutex for wizard submissions.
// Key format: lock:<key>, value is the owning replica's holder id.
type SubmitLock struct {
	client *redis.Client
	holder string
}

var _ ports.SubmitLocker = (*SubmitLock)(nil)

// NewSubmitLock creates a SubmitLock with a fresh holder id.
func NewSubmitLock(client *redis.Client) *SubmitLock {
	return &SubmitLock{client: client, holder: uuid.NewString()}
}

func (l *SubmitLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(key), l.holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submit lock: %w", err)
	}
	return ok, nil
}

func (l *SubmitLock) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(key)}, l.holder).Err(); err != nil {
		return fmt.Errorf("submit unlock: %w", err)
	}
	return nil
}

func (l *SubmitLock) key(key string) string {
	return "lock:" + key
}

package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix      = "quota:lock:"
	lockRetryInterval  = 10 * time.Millisecond
	lockReleaseTimeout = time.Second
)

// Deletes the key only while it still holds our token, so an expired lease
// taken over by another caller is never released by us.
const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker is a per-user lease lock shared by every API instance.
type RedisLocker struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker creates a locker whose leases expire after ttl. Lock gives
// up with ErrLockBusy after wait.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		ttl:    ttl,
		wait:   wait,
	}
}

// Lock acquires the user's lease, polling until it is free.
func (l *RedisLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := lockKeyPrefix + userID
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			if waitCtx.Err() != nil && ctx.Err() == nil {
				return nil, fmt.Errorf("acquiring %s: %w", key, ErrLockBusy)
			}
			return nil, fmt.Errorf("acquiring %s: %w", key, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("acquiring %s: %w", key, err)
			}
			return nil, fmt.Errorf("acquiring %s: %w", key, ErrLockBusy)
		case <-ticker.C:
		}
	}
}

// release runs on its own context: the request context may already be done.
func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
	defer cancel()

	if err := l.script.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		slog.Warn("quota: releasing user lock", "key", key, "error", err)
	}
}

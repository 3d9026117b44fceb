// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/adapter"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ adapter.Locker = (*RedisLocker)(nil)

const lockPrefix = "lock:"

// RedisLocker is a single-instance SET NX lock. Tokens make Unlock safe against
// releasing a lock that already expired and was taken by someone else.
type RedisLocker struct {
	cli     RedisClient
	tries   int
	backoff time.Duration
}

func NewLocker(c RedisClient) *RedisLocker {
	return &RedisLocker{cli: c, tries: 5, backoff: 50 * time.Millisecond}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	var lastErr error
	contended := false
	for i := 0; i < l.tries; i++ {
		ok, err := l.cli.SetNX(ctx, lockPrefix+key, token, ttl)
		switch {
		case err != nil:
			lastErr = err
		case ok:
			return token, nil
		default:
			contended = true
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	// A holder seen on any attempt is contention, not an outage.
	if contended || lastErr == nil {
		return "", domain.ErrLockNotAcquired
	}
	return "", fmt.Errorf("redis lock %s: %w", key, lastErr)
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.cli.RunScript(ctx, luaUnlock, []string{lockPrefix + key}, token)
	return err
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockHeld = errors.New("lock is held by another owner")

// Locker is a best effort mutual exclusion across service instances.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type RedisLocker struct {
	cli redis.UniversalClient
}

func NewLocker(cli redis.UniversalClient) *RedisLocker {
	return &RedisLocker{cli: cli}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	ok, err := l.cli.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis setnx %s failed: %w", key, err)
	}
	if !ok {
		return "", ErrLockHeld
	}

	return token, nil
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

// Unlock releases the lock only if it is still owned by token.
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	if err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("redis unlock %s failed: %w", key, err)
	}

	return nil
}

package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL outlives a day so a date key cannot be taken twice.
const lockTTL = 26 * time.Hour

// Locker grants a key to a single holder until ttl expires.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

func lockKey(job string, at time.Time) string {
	return "library:job:" + job + ":" + at.Format("2006-01-02")
}

type RedisLocker struct {
	client redis.UniversalClient
	owner  string
}

func NewRedisLocker(client redis.UniversalClient, owner string) *RedisLocker {
	return &RedisLocker{client: client, owner: owner}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, l.owner, ttl).Result()
}

// NoLock lets every run through.
type NoLock struct{}

func (NoLock) Acquire(context.Context, string, time.Duration) (bool, error) { return true, nil }

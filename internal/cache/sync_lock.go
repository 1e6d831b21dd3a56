package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const syncLockKey = "catalog:sync:lock"

// releaseScript deletes the lock only if it still belongs to the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the TTL only if the lock still belongs to the caller.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// SyncLock is a Redis lock that keeps catalog syncs from overlapping across
// instances. The TTL bounds how long a crashed holder can block others.
type SyncLock struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewSyncLock creates a new SyncLock.
func NewSyncLock(redis *RedisClient, ttl time.Duration) *SyncLock {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SyncLock{redis: redis, ttl: ttl}
}

// Acquire takes the lock for owner. It returns false if someone else holds it.
func (l *SyncLock) Acquire(ctx context.Context, owner string) (bool, error) {
	return l.redis.SetNX(ctx, syncLockKey, owner, l.ttl)
}

// TTL is how long the lock lives without being extended.
func (l *SyncLock) TTL() time.Duration {
	return l.ttl
}

// Extend pushes the expiry of owner's lock out by a full TTL. It returns
// false if owner no longer holds the lock.
func (l *SyncLock) Extend(ctx context.Context, owner string) (bool, error) {
	res, err := l.redis.RunScript(ctx, extendScript, []string{syncLockKey}, owner, l.ttl.Milliseconds())
	if err != nil {
		return false, err
	}
	n, _ := res.(int64)
	return n == 1, nil
}

// Release drops the lock if owner still holds it.
func (l *SyncLock) Release(ctx context.Context, owner string) error {
	_, err := l.redis.RunScript(ctx, releaseScript, []string{syncLockKey}, owner)
	return err
}

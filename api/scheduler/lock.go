package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// release only deletes the lock when the caller still owns it
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implements Locker with SET NX
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker uses client for every lock
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func lockKey(name string) string {
	return "scheduler:lock:" + name
}

// TryLock takes the named lock for ttl if nobody holds it
func (l *RedisLocker) TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, lockKey(name), owner, ttl).Result()
}

// Unlock releases the named lock if owner holds it
func (l *RedisLocker) Unlock(ctx context.Context, name, owner string) error {
	return release.Run(ctx, l.client, []string{lockKey(name)}, owner).Err()
}

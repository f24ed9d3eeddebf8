package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const phoneLockPrefix = "turnLock:"

// PhoneLock serializes turns for a single phone. Turns from different phones
// never contend; duplicate or rapid-fire turns from the same phone do.
type PhoneLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPhoneLock returns a lock manager backed by the given Redis client. The
// TTL bounds how long a crashed turn can hold its lock.
func NewPhoneLock(client *redis.Client, ttl time.Duration) *PhoneLock {
	return &PhoneLock{client: client, ttl: ttl}
}

// Acquire takes the lock for phone, waiting briefly if another turn holds
// it. Returns a release func, or an error when the lock could not be taken
// before ctx expired.
func (l *PhoneLock) Acquire(ctx context.Context, phone string) (func(), error) {
	key := phoneLockPrefix + phone
	for {
		ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire turn lock for %s: %w", phone, err)
		}
		if ok {
			return func() {
				l.client.Del(context.Background(), key)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("turn lock for %s: %w", phone, ctx.Err())
		case <-time.After(50 * time.Millisecond):
		}
	}
}

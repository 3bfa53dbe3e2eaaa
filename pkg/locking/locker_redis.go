package locking

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
)

// LockerRedis is a LockerInterface backed by redislock for multi-instance
// deployments
type LockerRedis struct {
	locker *redislock.Client
}

// NewLockerRedis builds a new LockerRedis instance
func NewLockerRedis(redisClient *redis.Client) *LockerRedis {
	return &LockerRedis{locker: redislock.New(redisClient)}
}

// Acquire acquires a lock, retrying with a linear backoff until the deadline
func (l *LockerRedis) Acquire(ctx context.Context, key string, ttl time.Duration) (LockInterface, error) {
	ctx, cancel := context.WithDeadline(ctx, time.Now().Add(time.Minute))
	defer cancel()

	obtained, err := l.locker.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(500 * time.Millisecond),
	})
	if err != nil {
		return nil, err
	}

	return &LockRedis{lock: obtained}, nil
}

// LockRedis is a redis implementation of a LockInterface
type LockRedis struct {
	lock *redislock.Lock
}

// Key returns the key of the lock
func (l *LockRedis) Key() string {
	return l.lock.Key()
}

// Release releases the lock
func (l *LockRedis) Release(ctx context.Context) error {
	return l.lock.Release(ctx)
}

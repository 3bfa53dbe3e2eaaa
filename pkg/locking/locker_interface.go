package locking

import (
	"context"
	"time"
)

// LockerInterface hands out named locks; the assistant holds one per user
// while it executes a model-proposed mutation
type LockerInterface interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (LockInterface, error)
}

// LockInterface represents a held lock
type LockInterface interface {
	Key() string
	Release(ctx context.Context) error
}

package locking

import (
	"context"
	"sync"
	"time"
)

// LockerMemory is an in-process LockerInterface for single-instance
// deployments and tests
type LockerMemory struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockerMemory builds a new LockerMemory instance
func NewLockerMemory() *LockerMemory {
	return &LockerMemory{locks: map[string]*sync.Mutex{}}
}

// Acquire acquires a LockInterface; the ttl is ignored because the lock
// cannot outlive the process
func (l *LockerMemory) Acquire(_ context.Context, key string, _ time.Duration) (LockInterface, error) {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()

	return &LockMemory{key: key, release: lock.Unlock}, nil
}

// LockMemory is a memory implementation of a LockInterface
type LockMemory struct {
	key     string
	release func()
}

// Key returns the key of the lock
func (l *LockMemory) Key() string {
	return l.key
}

// Release releases a LockMemory
func (l *LockMemory) Release(_ context.Context) error {
	l.release()
	return nil
}

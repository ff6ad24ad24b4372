package lru

import "sync"

// RWLocker is the lock a Cache holds around its LRU. Mutating calls,
// including Get which updates recency, take the write lock.
type RWLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// NoOpRWLocker skips locking, for caches owned by a single goroutine.
type NoOpRWLocker struct{}

// Lock perform noop Lock() operation
func (nop NoOpRWLocker) Lock() {}

// Unlock perform noop Unlock() operation
func (nop NoOpRWLocker) Unlock() {}

// RLock perform noop RLock() operation
func (nop NoOpRWLocker) RLock() {}

// RUnlock perform noop RUnlock() operation
func (nop NoOpRWLocker) RUnlock() {}

var (
	_ RWLocker = (*sync.RWMutex)(nil)
	_ RWLocker = NoOpRWLocker{}
)

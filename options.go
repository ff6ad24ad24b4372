package lru

import (
	"go.uber.org/zap"

	"github.com/venkatsvpr/handlelru/simplelru"
)

type options[K comparable, V any] struct {
	onEvicted func(K, V)
	derive    simplelru.DeriveFunc[K, V]
	hasher    simplelru.Hasher[K]
	logger    *zap.Logger
	locker    RWLocker
}

// Option configures a Cache built by NewWithOpts.
type Option[K comparable, V any] func(*options[K, V])

// WithEvict registers a callback run, outside the cache lock, for every entry
// evicted, removed or purged.
func WithEvict[K comparable, V any](onEvicted func(key K, value V)) Option[K, V] {
	return func(o *options[K, V]) {
		o.onEvicted = onEvicted
	}
}

// WithDerive sets the function GetOrDerive uses to compute missing values.
func WithDerive[K comparable, V any](derive simplelru.DeriveFunc[K, V]) Option[K, V] {
	return func(o *options[K, V]) {
		o.derive = derive
	}
}

// WithHasher replaces the default seeded key hash.
func WithHasher[K comparable, V any](hasher simplelru.Hasher[K]) Option[K, V] {
	return func(o *options[K, V]) {
		o.hasher = hasher
	}
}

// WithLogger sets the logger used for debug events. Defaults to a no-op logger.
func WithLogger[K comparable, V any](logger *zap.Logger) Option[K, V] {
	return func(o *options[K, V]) {
		o.logger = logger
	}
}

// WithLocker replaces the default sync.RWMutex. NoOpRWLocker suits caches
// used from a single goroutine.
func WithLocker[K comparable, V any](locker RWLocker) Option[K, V] {
	return func(o *options[K, V]) {
		o.locker = locker
	}
}

package lru

import (
	"sync"

	"go.uber.org/zap"

	"github.com/venkatsvpr/handlelru/internal/singleflight"
	"github.com/venkatsvpr/handlelru/simplelru"
)

const (
	// DefaultEvictedBufferSize defines the default buffer size to store evicted key/val
	DefaultEvictedBufferSize = 16
)

// Cache is a thread-safe fixed size LRU cache.
type Cache[K comparable, V any] struct {
	lru         *simplelru.LRU[K, V]
	evictedKeys []K
	evictedVals []V
	onEvictedCB func(k K, v V)
	lock        RWLocker

	derive simplelru.DeriveFunc[K, V]
	flight singleflight.Group[K, V]
	stats  stats
	logger *zap.Logger
}

// New creates an LRU of the given size.
func New[K comparable, V any](size int) (*Cache[K, V], error) {
	return NewWithOpts[K, V](size)
}

// NewWithEvict constructs a fixed size cache with the given eviction
// callback.
func NewWithEvict[K comparable, V any](size int, onEvicted func(key K, value V)) (*Cache[K, V], error) {
	return NewWithOpts(size, WithEvict(onEvicted))
}

// NewWithOpts constructs a fixed size cache configured by opts.
func NewWithOpts[K comparable, V any](size int, opts ...Option[K, V]) (c *Cache[K, V], err error) {
	o := options[K, V]{}
	for _, opt := range opts {
		opt(&o)
	}
	c = &Cache[K, V]{
		onEvictedCB: o.onEvicted,
		lock:        o.locker,
		derive:      o.derive,
		logger:      o.logger,
	}
	if c.lock == nil {
		c.lock = &sync.RWMutex{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.initEvictBuffers()
	// Derivation happens outside the lock in GetOrDerive, so the inner
	// LRU is built without a derive function.
	c.lru, err = simplelru.NewLRUWithHasher[K, V](size, o.hasher, nil, c.onEvicted)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache[K, V]) initEvictBuffers() {
	c.evictedKeys = make([]K, 0, DefaultEvictedBufferSize)
	c.evictedVals = make([]V, 0, DefaultEvictedBufferSize)
}

// onEvicted save evicted key/val and sent in externally registered callback
// outside critical section
func (c *Cache[K, V]) onEvicted(k K, v V) {
	c.stats.evictions.Inc()
	c.evictedKeys = append(c.evictedKeys, k)
	c.evictedVals = append(c.evictedVals, v)
}

// takeEvicted hands over the evicted entries buffered so far. Has to be
// called with lock!
func (c *Cache[K, V]) takeEvicted() (ks []K, vs []V) {
	if len(c.evictedKeys) == 0 {
		return nil, nil
	}
	ks, vs = c.evictedKeys, c.evictedVals
	c.initEvictBuffers()
	return ks, vs
}

// notifyEvicted invokes the eviction callback outside the critical section.
func (c *Cache[K, V]) notifyEvicted(ks []K, vs []V) {
	if len(ks) == 0 {
		return
	}
	c.logger.Debug("evicted entries", zap.Int("evicted", len(ks)))
	if c.onEvictedCB == nil {
		return
	}
	for i := 0; i < len(ks); i++ {
		c.onEvictedCB(ks[i], vs[i])
	}
}

// Purge is used to completely clear the cache.
func (c *Cache[K, V]) Purge() {
	c.lock.Lock()
	c.lru.Purge()
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.notifyEvicted(ks, vs)
}

// Put stores a value as the most recently used entry and returns the value
// it replaced, if any.
func (c *Cache[K, V]) Put(key K, value V) (previous V, replaced bool) {
	c.lock.Lock()
	previous, replaced = c.lru.Put(key, value)
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.notifyEvicted(ks, vs)
	return previous, replaced
}

// Add adds a value to the cache. Returns true if an eviction occurred.
func (c *Cache[K, V]) Add(key K, value V) (evicted bool) {
	c.lock.Lock()
	evicted = c.lru.Add(key, value)
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.notifyEvicted(ks, vs)
	return evicted
}

// Get looks up a key's value from the cache without deriving it.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.lock.Lock()
	value, ok = c.lru.Get(key)
	c.lock.Unlock()
	c.stats.record(ok)
	return value, ok
}

// Contains checks if a key is in the cache, without updating the
// recent-ness or deleting it for being stale.
func (c *Cache[K, V]) Contains(key K) bool {
	c.lock.RLock()
	containKey := c.lru.Contains(key)
	c.lock.RUnlock()
	return containKey
}

// Peek returns the key value (or undefined if not found) without updating
// the "recently used"-ness of the key.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	c.lock.RLock()
	value, ok = c.lru.Peek(key)
	c.lock.RUnlock()
	return value, ok
}

// ContainsOrAdd checks if a key is in the cache without updating the
// recent-ness or deleting it for being stale, and if not, adds the value.
// Returns whether found and whether an eviction occurred.
func (c *Cache[K, V]) ContainsOrAdd(key K, value V) (ok, evicted bool) {
	c.lock.Lock()
	if c.lru.Contains(key) {
		c.lock.Unlock()
		return true, false
	}
	evicted = c.lru.Add(key, value)
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.notifyEvicted(ks, vs)
	return false, evicted
}

// PeekOrAdd checks if a key is in the cache without updating the
// recent-ness or deleting it for being stale, and if not, adds the value.
// Returns whether found and whether an eviction occurred.
func (c *Cache[K, V]) PeekOrAdd(key K, value V) (previous V, ok, evicted bool) {
	c.lock.Lock()
	previous, ok = c.lru.Peek(key)
	if ok {
		c.lock.Unlock()
		return previous, true, false
	}
	evicted = c.lru.Add(key, value)
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.notifyEvicted(ks, vs)
	return previous, false, evicted
}

// Remove removes the provided key from the cache.
func (c *Cache[K, V]) Remove(key K) (present bool) {
	c.lock.Lock()
	present = c.lru.Remove(key)
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.notifyEvicted(ks, vs)
	return present
}

// Resize changes the cache size.
func (c *Cache[K, V]) Resize(size int) (evicted int) {
	c.lock.Lock()
	from := c.lru.Cap()
	evicted = c.lru.Resize(size)
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.logger.Debug("resized cache", zap.Int("from", from), zap.Int("to", size), zap.Int("evicted", evicted))
	c.notifyEvicted(ks, vs)
	return evicted
}

// RemoveOldest removes the oldest item from the cache.
func (c *Cache[K, V]) RemoveOldest() (key K, value V, ok bool) {
	c.lock.Lock()
	key, value, ok = c.lru.RemoveOldest()
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.notifyEvicted(ks, vs)
	return
}

// GetOldest returns the oldest entry
func (c *Cache[K, V]) GetOldest() (key K, value V, ok bool) {
	c.lock.RLock()
	key, value, ok = c.lru.GetOldest()
	c.lock.RUnlock()
	return
}

// Keys returns a slice of the keys in the cache, from oldest to newest.
func (c *Cache[K, V]) Keys() []K {
	c.lock.RLock()
	keys := c.lru.Keys()
	c.lock.RUnlock()
	return keys
}

// Values returns a slice of the values in the cache, from oldest to newest.
func (c *Cache[K, V]) Values() []V {
	c.lock.RLock()
	values := c.lru.Values()
	c.lock.RUnlock()
	return values
}

// Len returns the number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.lock.RLock()
	length := c.lru.Len()
	c.lock.RUnlock()
	return length
}

// Cap returns the capacity of the cache.
func (c *Cache[K, V]) Cap() int {
	c.lock.RLock()
	capacity := c.lru.Cap()
	c.lock.RUnlock()
	return capacity
}

// Verify checks the invariants of the underlying LRU.
func (c *Cache[K, V]) Verify() error {
	c.lock.RLock()
	err := c.lru.Verify()
	c.lock.RUnlock()
	return err
}

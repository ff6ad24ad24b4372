package simplelru

import (
	"errors"
	"hash/maphash"

	"github.com/venkatsvpr/handlelru/internal"
)

// ErrNegativeSize is returned when a cache is constructed with a negative size.
var ErrNegativeSize = errors.New("must provide a non-negative size")

// EvictCallback is used to get a callback when a cache entry is evicted
type EvictCallback[K comparable, V any] func(key K, value V)

// DeriveFunc computes the value of a key missing from the cache. It reports
// false when no value can be produced, including when the computation fails.
type DeriveFunc[K comparable, V any] func(key K) (value V, ok bool)

// Hasher returns a stable hash for a key. Equal keys must hash equally.
type Hasher[K comparable] func(key K) uint64

// LRU implements a non-thread safe fixed size LRU cache.
//
// Entries live in an arena owned by the cache. The recency sequence and the
// hash index both refer to entries by handle; a hash bucket may hold several
// handles when distinct keys collide, and lookups compare the stored key.
type LRU[K comparable, V any] struct {
	size    int
	list    *internal.EntrySet[K, V]
	index   map[uint64][]internal.Handle
	hasher  Hasher[K]
	derive  DeriveFunc[K, V]
	onEvict EvictCallback[K, V]
}

// NewLRU constructs an LRU of the given size. A size of 0 is valid and makes
// every lookup miss.
func NewLRU[K comparable, V any](size int, onEvict EvictCallback[K, V]) (*LRU[K, V], error) {
	return NewLRUWithHasher[K, V](size, nil, nil, onEvict)
}

// NewLRUWithDerive constructs an LRU that computes missing values with derive
// on GetOrDerive.
func NewLRUWithDerive[K comparable, V any](size int, derive DeriveFunc[K, V], onEvict EvictCallback[K, V]) (*LRU[K, V], error) {
	return NewLRUWithHasher(size, nil, derive, onEvict)
}

// NewLRUWithHasher constructs an LRU with a custom key hasher. A nil hasher
// selects a seeded maphash of the key; derive and onEvict may be nil.
func NewLRUWithHasher[K comparable, V any](size int, hasher Hasher[K], derive DeriveFunc[K, V], onEvict EvictCallback[K, V]) (*LRU[K, V], error) {
	if size < 0 {
		return nil, ErrNegativeSize
	}
	if hasher == nil {
		seed := maphash.MakeSeed()
		hasher = func(key K) uint64 {
			return maphash.Comparable(seed, key)
		}
	}
	c := &LRU[K, V]{
		size:    size,
		list:    internal.NewEntrySet[K, V](size),
		index:   make(map[uint64][]internal.Handle, min(size, internal.MaxPrealloc)),
		hasher:  hasher,
		derive:  derive,
		onEvict: onEvict,
	}
	return c, nil
}

// Purge is used to completely clear the cache.
func (c *LRU[K, V]) Purge() {
	if c.onEvict != nil {
		for h := c.list.Front(); h != internal.None; h = c.list.Next(h) {
			e := c.list.Entry(h)
			c.onEvict(e.Key, e.Value)
		}
	}
	clear(c.index)
	c.list.Init()
}

// GetOrDerive looks up a key's value from the cache, updating its recency.
// On a miss the derive function, if any, is asked for the value, which is
// then stored. A derivation that produces nothing leaves the cache untouched.
func (c *LRU[K, V]) GetOrDerive(key K) (value V, ok bool) {
	if value, ok = c.Get(key); ok {
		return value, true
	}
	if c.derive == nil {
		return value, false
	}
	if value, ok = c.derive(key); !ok {
		var zero V
		return zero, false
	}
	c.Put(key, value)
	return value, true
}

// Get looks up a key's value from the cache without deriving it.
func (c *LRU[K, V]) Get(key K) (value V, ok bool) {
	h, found := c.lookup(key, c.hasher(key))
	if !found {
		return
	}
	c.list.Touch(h)
	return c.list.Entry(h).Value, true
}

// Put stores value under key as the most recently used entry, then evicts
// from the oldest end until the cache is within its size. It returns the
// value previously stored under key, if any.
func (c *LRU[K, V]) Put(key K, value V) (previous V, replaced bool) {
	previous, replaced, _ = c.put(key, value)
	return previous, replaced
}

// Add adds a value to the cache. Returns true if an eviction occurred.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	_, _, n := c.put(key, value)
	return n > 0
}

// Contains checks if a key is in the cache, without updating the recent-ness.
func (c *LRU[K, V]) Contains(key K) (ok bool) {
	_, ok = c.lookup(key, c.hasher(key))
	return ok
}

// Peek returns the key value (or undefined if not found) without updating
// the "recently used"-ness of the key.
func (c *LRU[K, V]) Peek(key K) (value V, ok bool) {
	if h, found := c.lookup(key, c.hasher(key)); found {
		return c.list.Entry(h).Value, true
	}
	return
}

// Remove removes the provided key from the cache, returning if the
// key was contained.
func (c *LRU[K, V]) Remove(key K) (present bool) {
	hash := c.hasher(key)
	if h, ok := c.lookup(key, hash); ok {
		e := c.detach(h)
		if c.onEvict != nil {
			c.onEvict(e.Key, e.Value)
		}
		return true
	}
	return false
}

// RemoveOldest removes the oldest item from the cache.
func (c *LRU[K, V]) RemoveOldest() (key K, value V, ok bool) {
	if c.list.Len() == 0 {
		return
	}
	e := c.evictOldest()
	return e.Key, e.Value, true
}

// GetOldest returns the oldest entry
func (c *LRU[K, V]) GetOldest() (key K, value V, ok bool) {
	if h := c.list.Front(); h != internal.None {
		e := c.list.Entry(h)
		return e.Key, e.Value, true
	}
	return
}

// Keys returns a slice of the keys in the cache, from oldest to newest.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, c.list.Len())
	for h := c.list.Front(); h != internal.None; h = c.list.Next(h) {
		keys = append(keys, c.list.Entry(h).Key)
	}
	return keys
}

// Values returns a slice of the values in the cache, from oldest to newest.
func (c *LRU[K, V]) Values() []V {
	values := make([]V, 0, c.list.Len())
	for h := c.list.Front(); h != internal.None; h = c.list.Next(h) {
		values = append(values, c.list.Entry(h).Value)
	}
	return values
}

// Len returns the number of items in the cache.
func (c *LRU[K, V]) Len() int {
	return c.list.Len()
}

// Cap returns the capacity of the cache.
func (c *LRU[K, V]) Cap() int {
	return c.size
}

// Resize changes the cache size, evicting the oldest entries that no longer
// fit. A negative size is treated as 0.
func (c *LRU[K, V]) Resize(size int) (evicted int) {
	if size < 0 {
		size = 0
	}
	c.size = size
	return c.shrink()
}

// put inserts key as a fresh entry at the back, replacing any entry already
// holding it, and then evicts down to size.
func (c *LRU[K, V]) put(key K, value V) (previous V, replaced bool, evicted int) {
	hash := c.hasher(key)
	if h, ok := c.lookup(key, hash); ok {
		previous, replaced = c.detach(h).Value, true
	}
	h := c.list.PushBack(key, value, hash)
	c.index[hash] = append(c.index[hash], h)
	return previous, replaced, c.shrink()
}

// shrink evicts from the oldest end while the cache is over size.
func (c *LRU[K, V]) shrink() (evicted int) {
	for c.list.Len() > c.size {
		c.evictOldest()
		evicted++
	}
	return evicted
}

// evictOldest removes the front entry from the sequence and the index and
// hands it to the eviction callback. The cache must not be empty.
func (c *LRU[K, V]) evictOldest() internal.Entry[K, V] {
	e := c.detach(c.list.Front())
	if c.onEvict != nil {
		c.onEvict(e.Key, e.Value)
	}
	return e
}

// lookup finds the handle holding key among the entries sharing its hash.
func (c *LRU[K, V]) lookup(key K, hash uint64) (internal.Handle, bool) {
	for _, h := range c.index[hash] {
		if c.list.Entry(h).Key == key {
			return h, true
		}
	}
	return internal.None, false
}

// detach removes h from both the index and the sequence and returns its entry.
func (c *LRU[K, V]) detach(h internal.Handle) internal.Entry[K, V] {
	e := c.list.Remove(h)
	c.unindex(e.Hash, h)
	return e
}

func (c *LRU[K, V]) unindex(hash uint64, h internal.Handle) {
	bucket := c.index[hash]
	for i, candidate := range bucket {
		if candidate != h {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket = bucket[:last]
		break
	}
	if len(bucket) == 0 {
		delete(c.index, hash)
		return
	}
	c.index[hash] = bucket
}

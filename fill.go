package lru

import (
	"go.uber.org/zap"
)

// GetOrDerive looks up a key's value from the cache. On a miss it computes
// the value with the derive function, if one was configured, and stores it.
//
// The derive function runs without holding the cache lock; concurrent misses
// for the same key wait for a single call. If the key was stored by someone
// else while deriving, the stored value is returned instead.
func (c *Cache[K, V]) GetOrDerive(key K) (value V, ok bool) {
	if value, ok = c.Get(key); ok || c.derive == nil {
		return value, ok
	}

	value, ok, shared := c.flight.Do(key, func() (V, bool) {
		c.stats.derivations.Inc()
		return c.derive(key)
	})
	if !ok {
		if !shared {
			c.stats.failedDerivations.Inc()
			c.logger.Debug("derive produced no value", zap.Any("key", key))
		}
		var zero V
		return zero, false
	}

	c.lock.Lock()
	if stored, found := c.lru.Get(key); found {
		c.lock.Unlock()
		return stored, true
	}
	c.lru.Put(key, value)
	ks, vs := c.takeEvicted()
	c.lock.Unlock()
	c.notifyEvicted(ks, vs)
	return value, true
}

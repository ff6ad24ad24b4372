package lru

import "go.uber.org/atomic"

// Stats is a snapshot of a Cache's counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	// Derivations counts calls made to the derive function; FailedDerivations
	// those that produced no value.
	Derivations       uint64
	FailedDerivations uint64
	// Evictions counts entries dropped by eviction, Remove, RemoveOldest or Purge.
	Evictions uint64
}

type stats struct {
	hits              atomic.Uint64
	misses            atomic.Uint64
	derivations       atomic.Uint64
	failedDerivations atomic.Uint64
	evictions         atomic.Uint64
}

func (s *stats) record(hit bool) {
	if hit {
		s.hits.Inc()
	} else {
		s.misses.Inc()
	}
}

// Stats returns the current counters. Counters are read independently, so a
// snapshot taken under concurrent use may be slightly skewed.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:              c.stats.hits.Load(),
		Misses:            c.stats.misses.Load(),
		Derivations:       c.stats.derivations.Load(),
		FailedDerivations: c.stats.failedDerivations.Load(),
		Evictions:         c.stats.evictions.Load(),
	}
}

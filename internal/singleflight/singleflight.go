// Package singleflight suppresses duplicate concurrent calls for the same key.
package singleflight

import "sync"

// call is an in-flight or completed Do call.
type call[V any] struct {
	wg  sync.WaitGroup
	val V
	ok  bool
}

// Group runs at most one function per key at a time. The zero value is ready
// to use.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

// Do executes fn for key, unless a call for key is already running, in which
// case it waits for that call and returns its result. shared reports whether
// the result came from another caller's fn.
func (g *Group[K, V]) Do(key K, fn func() (V, bool)) (val V, ok, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, found := g.m[key]; found {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.ok, true
	}
	c := new(call[V])
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	defer func() {
		c.wg.Done()
		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()
	}()
	c.val, c.ok = fn()
	return c.val, c.ok, false
}

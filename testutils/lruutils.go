// Package testutils holds behavioural tests shared by the cache
// implementations.
package testutils

import (
	"reflect"
	"testing"
)

// Cache is the part of the cache API the shared tests drive.
type Cache interface {
	GetOrDerive(key int) (int, bool)
	Put(key, value int) (int, bool)
	Add(key, value int) bool
	Get(key int) (int, bool)
	Contains(key int) bool
	Remove(key int) bool
	RemoveOldest() (int, int, bool)
	Keys() []int
	Len() int
	Purge()
	Resize(int) int
	Verify() error
}

// Verify fails the test if the cache reports a broken invariant.
func Verify(t testing.TB, l Cache) {
	t.Helper()
	if err := l.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

// Drain removes every entry oldest first and returns the keys in that order.
func Drain(t testing.TB, l Cache) []int {
	t.Helper()
	var keys []int
	for {
		k, _, ok := l.RemoveOldest()
		if !ok {
			break
		}
		keys = append(keys, k)
		Verify(t, l)
	}
	if l.Len() != 0 {
		t.Fatalf("bad len after drain: %v", l.Len())
	}
	return keys
}

// WantDrain drains the cache and compares the eviction order to want.
func WantDrain(t testing.TB, l Cache, want ...int) {
	t.Helper()
	if got := Drain(t, l); !reflect.DeepEqual(got, want) {
		t.Fatalf("drain order got: %v, want: %v", got, want)
	}
}

// BasicTest fills a cache of the given capacity twice over and checks
// eviction, removal, recency and purge.
func BasicTest(t *testing.T, l Cache, capacity int, evictCounter *int) {
	// add twice as much the capacity to check if eviction occurs
	for i := 0; i < 2*capacity; i++ {
		l.Put(i, i)
		if l.Len() > capacity {
			t.Fatalf("len %v exceeds capacity %v", l.Len(), capacity)
		}
	}
	Verify(t, l)

	if l.Len() != capacity {
		t.Fatalf("bad len: %v", l.Len())
	}
	if *evictCounter != capacity {
		t.Fatalf("bad evict count: %v", *evictCounter)
	}

	// cache should contain only the keys from capacity..2*capacity
	for i, k := range l.Keys() {
		if v, ok := l.Get(k); !ok || v != k || v != i+capacity {
			t.Fatalf("bad key: %v", k)
		}
	}
	for i := 0; i < capacity; i++ {
		if _, ok := l.Get(i); ok {
			t.Fatalf("should be evicted")
		}
	}

	// delete half the items from cache
	lastIndex := capacity + capacity/2
	for i := capacity; i < lastIndex; i++ {
		if ok := l.Remove(i); !ok {
			t.Fatalf("should be contained")
		}
		if ok := l.Remove(i); ok {
			t.Fatalf("should not be contained")
		}
		if _, ok := l.Get(i); ok {
			t.Fatalf("should be deleted")
		}
	}
	Verify(t, l)

	// this makes lastIndex the most recently used key
	l.Get(lastIndex)

	cacheLen := l.Len()
	if capacity-capacity/2 != cacheLen {
		t.Fatalf("invalid len. expected %v, got %v", capacity-capacity/2, cacheLen)
	}
	for i, k := range l.Keys() {
		if (i == cacheLen-1 && k != lastIndex) || (i < cacheLen-1 && k != i+lastIndex+1) {
			t.Fatalf("out of order key: %v %v %v", i, k, cacheLen-1)
		}
	}

	l.Purge()
	if l.Len() != 0 {
		t.Fatalf("bad len: %v", l.Len())
	}
	if _, ok := l.Get(capacity); ok {
		t.Fatalf("should contain nothing")
	}
	Verify(t, l)
}

// RecencyTest checks the orderings a capacity-3 cache must produce.
func RecencyTest(t *testing.T, newCache func() Cache) {
	t.Run("insertion order", func(t *testing.T) {
		l := newCache()
		l.Put(1, 1)
		l.Put(2, 2)
		l.Put(3, 3)
		WantDrain(t, l, 1, 2, 3)
	})
	t.Run("touch reorders", func(t *testing.T) {
		l := newCache()
		l.Put(10, 10)
		l.Put(20, 20)
		l.Put(30, 30)
		if v, ok := l.GetOrDerive(10); !ok || v != 10 {
			t.Fatalf("bad value: %v %v", v, ok)
		}
		Verify(t, l)
		WantDrain(t, l, 20, 30, 10)
	})
	t.Run("eviction on overflow", func(t *testing.T) {
		l := newCache()
		for _, k := range []int{10, 20, 30, 40} {
			l.Put(k, k)
			Verify(t, l)
		}
		WantDrain(t, l, 20, 30, 40)
	})
	t.Run("idempotent touch", func(t *testing.T) {
		l := newCache()
		l.Put(10, 10)
		l.Put(20, 20)
		l.Put(30, 30)
		l.Get(30)
		l.Get(30)
		Verify(t, l)
		WantDrain(t, l, 10, 20, 30)
	})
	t.Run("put replaces", func(t *testing.T) {
		l := newCache()
		l.Put(10, 10)
		l.Put(20, 20)
		if prev, ok := l.Put(10, 11); !ok || prev != 10 {
			t.Fatalf("bad previous value: %v %v", prev, ok)
		}
		if l.Len() != 2 {
			t.Fatalf("bad len: %v", l.Len())
		}
		if v, ok := l.Get(10); !ok || v != 11 {
			t.Fatalf("bad value: %v %v", v, ok)
		}
		Verify(t, l)
		WantDrain(t, l, 20, 10)
	})
	t.Run("round trip", func(t *testing.T) {
		l := newCache()
		for k := 0; k < 10; k++ {
			if _, replaced := l.Put(k, k*k); replaced {
				t.Fatalf("%v should not have been present", k)
			}
			if v, ok := l.GetOrDerive(k); !ok || v != k*k {
				t.Fatalf("bad value for %v: %v %v", k, v, ok)
			}
		}
		Verify(t, l)
	})
}

// ResizeTest checks shrinking, growing and draining via Resize on a cache
// created with capacity 5.
func ResizeTest(t *testing.T, l Cache) {
	for k := 1; k <= 5; k++ {
		l.Put(k, k)
	}
	if evicted := l.Resize(2); evicted != 3 {
		t.Fatalf("3 elements should have been evicted: %v", evicted)
	}
	Verify(t, l)
	if !reflect.DeepEqual(l.Keys(), []int{4, 5}) {
		t.Fatalf("bad keys after shrink: %v", l.Keys())
	}

	if evicted := l.Resize(4); evicted != 0 {
		t.Fatalf("0 elements should have been evicted: %v", evicted)
	}
	l.Put(6, 6)
	l.Put(7, 7)
	if l.Len() != 4 {
		t.Fatalf("bad len after grow: %v", l.Len())
	}
	Verify(t, l)

	if evicted := l.Resize(0); evicted != 4 {
		t.Fatalf("4 elements should have been evicted: %v", evicted)
	}
	if l.Len() != 0 {
		t.Fatalf("bad len after drain: %v", l.Len())
	}
	l.Put(8, 8)
	if l.Contains(8) {
		t.Fatalf("zero capacity cache should not hold 8")
	}
	Verify(t, l)
}

// AddTest checks that Add reports evictions.
func AddTest(t *testing.T, l Cache, capacity int, evictCounter *int) {
	for i := 0; i < capacity; i++ {
		if l.Add(i, i) || *evictCounter != 0 {
			t.Errorf("should not have an eviction")
		}
	}
	if !l.Add(capacity, capacity) || *evictCounter != 1 {
		t.Errorf("should have an eviction")
	}
	Verify(t, l)
}

// Package internal holds the recency sequence shared by the LRU caches.
package internal

// Handle addresses an entry slot in an EntrySet arena.
type Handle int

// None is the handle of no entry.
const None Handle = -1

// Entry is one stored key/value pair plus its position in the sequence.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
	Hash  uint64

	prev, next Handle
	live       bool
}

// EntrySet is an arena-backed doubly linked sequence of entries ordered
// from least recently used (front) to most recently used (back).
//
// Links are handles into the arena, never pointers, so a freed slot can be
// reused without leaving anything dangling. Handles of removed entries must
// not be used again by the caller.
type EntrySet[K comparable, V any] struct {
	slots []Entry[K, V]
	free  []Handle
	front Handle
	back  Handle
	len   int
}

// MaxPrealloc bounds the number of slots reserved up front; the arena grows
// on demand past it.
const MaxPrealloc = 256

// NewEntrySet returns an empty set with room reserved for up to hint entries.
func NewEntrySet[K comparable, V any](hint int) *EntrySet[K, V] {
	hint = min(max(hint, 0), MaxPrealloc)
	return &EntrySet[K, V]{
		slots: make([]Entry[K, V], 0, hint),
		front: None,
		back:  None,
	}
}

// Init clears the set.
func (s *EntrySet[K, V]) Init() *EntrySet[K, V] {
	clear(s.slots)
	s.slots = s.slots[:0]
	s.free = s.free[:0]
	s.front, s.back = None, None
	s.len = 0
	return s
}

// Len returns the number of linked entries.
func (s *EntrySet[K, V]) Len() int { return s.len }

// Front returns the least recently used entry, or None.
func (s *EntrySet[K, V]) Front() Handle { return s.front }

// Back returns the most recently used entry, or None.
func (s *EntrySet[K, V]) Back() Handle { return s.back }

// Next returns the entry after h towards the back, or None when h is not in
// the set.
func (s *EntrySet[K, V]) Next(h Handle) Handle {
	if !s.Live(h) {
		return None
	}
	return s.slots[h].next
}

// Prev returns the entry before h towards the front, or None when h is not
// in the set.
func (s *EntrySet[K, V]) Prev(h Handle) Handle {
	if !s.Live(h) {
		return None
	}
	return s.slots[h].prev
}

// Entry returns the entry stored at h. The pointer is valid until the next
// call that adds an entry to the set.
func (s *EntrySet[K, V]) Entry(h Handle) *Entry[K, V] { return &s.slots[h] }

// Live reports whether h addresses an entry currently in the set.
func (s *EntrySet[K, V]) Live(h Handle) bool {
	return h >= 0 && int(h) < len(s.slots) && s.slots[h].live
}

// PushBack appends a new entry as the most recently used one.
func (s *EntrySet[K, V]) PushBack(key K, value V, hash uint64) Handle {
	h := s.alloc()
	s.slots[h] = Entry[K, V]{
		Key:   key,
		Value: value,
		Hash:  hash,
		prev:  s.back,
		next:  None,
		live:  true,
	}
	if s.back == None {
		s.front = h
	} else {
		s.slots[s.back].next = h
	}
	s.back = h
	s.len++
	return h
}

// PopFront removes the least recently used entry and returns it.
func (s *EntrySet[K, V]) PopFront() (Entry[K, V], bool) {
	if s.front == None {
		return Entry[K, V]{}, false
	}
	return s.Remove(s.front), true
}

// Touch marks h as the most recently used entry.
func (s *EntrySet[K, V]) Touch(h Handle) {
	if h == s.back {
		return
	}
	s.unlink(h)
	e := &s.slots[h]
	e.prev, e.next = s.back, None
	if s.back == None {
		s.front = h
	} else {
		s.slots[s.back].next = h
	}
	s.back = h
	s.len++
}

// Remove unlinks h and returns its entry. The slot is released for reuse.
func (s *EntrySet[K, V]) Remove(h Handle) Entry[K, V] {
	s.unlink(h)
	e := s.slots[h]
	e.prev, e.next, e.live = None, None, false
	s.slots[h] = Entry[K, V]{prev: None, next: None}
	s.free = append(s.free, h)
	return e
}

// unlink detaches h from its neighbours and patches front and back.
func (s *EntrySet[K, V]) unlink(h Handle) {
	e := &s.slots[h]
	switch {
	case h == s.front && h == s.back:
		s.front, s.back = None, None
	case h == s.front:
		s.front = e.next
		s.slots[e.next].prev = None
	case h == s.back:
		s.back = e.prev
		s.slots[e.prev].next = None
	default:
		s.slots[e.prev].next = e.next
		s.slots[e.next].prev = e.prev
	}
	e.prev, e.next = None, None
	s.len--
}

func (s *EntrySet[K, V]) alloc() Handle {
	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		return h
	}
	s.slots = append(s.slots, Entry[K, V]{})
	return Handle(len(s.slots) - 1)
}

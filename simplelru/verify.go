package simplelru

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/venkatsvpr/handlelru/internal"
)

// ErrInvariantViolated is wrapped by every error Verify reports.
var ErrInvariantViolated = errors.New("lru invariant violated")

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolated, fmt.Sprintf(format, args...))
}

// Verify walks the recency sequence and the hash index and checks that they
// describe the same entries. It returns every broken invariant, combined, or
// nil. It is meant for tests; it costs O(n).
func (c *LRU[K, V]) Verify() error {
	var err error
	n := c.list.Len()
	front, back := c.list.Front(), c.list.Back()

	indexed := 0
	for _, bucket := range c.index {
		indexed += len(bucket)
	}
	if indexed != n {
		err = multierr.Append(err, violation("index holds %d handles, sequence length is %d", indexed, n))
	}
	if n > c.size {
		err = multierr.Append(err, violation("length %d exceeds size %d", n, c.size))
	}
	if (front == internal.None) != (back == internal.None) || (front == internal.None) != (len(c.index) == 0) {
		err = multierr.Append(err, violation("front %d, back %d and index of %d buckets disagree on emptiness", front, back, len(c.index)))
	}
	if front != internal.None {
		if !c.list.Live(front) {
			err = multierr.Append(err, violation("front %d is not a live entry", front))
		} else if p := c.list.Prev(front); p != internal.None {
			err = multierr.Append(err, violation("front %d has predecessor %d", front, p))
		}
	}
	if back != internal.None {
		if !c.list.Live(back) {
			err = multierr.Append(err, violation("back %d is not a live entry", back))
		} else if nx := c.list.Next(back); nx != internal.None {
			err = multierr.Append(err, violation("back %d has successor %d", back, nx))
		}
	}

	// Bound both walks so a cycle cannot loop forever.
	var forward []internal.Handle
	for h := front; h != internal.None && len(forward) <= n; h = c.list.Next(h) {
		if !c.list.Live(h) {
			err = multierr.Append(err, violation("forward walk reached dead handle %d", h))
			break
		}
		forward = append(forward, h)
	}
	var backward []internal.Handle
	for h := back; h != internal.None && len(backward) <= n; h = c.list.Prev(h) {
		if !c.list.Live(h) {
			err = multierr.Append(err, violation("backward walk reached dead handle %d", h))
			break
		}
		backward = append(backward, h)
	}
	if len(forward) != n {
		err = multierr.Append(err, violation("forward walk visited %d entries, length is %d", len(forward), n))
	}
	if len(backward) != len(forward) {
		err = multierr.Append(err, violation("backward walk visited %d entries, forward walk %d", len(backward), len(forward)))
	} else {
		for i, h := range forward {
			if backward[len(backward)-1-i] != h {
				err = multierr.Append(err, violation("walks diverge at position %d", i))
				break
			}
		}
	}

	for hash, bucket := range c.index {
		if len(bucket) == 0 {
			err = multierr.Append(err, violation("empty bucket for hash %#x", hash))
		}
		for i, h := range bucket {
			if !c.list.Live(h) {
				err = multierr.Append(err, violation("hash %#x indexes dead handle %d", hash, h))
				continue
			}
			e := c.list.Entry(h)
			if e.Hash != hash {
				err = multierr.Append(err, violation("handle %d stored hash %#x under bucket %#x", h, e.Hash, hash))
			}
			if got := c.hasher(e.Key); got != e.Hash {
				err = multierr.Append(err, violation("key %v hashes to %#x, cached hash is %#x", e.Key, got, e.Hash))
			}
			for _, other := range bucket[i+1:] {
				if c.list.Live(other) && c.list.Entry(other).Key == e.Key {
					err = multierr.Append(err, violation("key %v indexed by handles %d and %d", e.Key, h, other))
				}
			}
		}
	}
	return err
}

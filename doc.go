// Package lru provides a thread-safe, fixed size LRU cache that can compute
// missing values on demand.
//
// Cache wraps simplelru.LRU, a single-threaded cache whose entries live in an
// arena addressed by handles: the recency list and the hash index never hold
// pointers to entries, so evicting one cannot leave the other dangling.
// Distinct keys with equal hashes share an index bucket and are told apart by
// comparing keys.
//
// All methods of Cache take a lock while operating, and are therefore
// thread-safe for consumers. Eviction callbacks and derive functions run
// outside the lock.
package lru

// Package keylock provides per-key mutual exclusion so read-check-write
// sequences on one record do not race while operations on different keys stay
// concurrent.
package keylock

import "sync"

const shards = 64

// KeyedMutex is a fixed-shard map of mutexes keyed by string.
// Distinct keys may share a shard; that only costs contention, not correctness.
type KeyedMutex struct {
	locks [shards]sync.Mutex
}

// New returns a KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the mutex for key and returns the unlock function.
func (m *KeyedMutex) Lock(key string) func() {
	l := &m.locks[fnv32(key)%shards]
	l.Lock()
	return l.Unlock
}

func fnv32(s string) uint32 {
	const (
		offset = 2166136261
		prime  = 16777619
	)
	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

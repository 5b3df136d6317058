package app

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex provides one mutex per transfer id, created on demand and
// discarded once the last holder releases it. It serializes workflow actions
// against the same transfer within this process; the database row lock covers
// other instances.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*mutexEntry
}

type mutexEntry struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for the given key and returns its release func.
func (k *keyedMutex) lock(key uuid.UUID) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[uuid.UUID]*mutexEntry)
	}
	entry, ok := k.entries[key]
	if !ok {
		entry = &mutexEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

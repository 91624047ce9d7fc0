package ingest

import "sync"

// targetLocks serializes replace operations per (owner, slug) key so two
// concurrent uploads to the same project cannot interleave their
// delete and insert phases.
type targetLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTargetLocks() *targetLocks {
	return &targetLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for a key, creating it on first use. Locks are
// kept for the process lifetime; the key space is bounded by the number
// of projects an instance ever touches.
func (t *targetLocks) lock(key string) *sync.Mutex {
	t.mu.Lock()
	m, ok := t.locks[key]
	if !ok {
		m = &sync.Mutex{}
		t.locks[key] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m
}

package shared

import "sync"

// StoreLocks serialises sale commits per store. A basket commit must verify
// and deduct stock as one critical section, so all writers for a store take
// the same mutex before entering the database transaction.
type StoreLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStoreLocks builds an empty lock table.
func NewStoreLocks() *StoreLocks {
	return &StoreLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for storeID, creating it on first use.
// The returned function releases the lock.
func (l *StoreLocks) Lock(storeID string) func() {
	l.mu.Lock()
	m, ok := l.locks[storeID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[storeID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

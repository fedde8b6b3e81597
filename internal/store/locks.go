package store

import "sync"

// Locks hands out one mutex per document identity. Engines hold the lock for
// the full load-mutate-store cycle so writers to the same document serialize
// within this process. The version check in the gateway covers other
// processes.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

func (l *Locks) For(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

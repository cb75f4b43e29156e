package server

import (
	"sync"

	"github.com/google/uuid"
)

// entityLocks serializes mutations per entity id. The engine assumes a
// single writer per execution/session graph; this is the mutual-exclusion
// boundary for the HTTP layer, where foreground edits and the offline sync
// client can race on the same entity.
type entityLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: map[uuid.UUID]*sync.Mutex{}}
}

// Lock acquires the mutation lock for id and returns the unlock func.
func (l *entityLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

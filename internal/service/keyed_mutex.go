package service

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes work per key. It is the in-process half of the
// issuance critical section: all Issue calls for one link id queue on
// one mutex while different links never contend. Entries are never
// reaped: links are never deleted, and a mutex per link is tiny.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (k *keyedMutex) Lock(id uuid.UUID) {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
}

func (k *keyedMutex) Unlock(id uuid.UUID) {
	k.mu.Lock()
	l := k.locks[id]
	k.mu.Unlock()

	l.Unlock()
}

// File: internal/services/chat/locks.go
package chat

import "sync"

// KeyedMutex serializes operations per chat so concurrent sends into the
// same chat cannot interleave their read-assemble-write cycles. Different
// chats proceed in parallel.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uint]*entry)}
}

func (k *KeyedMutex) Lock(id uint) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &entry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *KeyedMutex) Unlock(id uint) {
	k.mu.Lock()
	e := k.locks[id]
	e.refs--
	if e.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}

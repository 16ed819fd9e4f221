package scheduling

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex provides one mutex per appointment so status transitions on the
// same appointment are linearized while unrelated appointments stay parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockState
}

type lockState struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*lockState)}
}

func (k *keyedMutex) Lock(id uuid.UUID) {
	k.mu.Lock()
	st, ok := k.locks[id]
	if !ok {
		st = &lockState{}
		k.locks[id] = st
	}
	st.refs++
	k.mu.Unlock()

	st.mu.Lock()
}

func (k *keyedMutex) Unlock(id uuid.UUID) {
	k.mu.Lock()
	st := k.locks[id]
	st.refs--
	if st.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	st.mu.Unlock()
}

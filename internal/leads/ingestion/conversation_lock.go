package ingestion

import (
	"sync"

	"github.com/google/uuid"
)

// conversationLocks hands out one mutex per conversation id. Entries are
// dropped when their last holder unlocks, so the map only holds ids with
// an ingest in flight.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*conversationLock
}

type conversationLock struct {
	mu   sync.Mutex
	refs int
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[uuid.UUID]*conversationLock)}
}

// lock blocks until id is free and returns the matching unlock func.
func (l *conversationLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &conversationLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *conversationLocks) inFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

package room

import "sync"

// roomLocks serializes the mutating operations of one room: advance, start,
// delete and rate all run under the room's lock, so a rating reset is always
// strictly ordered against the rate calls of the outgoing song. Reads and
// membership changes stay lock-free. Entries are refcounted so deleted rooms
// do not accumulate mutexes.
type roomLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{entries: make(map[string]*lockEntry)}
}

// acquire blocks until the room's lock is held and returns the release func.
func (l *roomLocks) acquire(id string) func() {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}

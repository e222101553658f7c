package session

import "sync"

// UserLocks serializes all session mutation for a single user: ordinary chat
// messages and asynchronous payment events take the same lock, so two
// transitions can never interleave on one session. Different users proceed
// in parallel.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*userLock)}
}

// Do runs fn while holding the user's lock. Lock entries are refcounted and
// removed once the last waiter releases, so the map does not grow with the
// total number of users ever seen.
func (l *UserLocks) Do(userID string, fn func() error) error {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	err := fn()
	entry.mu.Unlock()

	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, userID)
	}
	l.mu.Unlock()
	return err
}

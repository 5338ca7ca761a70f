package player

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning reports that another player holds the instance lock.
var ErrAlreadyRunning = errors.New("another vibeshuffle player is already running")

// Lock is the single-instance lock held for the life of a player.
type Lock struct {
	lock *flock.Flock
}

// AcquireLock takes the lock at path without blocking.
func AcquireLock(path string) (*Lock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return &Lock{lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.lock.Path() }

// Release unlocks.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

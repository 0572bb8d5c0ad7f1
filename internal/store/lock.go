package store

import (
	"errors"
	"fmt"
	"os"

	"journalclub/internal/apperr"
)

// errLockHeld is returned by the platform acquire when another process
// holds the lock.
var errLockHeld = errors.New("lock held by another process")

// Lock is an exclusive advisory lock serializing batch passes. Acquisition
// never blocks: a second pass started while one is running fails fast with
// LockContentionError and can simply be retried later.
type Lock struct {
	path string
	f    *os.File
}

// AcquireLock takes the exclusive lock at path without waiting.
func AcquireLock(path string) (*Lock, error) {
	f, err := acquireLock(path)
	if err != nil {
		if errors.Is(err, errLockHeld) {
			return nil, apperr.NewLockContention(path)
		}
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	return &Lock{path: path, f: f}, nil
}

// Release drops the lock. Safe to call on a nil lock and idempotent.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	return releaseLock(f)
}

//go:build windows

package store

import (
	"errors"
	"os"
)

// Windows has no flock; an exclusive-create lock file gives the same
// fail-fast semantics.

func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, errLockHeld
		}
		return nil, err
	}
	return f, nil
}

func releaseLock(f *os.File) error {
	name := f.Name()
	err := f.Close()
	if rerr := os.Remove(name); err == nil {
		err = rerr
	}
	return err
}

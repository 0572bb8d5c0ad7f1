//go:build unix

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journalclub/internal/apperr"
)

func TestLockExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.lock")

	l1, err := AcquireLock(path)
	require.NoError(t, err)

	var contention *apperr.LockContentionError
	_, err = AcquireLock(path)
	require.ErrorAs(t, err, &contention)
	assert.Equal(t, path, contention.Path)

	require.NoError(t, l1.Release())

	l2, err := AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}

func TestLockReleaseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.lock")
	l, err := AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, l.Release())
	assert.NoError(t, l.Release())

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}

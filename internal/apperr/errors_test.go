package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictErrorMatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("fetch pass: %w", NewConflict("doi:10.1234/abc"))

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "doi:10.1234/abc", conflict.Key)
	assert.Contains(t, err.Error(), "already recorded")
}

func TestIllegalTransitionError(t *testing.T) {
	err := NewIllegalTransition("url:https://example.org/a", "already decided")

	var illegal *IllegalTransitionError
	require.True(t, errors.As(error(err), &illegal))
	assert.Equal(t, "already decided", illegal.Reason)
}

func TestCorruptStoreErrorUnwraps(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := fmt.Errorf("open: %w", NewCorruptStore("data/seen.json", "parse", cause))

	var corrupt *CorruptStoreError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, "data/seen.json", corrupt.Path)
	assert.ErrorIs(t, err, cause)
}

func TestLockContentionError(t *testing.T) {
	err := NewLockContention("data/engine.lock")

	var contention *LockContentionError
	require.True(t, errors.As(error(err), &contention))
	assert.Contains(t, err.Error(), "data/engine.lock")
}

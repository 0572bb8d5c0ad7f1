// Package apperr defines the typed errors shared across the engine. Callers
// match them with errors.As, so wrapping with %w is safe everywhere.
package apperr

import "fmt"

// ConflictError reports an attempt to insert a record whose identity,
// primary or secondary, is already present in the seen store.
type ConflictError struct {
	Key string
}

func NewConflict(key string) *ConflictError {
	return &ConflictError{Key: key}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("identity already recorded: %s", e.Key)
}

// IllegalTransitionError reports a tier or substate change the state
// machine does not allow, including transitions on already-decided records.
type IllegalTransitionError struct {
	Key    string
	Reason string
}

func NewIllegalTransition(key, reason string) *IllegalTransitionError {
	return &IllegalTransitionError{Key: key, Reason: reason}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition for %s: %s", e.Key, e.Reason)
}

// LockContentionError reports that another pass holds the store lock. The
// current invocation aborts cleanly and can be retried later.
type LockContentionError struct {
	Path string
}

func NewLockContention(path string) *LockContentionError {
	return &LockContentionError{Path: path}
}

func (e *LockContentionError) Error() string {
	return fmt.Sprintf("another pass holds the lock: %s", e.Path)
}

// CorruptStoreError reports that a persisted file failed structural
// validation on load. The engine refuses to proceed rather than guess at a
// reconciled state, and never overwrites the bad file.
type CorruptStoreError struct {
	Path   string
	Detail string
	Err    error
}

func NewCorruptStore(path, detail string, err error) *CorruptStoreError {
	return &CorruptStoreError{Path: path, Detail: detail, Err: err}
}

func (e *CorruptStoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt store %s: %s: %v", e.Path, e.Detail, e.Err)
	}
	return fmt.Sprintf("corrupt store %s: %s", e.Path, e.Detail)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

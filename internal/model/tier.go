package model

import (
	"fmt"
	"strings"
	"unicode"
)

// Tier is the user's disposition decision for an article: read in full,
// read the abstract, keep as a methodology reference, or skip. The zero
// value means undecided; undecided records are never persisted, so absence
// from the store is what makes an article reappear in later digests.
type Tier string

const (
	TierNone     Tier = ""
	TierFull     Tier = "full"
	TierAbstract Tier = "abstract"
	TierMethod   Tier = "method"
	TierSkip     Tier = "skip"
)

// Tiers lists the decided tiers in display order.
func Tiers() []Tier {
	return []Tier{TierFull, TierAbstract, TierMethod, TierSkip}
}

func (t Tier) Valid() bool {
	switch t {
	case TierFull, TierAbstract, TierMethod, TierSkip:
		return true
	}
	return false
}

// Letter returns the single-letter reply form.
func (t Tier) Letter() string {
	switch t {
	case TierFull:
		return "F"
	case TierAbstract:
		return "A"
	case TierMethod:
		return "M"
	case TierSkip:
		return "S"
	}
	return ""
}

// TierFromLetter maps a reply letter to its tier, case-insensitively.
func TierFromLetter(r rune) (Tier, bool) {
	switch unicode.ToUpper(r) {
	case 'F':
		return TierFull, true
	case 'A':
		return TierAbstract, true
	case 'M':
		return TierMethod, true
	case 'S':
		return TierSkip, true
	}
	return TierNone, false
}

// ParseTier accepts both the reply letter and the full tier name,
// case-insensitively.
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) == 1 {
		if t, ok := TierFromLetter(r[0]); ok {
			return t, nil
		}
	}
	t := Tier(strings.ToLower(s))
	if !t.Valid() {
		return TierNone, fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// State is the per-tier sub-lifecycle of a record.
type State string

const (
	StateQueuedFull     State = "queued-full"
	StateQueuedAbstract State = "queued-abstract"
	StateMethodologyRef State = "methodology-ref"
	StateSkipped        State = "skipped"
	StateRead           State = "read"
	StateReviewed       State = "reviewed"
)

// InitialState is the entry state a record takes when its tier is decided.
func InitialState(t Tier) State {
	switch t {
	case TierFull:
		return StateQueuedFull
	case TierAbstract:
		return StateQueuedAbstract
	case TierMethod:
		return StateMethodologyRef
	case TierSkip:
		return StateSkipped
	}
	return ""
}

// NextState returns the single legal successor of a state. Substate
// advances never skip or regress, so anything else is illegal.
func NextState(s State) (State, bool) {
	switch s {
	case StateQueuedFull:
		return StateRead, true
	case StateQueuedAbstract:
		return StateReviewed, true
	}
	return "", false
}

// Terminal reports whether no further substate advance is allowed.
func (s State) Terminal() bool {
	_, ok := NextState(s)
	return !ok
}

// ValidState reports whether s belongs to tier t's lifecycle.
func ValidState(t Tier, s State) bool {
	if s == InitialState(t) {
		return true
	}
	next, ok := NextState(InitialState(t))
	return ok && s == next
}

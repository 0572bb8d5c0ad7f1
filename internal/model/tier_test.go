package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFromLetter(t *testing.T) {
	cases := []struct {
		in   rune
		want Tier
		ok   bool
	}{
		{'F', TierFull, true},
		{'f', TierFull, true},
		{'A', TierAbstract, true},
		{'m', TierMethod, true},
		{'S', TierSkip, true},
		{'X', TierNone, false},
		{'1', TierNone, false},
	}
	for _, c := range cases {
		got, ok := TierFromLetter(c.in)
		assert.Equal(t, c.ok, ok, "letter %q", c.in)
		assert.Equal(t, c.want, got, "letter %q", c.in)
	}
}

func TestInitialStateAndAdvance(t *testing.T) {
	assert.Equal(t, StateQueuedFull, InitialState(TierFull))
	assert.Equal(t, StateQueuedAbstract, InitialState(TierAbstract))
	assert.Equal(t, StateMethodologyRef, InitialState(TierMethod))
	assert.Equal(t, StateSkipped, InitialState(TierSkip))

	next, ok := NextState(StateQueuedFull)
	require.True(t, ok)
	assert.Equal(t, StateRead, next)

	next, ok = NextState(StateQueuedAbstract)
	require.True(t, ok)
	assert.Equal(t, StateReviewed, next)

	_, ok = NextState(StateMethodologyRef)
	assert.False(t, ok)
	_, ok = NextState(StateSkipped)
	assert.False(t, ok)
	_, ok = NextState(StateRead)
	assert.False(t, ok, "advanced states are terminal")
}

func TestValidState(t *testing.T) {
	assert.True(t, ValidState(TierFull, StateQueuedFull))
	assert.True(t, ValidState(TierFull, StateRead))
	assert.False(t, ValidState(TierFull, StateReviewed))
	assert.True(t, ValidState(TierSkip, StateSkipped))
	assert.False(t, ValidState(TierSkip, StateRead))
}

func TestIdentityKeyRoundTrip(t *testing.T) {
	cases := []Identity{
		DOI("10.1234/abc"),
		DOI("10.5555/isbn:978-0"),
		URL("https://example.org/articles/42?page=1"),
	}
	for _, id := range cases {
		got, err := ParseKey(id.Key())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	_, err := ParseKey("doi:")
	assert.Error(t, err)
	_, err = ParseKey("issn:1234-5678")
	assert.Error(t, err)
	_, err = ParseKey("nonsense")
	assert.Error(t, err)
}

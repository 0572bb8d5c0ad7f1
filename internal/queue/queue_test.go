package queue

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journalclub/internal/model"
	"journalclub/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "seen.json"))
	require.NoError(t, err)

	seed := []struct {
		doi  string
		tier model.Tier
		seen string
		read bool
	}{
		{"10.1/f-old", model.TierFull, "2026-03-01", false},
		{"10.1/f-new", model.TierFull, "2026-05-01", false},
		{"10.1/f-done", model.TierFull, "2026-02-01", true},
		{"10.1/a-one", model.TierAbstract, "2026-04-01", false},
		{"10.1/s-one", model.TierSkip, "2026-04-02", false},
	}
	for _, s := range seed {
		_, err := st.ApplyTransition(model.Record{Identity: model.DOI(s.doi), FirstSeen: s.seen}, s.tier)
		require.NoError(t, err)
		if s.read {
			_, err = st.AdvanceSubstate(model.DOI(s.doi), model.StateRead)
			require.NoError(t, err)
		}
	}
	return st
}

func TestByTierOldestFirst(t *testing.T) {
	v := New(seedStore(t))
	full := v.ByTier(model.TierFull)
	require.Len(t, full, 3)
	assert.Equal(t, "10.1/f-done", full[0].Identity.Value)
	assert.Equal(t, "10.1/f-old", full[1].Identity.Value)
	assert.Equal(t, "10.1/f-new", full[2].Identity.Value)
}

func TestOldestUnreadSkipsAdvanced(t *testing.T) {
	v := New(seedStore(t))
	unread := v.OldestUnread(model.TierFull, 10)
	require.Len(t, unread, 2)
	assert.Equal(t, "10.1/f-old", unread[0].Identity.Value)
	assert.Equal(t, "10.1/f-new", unread[1].Identity.Value)

	capped := v.OldestUnread(model.TierFull, 1)
	require.Len(t, capped, 1)
	assert.Equal(t, "10.1/f-old", capped[0].Identity.Value)
}

func TestCountsByTier(t *testing.T) {
	v := New(seedStore(t))
	counts := v.CountsByTier()
	assert.Equal(t, 3, counts[model.TierFull])
	assert.Equal(t, 1, counts[model.TierAbstract])
	assert.Equal(t, 1, counts[model.TierSkip])
	assert.Equal(t, 0, counts[model.TierMethod])
}

func TestEmptyTier(t *testing.T) {
	v := New(seedStore(t))
	assert.Empty(t, v.ByTier(model.TierMethod))
	assert.Empty(t, v.OldestUnread(model.TierMethod, 5))
}

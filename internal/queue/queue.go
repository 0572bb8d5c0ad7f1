// Package queue is a read-only projection of the seen store into per-tier
// reading backlogs. It computes from store state at call time and never
// mutates, so it can be rebuilt from the store alone.
package queue

import (
	"sort"

	"journalclub/internal/model"
	"journalclub/internal/store"
)

type View struct {
	st *store.Store
}

func New(st *store.Store) *View { return &View{st: st} }

// ByTier lists every record in a tier, oldest first.
func (v *View) ByTier(t model.Tier) []model.Record {
	var out []model.Record
	for _, r := range v.st.All() {
		if r.Tier == t {
			out = append(out, r)
		}
	}
	sortOldestFirst(out)
	return out
}

// OldestUnread lists up to n records still in the tier's entry state, the
// ones waiting to be read or reviewed, oldest first.
func (v *View) OldestUnread(t model.Tier, n int) []model.Record {
	entry := model.InitialState(t)
	var out []model.Record
	for _, r := range v.st.All() {
		if r.Tier == t && r.State == entry {
			out = append(out, r)
		}
	}
	sortOldestFirst(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CountsByTier tallies all records per tier.
func (v *View) CountsByTier() map[model.Tier]int {
	counts := make(map[model.Tier]int)
	for _, r := range v.st.All() {
		counts[r.Tier]++
	}
	return counts
}

func sortOldestFirst(recs []model.Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].FirstSeen != recs[j].FirstSeen {
			return recs[i].FirstSeen < recs[j].FirstSeen
		}
		return recs[i].Identity.Key() < recs[j].Identity.Key()
	})
}

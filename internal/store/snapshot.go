package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"journalclub/internal/apperr"
	"journalclub/internal/fsutil"
	"journalclub/internal/model"
)

const snapshotsVersion = 1

// SnapshotEntry pins one digest position: the ordinal the user replies with
// and the full candidate payload needed to materialize a record later, so a
// reply stays applicable even after the candidate pool has moved on.
type SnapshotEntry struct {
	Ordinal   int          `json:"ordinal"`
	Key       string       `json:"key"`
	Candidate model.Record `json:"candidate"`
}

// Snapshot is one sent digest: an immutable ordinal-to-article mapping.
// Building a newer snapshot marks all earlier ones superseded, which
// invalidates replies addressed to them.
type Snapshot struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Superseded bool            `json:"superseded"`
	Entries    []SnapshotEntry `json:"entries"`
}

// Size reports how many ordinals the snapshot holds.
func (s *Snapshot) Size() int { return len(s.Entries) }

// Resolve maps an ordinal to its entry.
func (s *Snapshot) Resolve(ordinal int) (SnapshotEntry, bool) {
	for _, e := range s.Entries {
		if e.Ordinal == ordinal {
			return e, true
		}
	}
	return SnapshotEntry{}, false
}

// Contains reports whether an identity key appears in the snapshot.
func (s *Snapshot) Contains(key string) bool {
	for _, e := range s.Entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

type snapshotsFile struct {
	Version   int         `json:"version"`
	Snapshots []*Snapshot `json:"snapshots"`
}

// Snapshots is the persisted snapshot history, oldest first. Kept whole:
// past digests stay resolvable for audit and for seniority of reappearing
// candidates.
type Snapshots struct {
	path    string
	history []*Snapshot
	now     func() time.Time
	newID   func() string
}

// OpenSnapshots loads the snapshot history at path, starting empty if the
// file does not exist yet.
func OpenSnapshots(path string) (*Snapshots, error) {
	h := &Snapshots{
		path:  path,
		now:   time.Now,
		newID: uuid.NewString,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}

	var file snapshotsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, apperr.NewCorruptStore(path, "invalid JSON", err)
	}
	if file.Version != snapshotsVersion {
		return nil, apperr.NewCorruptStore(path, fmt.Sprintf("unsupported version %d", file.Version), nil)
	}
	for i, snap := range file.Snapshots {
		if snap == nil || snap.ID == "" {
			return nil, apperr.NewCorruptStore(path, fmt.Sprintf("snapshot %d has no id", i), nil)
		}
		for _, e := range snap.Entries {
			if e.Ordinal < 1 || e.Ordinal > len(snap.Entries) {
				return nil, apperr.NewCorruptStore(path, fmt.Sprintf("snapshot %s has ordinal %d outside 1..%d", snap.ID, e.Ordinal, len(snap.Entries)), nil)
			}
		}
	}
	h.history = file.Snapshots
	return h, nil
}

// Build takes the top limit ranked candidates, assigns ordinals 1..n,
// supersedes every earlier snapshot, and persists the whole history in one
// atomic write.
func (h *Snapshots) Build(ranked []model.Record, limit int) (*Snapshot, error) {
	if limit < 1 {
		return nil, fmt.Errorf("snapshot limit must be positive, got %d", limit)
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no candidates to snapshot")
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}

	snap := &Snapshot{
		ID:        h.newID(),
		CreatedAt: h.now().UTC(),
		Entries:   make([]SnapshotEntry, 0, limit),
	}
	for i := 0; i < limit; i++ {
		snap.Entries = append(snap.Entries, SnapshotEntry{
			Ordinal:   i + 1,
			Key:       ranked[i].Identity.Key(),
			Candidate: ranked[i],
		})
	}

	for _, prev := range h.history {
		prev.Superseded = true
	}
	h.history = append(h.history, snap)
	if err := h.save(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Latest returns the most recent snapshot.
func (h *Snapshots) Latest() (*Snapshot, bool) {
	if len(h.history) == 0 {
		return nil, false
	}
	return h.history[len(h.history)-1], true
}

// ByID finds a snapshot anywhere in the history.
func (h *Snapshots) ByID(id string) (*Snapshot, bool) {
	for _, snap := range h.history {
		if snap.ID == id {
			return snap, true
		}
	}
	return nil, false
}

// Len reports how many snapshots the history holds.
func (h *Snapshots) Len() int { return len(h.history) }

// EarliestAppearance returns the date of the first snapshot that carried the
// identity key. A candidate reappearing across digests keeps that date as
// its first-seen date, so waiting does not reset its seniority.
func (h *Snapshots) EarliestAppearance(key string) (string, bool) {
	for _, snap := range h.history {
		if snap.Contains(key) {
			return model.DateOf(snap.CreatedAt), true
		}
	}
	return "", false
}

func (h *Snapshots) save() error {
	data, err := json.MarshalIndent(snapshotsFile{Version: snapshotsVersion, Snapshots: h.history}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}
	return fsutil.WriteFileAtomic(h.path, data, 0o644)
}

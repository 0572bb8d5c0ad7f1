// Package pipeline runs the engine's two passes over the shared data
// directory: the fetch pass that turns feed items into a ranked digest
// snapshot, and the reply pass that applies tier decisions back onto the
// store. Passes serialize through an in-process mutex and a cross-process
// advisory lock; a pass that cannot get the lock fails fast rather than
// waiting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"journalclub/internal/config"
	"journalclub/internal/digest"
	"journalclub/internal/events"
	"journalclub/internal/extract"
	"journalclub/internal/feeds"
	"journalclub/internal/metadata"
	"journalclub/internal/model"
	"journalclub/internal/queue"
	"journalclub/internal/reply"
	"journalclub/internal/store"
)

// ErrUnknownSnapshot reports an explicitly addressed snapshot ID that is
// not in the history. Distinct from a stale snapshot, which is a reply
// outcome rather than an error.
var ErrUnknownSnapshot = errors.New("unknown snapshot")

// Engine wires the pass collaborators together. Enricher may be nil when
// metadata enrichment is disabled; everything else is required.
type Engine struct {
	Config    *config.Config
	Fetcher   *feeds.Fetcher
	Enricher  *metadata.Enricher
	Extractor *extract.Extractor
	Writer    *digest.Writer
	Sink      events.Sink
	Log       *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

// lockedSession opens the store and snapshot history under the advisory
// lock. The caller must release the returned lock.
func (e *Engine) lockedSession() (*store.Lock, *store.Store, *store.Snapshots, error) {
	if err := os.MkdirAll(e.Config.Store.Dir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	lock, err := store.AcquireLock(e.Config.LockPath())
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := store.Open(e.Config.SeenPath())
	if err != nil {
		lock.Release()
		return nil, nil, nil, err
	}
	snaps, err := store.OpenSnapshots(e.Config.SnapshotsPath())
	if err != nil {
		lock.Release()
		return nil, nil, nil, err
	}
	return lock, st, snaps, nil
}

// Reply parses and applies one reply against a snapshot: the named one
// when snapshotID is set, the latest otherwise. A reply against a
// superseded or missing snapshot comes back with every token rejected as
// stale rather than as an error.
func (e *Engine) Reply(ctx context.Context, text, snapshotID string) (reply.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, st, snaps, err := e.lockedSession()
	if err != nil {
		return reply.Outcome{}, err
	}
	defer lock.Release()

	snap, err := pickSnapshot(snaps, snapshotID)
	if err != nil {
		return reply.Outcome{}, err
	}
	res := reply.Parse(text, snap)
	out, err := reply.Apply(st, snap, res, e.Sink)
	if err != nil {
		return out, err
	}
	e.Log.Info("reply processed",
		zap.Int("applied", len(out.Applied)),
		zap.Int("rejected", len(out.Rejected)),
		zap.Bool("show_all", out.ShowAll))
	return out, nil
}

// ParseReply is the dry-run half of Reply: it parses against the target
// snapshot without touching the store. Safe without the lock because both
// stores are rewritten atomically.
func (e *Engine) ParseReply(text, snapshotID string) (reply.Result, *store.Snapshot, error) {
	snaps, err := store.OpenSnapshots(e.Config.SnapshotsPath())
	if err != nil {
		return reply.Result{}, nil, err
	}
	snap, err := pickSnapshot(snaps, snapshotID)
	if err != nil {
		return reply.Result{}, nil, err
	}
	return reply.Parse(text, snap), snap, nil
}

// pickSnapshot resolves the reply target. A nil snapshot (nothing sent
// yet) is legal and parses to a stale rejection; an unknown explicit ID
// is a caller mistake and errors.
func pickSnapshot(snaps *store.Snapshots, id string) (*store.Snapshot, error) {
	if id != "" {
		snap, ok := snaps.ByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSnapshot, id)
		}
		return snap, nil
	}
	snap, _ := snaps.Latest()
	return snap, nil
}

// Queue lists a tier's backlog, oldest first, capped at limit when
// positive. unreadOnly narrows to records still in the tier's entry
// state.
func (e *Engine) Queue(tier model.Tier, limit int, unreadOnly bool) ([]model.Record, error) {
	st, err := store.Open(e.Config.SeenPath())
	if err != nil {
		return nil, err
	}
	v := queue.New(st)
	if unreadOnly {
		return v.OldestUnread(tier, limit), nil
	}
	recs := v.ByTier(tier)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// SnapshotInfo is the stats view of one snapshot.
type SnapshotInfo struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Size       int       `json:"size"`
	Superseded bool      `json:"superseded"`
}

// StatsReport summarizes the data directory for the stats command and the
// stats endpoint.
type StatsReport struct {
	Store     store.Stats   `json:"store"`
	Snapshots int           `json:"snapshots"`
	Latest    *SnapshotInfo `json:"latest,omitempty"`
}

// Stats reads current store and snapshot totals.
func (e *Engine) Stats() (StatsReport, error) {
	st, err := store.Open(e.Config.SeenPath())
	if err != nil {
		return StatsReport{}, err
	}
	snaps, err := store.OpenSnapshots(e.Config.SnapshotsPath())
	if err != nil {
		return StatsReport{}, err
	}
	rep := StatsReport{Store: st.Stats(), Snapshots: snaps.Len()}
	if snap, ok := snaps.Latest(); ok {
		rep.Latest = &SnapshotInfo{
			ID:         snap.ID,
			CreatedAt:  snap.CreatedAt,
			Size:       snap.Size(),
			Superseded: snap.Superseded,
		}
	}
	return rep, nil
}

// AdvanceState marks one queued record read or reviewed.
func (e *Engine) AdvanceState(id model.Identity, next model.State) (model.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, st, _, err := e.lockedSession()
	if err != nil {
		return model.Record{}, err
	}
	defer lock.Release()

	return st.AdvanceSubstate(id, next)
}

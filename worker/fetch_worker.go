package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"journalclub/internal/apperr"
	"journalclub/internal/pipeline"
)

// FetchWorker runs fetch passes on an interval in serve mode.
type FetchWorker struct {
	Engine   *pipeline.Engine
	Interval time.Duration
	Log      *zap.Logger
}

func (w *FetchWorker) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 6 * time.Hour
	}

	// initial run
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *FetchWorker) runOnce(ctx context.Context) {
	report, err := w.Engine.RunFetch(ctx)
	if err != nil {
		var contention *apperr.LockContentionError
		if errors.As(err, &contention) {
			w.Log.Warn("fetch pass skipped, another pass holds the lock",
				zap.String("lock", contention.Path))
			return
		}
		w.Log.Error("fetch pass failed", zap.Error(err))
		return
	}
	if report.Snapshot == nil {
		w.Log.Info("fetch pass made no digest", zap.Int("candidates", report.Candidates))
		return
	}
	w.Log.Info("fetch pass published digest",
		zap.String("snapshot", report.Snapshot.ID),
		zap.Int("items", report.Snapshot.Size()),
		zap.String("digest", report.DigestPath))
}

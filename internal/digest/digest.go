// Package digest renders a snapshot into the outbox text the email
// collaborator sends. One file per snapshot; the engine never sends mail
// itself.
package digest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"journalclub/internal/extract"
	"journalclub/internal/fsutil"
	"journalclub/internal/model"
	"journalclub/internal/store"
)

// DefaultTitle is used when the config provides no digest title.
const DefaultTitle = "Journal digest {.CurrentDate}"

const (
	maxAbstractChars = 400
	condenseOverRune = 600
)

// Writer renders snapshots to the outbox directory.
type Writer struct {
	dir        string
	title      string
	summarizer Summarizer
	log        *zap.Logger
	now        func() time.Time
}

// NewWriter builds a digest writer. A nil summarizer means long abstracts
// are truncated instead of condensed.
func NewWriter(dir, title string, summarizer Summarizer, log *zap.Logger) *Writer {
	if title == "" {
		title = DefaultTitle
	}
	return &Writer{dir: dir, title: title, summarizer: summarizer, log: log, now: time.Now}
}

// Write renders the snapshot and returns the outbox file path.
func (w *Writer) Write(ctx context.Context, snap *store.Snapshot) (string, error) {
	now := w.now()
	data := Data{
		Title:      ExpandVars(w.title, now),
		Date:       model.DateOf(now),
		SnapshotID: snap.ID,
	}
	for _, e := range snap.Entries {
		rec := e.Candidate
		data.Items = append(data.Items, Item{
			Ordinal:  e.Ordinal,
			Title:    rec.Title,
			Meta:     metaLine(rec),
			Score:    rec.Score,
			Tags:     tagLine(rec.Tags),
			Link:     rec.Link(),
			Abstract: w.abstract(ctx, rec),
		})
	}

	body, err := Render(data)
	if err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create outbox: %w", err)
	}
	path := filepath.Join(w.dir, fmt.Sprintf("digest-%s-%s.md", model.DateOf(now), shortID(snap.ID)))
	if err := fsutil.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	w.log.Info("digest written", zap.String("file", path), zap.Int("items", len(data.Items)))
	return path, nil
}

func (w *Writer) abstract(ctx context.Context, rec model.Record) string {
	abs := strings.TrimSpace(rec.Abstract)
	if abs == "" {
		return ""
	}
	if w.summarizer != nil && len([]rune(abs)) > condenseOverRune {
		out, err := w.summarizer.Condense(ctx, rec.Title, abs)
		if err != nil {
			w.log.Warn("abstract condense failed", zap.String("key", rec.Identity.Key()), zap.Error(err))
		} else if out != "" {
			return truncate(out, maxAbstractChars)
		}
	}
	return truncate(abs, maxAbstractChars)
}

func metaLine(rec model.Record) string {
	var parts []string
	if rec.Journal != "" {
		parts = append(parts, rec.Journal)
	}
	if len(rec.Authors) > 0 {
		authors := rec.Authors
		if len(authors) > 3 {
			authors = append(append([]string{}, authors[:3]...), "et al.")
		}
		parts = append(parts, strings.Join(authors, ", "))
	}
	if rec.Published != "" {
		parts = append(parts, rec.Published)
	}
	return strings.Join(parts, " | ")
}

func tagLine(tags model.Tags) string {
	var parts []string
	for _, dim := range []string{extract.DimGeography, extract.DimMethods, extract.DimStakeholders} {
		if vals := tags[dim]; len(vals) > 0 {
			parts = append(parts, dim+": "+strings.Join(vals, ", "))
		}
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

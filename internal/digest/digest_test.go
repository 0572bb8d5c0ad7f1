package digest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"journalclub/internal/model"
	"journalclub/internal/store"
)

func testSnapshot(t *testing.T) *store.Snapshot {
	t.Helper()
	snaps, err := store.OpenSnapshots(filepath.Join(t.TempDir(), "snapshots.json"))
	require.NoError(t, err)

	snap, err := snaps.Build([]model.Record{
		{
			Identity:  model.DOI("10.1177/00420980221105620"),
			Title:     "Housing affordability and tenure security for renters in Auckland",
			Journal:   "Urban Studies",
			Authors:   []string{"Mere Kingi", "Alice Wong"},
			Abstract:  "We trace tenure insecurity across rental markets.",
			Published: "2026-05-01",
			Score:     135,
			FirstSeen: "2026-05-01",
			Tags:      model.Tags{"geography": {"Auckland"}, "stakeholders": {"renters"}},
		},
		{
			Identity:  model.URL("https://example.org/papers/methods"),
			Title:     "Spatial methods roundup",
			Score:     40,
			FirstSeen: "2026-05-02",
		},
	}, 5)
	require.NoError(t, err)
	return snap
}

func TestWriteRendersDigest(t *testing.T) {
	outbox := filepath.Join(t.TempDir(), "outbox")
	w := NewWriter(outbox, "", nil, zap.NewNop())
	w.now = func() time.Time { return time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC) }

	path, err := w.Write(context.Background(), testSnapshot(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "digest-2026-05-10-"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, "# Journal digest 2026-05-10")
	assert.Contains(t, body, "1. Housing affordability and tenure security for renters in Auckland")
	assert.Contains(t, body, "Urban Studies | Mere Kingi, Alice Wong | 2026-05-01")
	assert.Contains(t, body, "score 135 | geography: Auckland; stakeholders: renters")
	assert.Contains(t, body, "https://doi.org/10.1177/00420980221105620")
	assert.Contains(t, body, "2. Spatial methods roundup")
	assert.Contains(t, body, "https://example.org/papers/methods")
	assert.Contains(t, body, `"SHOW ALL"`)
	assert.Contains(t, body, "Snapshot ")
	assert.Contains(t, body, "supersedes it")
}

func TestWriteCustomTitle(t *testing.T) {
	outbox := filepath.Join(t.TempDir(), "outbox")
	w := NewWriter(outbox, "Reading list {.CurrentDate}", nil, zap.NewNop())
	w.now = func() time.Time { return time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC) }

	path, err := w.Write(context.Background(), testSnapshot(t))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Reading list 2026-05-10")
}

type fakeSummarizer struct{ calls int }

func (f *fakeSummarizer) Condense(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return "Condensed for display.", nil
}

func TestWriteCondensesLongAbstracts(t *testing.T) {
	snaps, err := store.OpenSnapshots(filepath.Join(t.TempDir(), "snapshots.json"))
	require.NoError(t, err)
	long := strings.Repeat("A very long abstract sentence. ", 40)
	snap, err := snaps.Build([]model.Record{
		{Identity: model.DOI("10.1/long"), Title: "Long", Abstract: long, FirstSeen: "2026-05-01"},
		{Identity: model.DOI("10.1/short"), Title: "Short", Abstract: "Brief.", FirstSeen: "2026-05-01"},
	}, 5)
	require.NoError(t, err)

	sum := &fakeSummarizer{}
	w := NewWriter(filepath.Join(t.TempDir(), "outbox"), "", sum, zap.NewNop())

	path, err := w.Write(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.calls, "only the long abstract is condensed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Condensed for display.")
	assert.Contains(t, string(data), "Brief.")
}

func TestParseFileRoundTrip(t *testing.T) {
	outbox := filepath.Join(t.TempDir(), "outbox")
	w := NewWriter(outbox, "", nil, zap.NewNop())
	w.now = func() time.Time { return time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC) }

	snap := testSnapshot(t)
	path, err := w.Write(context.Background(), snap)
	require.NoError(t, err)

	d, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Journal digest 2026-05-10", d.Title)
	assert.Equal(t, "2026-05-10", d.Date)
	assert.Equal(t, snap.ID, d.SnapshotID)
	assert.Equal(t, 2, d.Items)
	assert.True(t, strings.HasPrefix(d.Body, "# Journal digest"), "frontmatter stripped from body")
	assert.Contains(t, d.Body, "1. Housing affordability")
}

func TestParseFileRejectsNonDigests(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(plain, []byte("# just notes\n"), 0o644))
	_, err := ParseFile(plain)
	assert.ErrorContains(t, err, "no digest frontmatter")

	noID := filepath.Join(dir, "other.md")
	require.NoError(t, os.WriteFile(noID, []byte("---\ntitle: \"x\"\n---\nbody\n"), 0o644))
	_, err = ParseFile(noID)
	assert.ErrorContains(t, err, "no snapshot_id")

	_, err = ParseFile(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("word ", 100)
	out := truncate(long, 50)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.LessOrEqual(t, len(out), 54)
}

func TestExpandVars(t *testing.T) {
	now := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "Digest 2026-05-10", ExpandVars("Digest {.CurrentDate}", now))
	assert.Equal(t, "no vars", ExpandVars("no vars", now))
	assert.Equal(t, "", ExpandVars("", now))
}

package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journalclub/internal/model"
)

func TestJSONLSinkAppendsOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := NewJSONLSink(path)
	sink.now = func() time.Time { return time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC) }

	require.NoError(t, sink.TierTransition(model.TierTransition{
		Identity: model.DOI("10.1/a"),
		Tier:     model.TierFull,
		Record:   model.Record{Identity: model.DOI("10.1/a"), Title: "A", Tier: model.TierFull},
	}))
	require.NoError(t, sink.DigestReady(model.DigestReady{SnapshotID: "snap-1"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var envs []Envelope
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var env Envelope
		require.NoError(t, json.Unmarshal(sc.Bytes(), &env))
		envs = append(envs, env)
	}
	require.NoError(t, sc.Err())

	require.Len(t, envs, 2)
	assert.Equal(t, KindTierTransition, envs[0].Kind)
	require.NotNil(t, envs[0].TierTransition)
	assert.Equal(t, model.TierFull, envs[0].TierTransition.Tier)
	assert.Nil(t, envs[0].DigestReady)
	assert.Equal(t, KindDigestReady, envs[1].Kind)
	require.NotNil(t, envs[1].DigestReady)
	assert.Equal(t, "snap-1", envs[1].DigestReady.SnapshotID)
}

func TestMultiSinkFansOut(t *testing.T) {
	dir := t.TempDir()
	a := NewJSONLSink(filepath.Join(dir, "a.jsonl"))
	b := NewJSONLSink(filepath.Join(dir, "b.jsonl"))
	multi := MultiSink{a, b, Discard{}}

	require.NoError(t, multi.DigestReady(model.DigestReady{SnapshotID: "s"}))

	for _, p := range []string{filepath.Join(dir, "a.jsonl"), filepath.Join(dir, "b.jsonl")} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"digest_ready"`)
	}
}

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"journalclub/internal/config"
	"journalclub/internal/digest"
	"journalclub/internal/events"
	"journalclub/internal/extract"
	"journalclub/internal/model"
	"journalclub/internal/pipeline"
	"journalclub/internal/reply"
)

func newTestServer(t *testing.T) (*Server, *pipeline.Engine) {
	t.Helper()

	cfg := &config.Config{}
	cfg.FillDefaults()
	cfg.Store.Dir = t.TempDir()
	cfg.Digest.OutboxDir = filepath.Join(cfg.Store.Dir, "outbox")
	cfg.Scoring.Boost = map[string]int{"housing": 40, "transit": 15}
	cfg.Scoring.TopN = 3

	x, err := extract.New(extract.Defaults())
	require.NoError(t, err)

	engine := &pipeline.Engine{
		Config:    cfg,
		Extractor: x,
		Writer:    digest.NewWriter(cfg.Digest.OutboxDir, "", nil, zap.NewNop()),
		Sink:      events.Discard{},
		Log:       zap.NewNop(),
	}
	return New(cfg, engine, zap.NewNop()), engine
}

func seedSnapshot(t *testing.T, engine *pipeline.Engine) *pipeline.FetchReport {
	t.Helper()
	report, err := engine.RunFetchArticles(context.Background(), []model.Article{
		{Title: "Housing affordability in Auckland", DOI: "10.1234/a1"},
		{Title: "Transit access and mode choice", DOI: "10.1234/a2"},
	})
	require.NoError(t, err)
	require.NotNil(t, report.Snapshot)
	return &report
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestReplyEndpointAppliesDecisions(t *testing.T) {
	s, engine := newTestServer(t)
	seedSnapshot(t, engine)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/reply", replyRequest{Body: "1F 2S"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out reply.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Applied, 2)
	assert.Empty(t, out.Rejected)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/queue?tier=F", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var q queueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, model.TierFull, q.Tier)
	require.Equal(t, 1, q.Count)
	assert.Equal(t, "doi:10.1234/a1", q.Records[0].Identity.Key())

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats pipeline.StatsReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Store.Total)
	assert.Equal(t, 1, stats.Snapshots)
	require.NotNil(t, stats.Latest)
}

func TestReplyEndpointBeforeAnySnapshot(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/reply", replyRequest{Body: "1F"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out reply.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Applied)
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, reply.ReasonStaleSnapshot, out.Rejected[0].Reason)
}

func TestReplyEndpointValidation(t *testing.T) {
	s, engine := newTestServer(t)
	seedSnapshot(t, engine)

	req := httptest.NewRequest(http.MethodPost, "/api/reply", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/reply", replyRequest{Body: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/reply", replyRequest{Body: "1F", SnapshotID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown snapshot")
}

func TestQueueEndpointValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/queue", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/queue?tier=X", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/queue?tier=F&limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Full tier names work alongside reply letters.
	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/queue?tier=abstract", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var q queueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, model.TierAbstract, q.Tier)
	assert.Equal(t, 0, q.Count)
	assert.NotNil(t, q.Records)
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]model.Tier{
		"F":        model.TierFull,
		"a":        model.TierAbstract,
		"M":        model.TierMethod,
		"s":        model.TierSkip,
		"full":     model.TierFull,
		"Abstract": model.TierAbstract,
	} {
		got, err := parseTier(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "X", "fullish", "read"} {
		_, err := parseTier(in)
		assert.Error(t, err, in)
	}
}

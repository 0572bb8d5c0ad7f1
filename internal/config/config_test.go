package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillDefaults(t *testing.T) {
	var cfg Config
	cfg.FillDefaults()

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "./data", cfg.Store.Dir)
	assert.Equal(t, "feeds.txt", cfg.Feeds.ListFile)
	assert.Equal(t, "30s", cfg.Feeds.Timeout)
	assert.Equal(t, "6h", cfg.Feeds.FetchInterval)
	assert.Equal(t, "file", cfg.Metadata.CacheBackend)
	assert.Equal(t, "720h", cfg.Metadata.CacheTTL)
	assert.Equal(t, "100ms", cfg.Metadata.MinInterval)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Scoring.TopN)
	assert.Equal(t, 1, cfg.Scoring.MinItems)
	assert.Equal(t, "./outbox", cfg.Digest.OutboxDir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "30s", cfg.Server.RequestTimeout)

	require.NoError(t, cfg.Validate())
}

func TestFillDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		App:     AppConfig{LogLevel: "debug"},
		Store:   StoreConfig{Dir: "/var/lib/journalclub"},
		Scoring: ScoringConfig{TopN: 10},
	}
	cfg.FillDefaults()

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "/var/lib/journalclub", cfg.Store.Dir)
	assert.Equal(t, 10, cfg.Scoring.TopN)
}

func TestValidateRejections(t *testing.T) {
	base := func() Config {
		var cfg Config
		cfg.FillDefaults()
		return cfg
	}

	cfg := base()
	cfg.Scoring.TopN = -3
	assert.ErrorContains(t, cfg.Validate(), "scoring.top_n")

	cfg = base()
	cfg.Scoring.Boost = map[string]int{"housing": 40, "transit": 0}
	assert.ErrorContains(t, cfg.Validate(), "scoring.boost")

	cfg = base()
	cfg.Metadata.CacheBackend = "memcached"
	assert.ErrorContains(t, cfg.Validate(), "cache_backend")

	cfg = base()
	cfg.Feeds.Timeout = "soon"
	assert.ErrorContains(t, cfg.Validate(), "invalid duration")

	cfg = base()
	cfg.Store.Dir = ""
	assert.ErrorContains(t, cfg.Validate(), "store.dir")
}

func TestDurationAccessors(t *testing.T) {
	var cfg Config
	cfg.FillDefaults()

	assert.Equal(t, 30*time.Second, cfg.FeedTimeout())
	assert.Equal(t, 6*time.Hour, cfg.FetchInterval())
	assert.Equal(t, 720*time.Hour, cfg.MetaCacheTTL())
	assert.Equal(t, 100*time.Millisecond, cfg.MetaMinInterval())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestDataPaths(t *testing.T) {
	cfg := Config{Store: StoreConfig{Dir: "/srv/jc"}}

	assert.Equal(t, filepath.Join("/srv/jc", "seen.json"), cfg.SeenPath())
	assert.Equal(t, filepath.Join("/srv/jc", "snapshots.json"), cfg.SnapshotsPath())
	assert.Equal(t, filepath.Join("/srv/jc", "engine.lock"), cfg.LockPath())
	assert.Equal(t, filepath.Join("/srv/jc", "events.jsonl"), cfg.EventsPath())
	assert.Equal(t, filepath.Join("/srv/jc", "metadata-cache.json"), cfg.MetaCachePath())

	cfg.Metadata.CacheFile = "/tmp/cache.json"
	assert.Equal(t, "/tmp/cache.json", cfg.MetaCachePath())
}

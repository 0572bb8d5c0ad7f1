package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	PrettyLog bool   `mapstructure:"pretty_log"`
}

// StoreConfig locates the engine's data directory. The seen store,
// snapshot history, advisory lock, and events log all live inside it.
type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// FeedsConfig controls the RSS source.
type FeedsConfig struct {
	ListFile      string `mapstructure:"list_file"`
	Timeout       string `mapstructure:"timeout"`        // per-feed, duration string, e.g. "30s"
	FetchInterval string `mapstructure:"fetch_interval"` // serve mode, e.g. "6h"
}

// MetadataConfig controls Crossref/OpenAlex enrichment.
type MetadataConfig struct {
	Disabled        bool   `mapstructure:"disabled"`
	Mailto          string `mapstructure:"mailto"`
	CacheBackend    string `mapstructure:"cache_backend"` // file or redis
	CacheFile       string `mapstructure:"cache_file"`
	CacheTTL        string `mapstructure:"cache_ttl"`
	MinInterval     string `mapstructure:"min_interval"`
	CrossrefBaseURL string `mapstructure:"crossref_base_url"`
	OpenAlexBaseURL string `mapstructure:"openalex_base_url"`
}

// RedisConfig holds redis connection settings for the shared metadata
// cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScoringConfig holds the boost keywords and digest sizing.
type ScoringConfig struct {
	Boost    map[string]int `mapstructure:"boost"`
	TopN     int            `mapstructure:"top_n"`
	MinItems int            `mapstructure:"min_items"`
}

// ExtractConfig points at an optional dictionaries override file.
type ExtractConfig struct {
	DictionariesFile string `mapstructure:"dictionaries_file"`
}

// DigestConfig controls outbox rendering.
type DigestConfig struct {
	OutboxDir string `mapstructure:"outbox_dir"`
	Title     string `mapstructure:"title"`
}

// OpenAIConfig enables the optional abstract summarizer.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// ServerConfig holds the serve-mode HTTP settings.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	RequestTimeout string `mapstructure:"request_timeout"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Store    StoreConfig    `mapstructure:"store"`
	Feeds    FeedsConfig    `mapstructure:"feeds"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Digest   DigestConfig   `mapstructure:"digest"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Server   ServerConfig   `mapstructure:"server"`
}

// FillDefaults applies default values if not provided. Secrets fall back
// to the environment (.env is loaded at startup) so they stay out of the
// config file.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "./data"
	}
	if c.Feeds.ListFile == "" {
		c.Feeds.ListFile = "feeds.txt"
	}
	if c.Feeds.Timeout == "" {
		c.Feeds.Timeout = "30s"
	}
	if c.Feeds.FetchInterval == "" {
		c.Feeds.FetchInterval = "6h"
	}
	if c.Metadata.CacheBackend == "" {
		c.Metadata.CacheBackend = "file"
	}
	if c.Metadata.CacheTTL == "" {
		c.Metadata.CacheTTL = "720h" // 30 days
	}
	if c.Metadata.MinInterval == "" {
		c.Metadata.MinInterval = "100ms"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Redis.Password == "" {
		c.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
	if c.Scoring.TopN == 0 {
		c.Scoring.TopN = 5
	}
	if c.Scoring.MinItems == 0 {
		c.Scoring.MinItems = 1
	}
	if c.Digest.OutboxDir == "" {
		c.Digest.OutboxDir = "./outbox"
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RequestTimeout == "" {
		c.Server.RequestTimeout = "30s"
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Store.Dir == "" {
		return fmt.Errorf("store.dir must not be empty")
	}
	if c.Digest.OutboxDir == "" {
		return fmt.Errorf("digest.outbox_dir must not be empty")
	}
	if c.Feeds.ListFile == "" {
		return fmt.Errorf("feeds.list_file must not be empty")
	}
	if c.Scoring.TopN < 1 {
		return fmt.Errorf("scoring.top_n must be at least 1, got %d", c.Scoring.TopN)
	}
	if c.Scoring.MinItems < 1 {
		return fmt.Errorf("scoring.min_items must be at least 1, got %d", c.Scoring.MinItems)
	}
	for kw, weight := range c.Scoring.Boost {
		if weight <= 0 {
			return fmt.Errorf("scoring.boost[%q] must be positive, got %d", kw, weight)
		}
	}
	switch c.Metadata.CacheBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("metadata.cache_backend must be file or redis, got %q", c.Metadata.CacheBackend)
	}
	for name, d := range map[string]string{
		"feeds.timeout":          c.Feeds.Timeout,
		"feeds.fetch_interval":   c.Feeds.FetchInterval,
		"metadata.cache_ttl":     c.Metadata.CacheTTL,
		"metadata.min_interval":  c.Metadata.MinInterval,
		"server.request_timeout": c.Server.RequestTimeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s: invalid duration %q", name, d)
		}
	}
	return nil
}

// Duration accessors return the parsed config durations. Validate has
// already checked them; a zero duration is returned for anything broken.

func (c *Config) FeedTimeout() time.Duration     { return parseDuration(c.Feeds.Timeout) }
func (c *Config) FetchInterval() time.Duration   { return parseDuration(c.Feeds.FetchInterval) }
func (c *Config) MetaCacheTTL() time.Duration    { return parseDuration(c.Metadata.CacheTTL) }
func (c *Config) MetaMinInterval() time.Duration { return parseDuration(c.Metadata.MinInterval) }
func (c *Config) RequestTimeout() time.Duration  { return parseDuration(c.Server.RequestTimeout) }

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Data file locations inside the store directory.

func (c *Config) SeenPath() string      { return filepath.Join(c.Store.Dir, "seen.json") }
func (c *Config) SnapshotsPath() string { return filepath.Join(c.Store.Dir, "snapshots.json") }
func (c *Config) LockPath() string      { return filepath.Join(c.Store.Dir, "engine.lock") }
func (c *Config) EventsPath() string    { return filepath.Join(c.Store.Dir, "events.jsonl") }

// MetaCachePath is the file-cache location; explicit config wins.
func (c *Config) MetaCachePath() string {
	if c.Metadata.CacheFile != "" {
		return c.Metadata.CacheFile
	}
	return filepath.Join(c.Store.Dir, "metadata-cache.json")
}

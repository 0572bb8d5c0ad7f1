package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"journalclub/internal/fsutil"
)

// Meta is the bibliographic detail fetched for a DOI.
type Meta struct {
	Title     string   `json:"title,omitempty"`
	Journal   string   `json:"journal,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	Abstract  string   `json:"abstract,omitempty"`
	Published string   `json:"published,omitempty"`
}

// Cache stores fetched metadata per DOI with a TTL, so repeated daily
// passes do not hammer the upstream APIs for articles that linger in the
// candidate pool.
type Cache interface {
	Get(ctx context.Context, doi string) (Meta, bool, error)
	Put(ctx context.Context, doi string, m Meta) error
}

// NopCache caches nothing.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (Meta, bool, error) { return Meta{}, false, nil }
func (NopCache) Put(context.Context, string, Meta) error         { return nil }

type fileCacheEntry struct {
	Meta     Meta      `json:"meta"`
	CachedAt time.Time `json:"cached_at"`
}

type fileCacheFile struct {
	Entries map[string]fileCacheEntry `json:"entries"`
}

// FileCache is the default JSON-file cache backend. A cache is disposable:
// an unreadable file starts empty instead of failing the pass.
type FileCache struct {
	mu      sync.Mutex
	path    string
	ttl     time.Duration
	entries map[string]fileCacheEntry
	now     func() time.Time
}

func OpenFileCache(path string, ttl time.Duration) *FileCache {
	c := &FileCache{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]fileCacheEntry),
		now:     time.Now,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var file fileCacheFile
	if json.Unmarshal(data, &file) == nil && file.Entries != nil {
		c.entries = file.Entries
	}
	return c
}

func (c *FileCache) Get(_ context.Context, doi string) (Meta, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[doi]
	if !ok {
		return Meta{}, false, nil
	}
	if c.now().Sub(e.CachedAt) > c.ttl {
		delete(c.entries, doi)
		return Meta{}, false, nil
	}
	return e.Meta, true, nil
}

func (c *FileCache) Put(_ context.Context, doi string, m Meta) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[doi] = fileCacheEntry{Meta: m, CachedAt: c.now()}
	data, err := json.MarshalIndent(fileCacheFile{Entries: c.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata cache: %w", err)
	}
	return fsutil.WriteFileAtomic(c.path, data, 0o644)
}

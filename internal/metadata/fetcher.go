// Package metadata backfills bibliographic detail for DOI-bearing articles
// from Crossref, falling back to OpenAlex, behind a TTL cache. Enrichment
// is best effort: an article the APIs cannot improve goes through the rest
// of the pass with whatever its feed provided.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"journalclub/internal/model"
)

// EnricherConfig holds the upstream endpoints and politeness settings.
type EnricherConfig struct {
	CrossrefBaseURL string
	OpenAlexBaseURL string
	Mailto          string
	MinInterval     time.Duration
	Timeout         time.Duration
}

// DefaultEnricherConfig returns the production endpoints with the request
// spacing both providers ask polite clients to keep.
func DefaultEnricherConfig() EnricherConfig {
	return EnricherConfig{
		CrossrefBaseURL: "https://api.crossref.org",
		OpenAlexBaseURL: "https://api.openalex.org",
		MinInterval:     100 * time.Millisecond,
		Timeout:         15 * time.Second,
	}
}

// Enricher fetches and caches per-DOI metadata.
type Enricher struct {
	cfg   EnricherConfig
	http  *http.Client
	cache Cache
	log   *zap.Logger

	mu   sync.Mutex
	last time.Time
}

func NewEnricher(cfg EnricherConfig, cache Cache, log *zap.Logger) *Enricher {
	def := DefaultEnricherConfig()
	if cfg.CrossrefBaseURL == "" {
		cfg.CrossrefBaseURL = def.CrossrefBaseURL
	}
	if cfg.OpenAlexBaseURL == "" {
		cfg.OpenAlexBaseURL = def.OpenAlexBaseURL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &Enricher{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		cache: cache,
		log:   log,
	}
}

// Enrich fills the article's missing journal, keywords, authors, abstract,
// and published date. Feed-supplied values are kept; only gaps are filled.
// The summary that comes out is the article's display abstract: fetched
// when possible, the gated feed summary otherwise, empty when neither
// qualifies.
func (e *Enricher) Enrich(ctx context.Context, a model.Article) model.Article {
	if a.DOI == "" {
		a.Summary = FallbackSummary(a.Summary)
		return a
	}
	m, err := e.Fetch(ctx, a.DOI)
	if err != nil {
		e.log.Warn("metadata fetch failed", zap.String("doi", a.DOI), zap.Error(err))
		a.Summary = FallbackSummary(a.Summary)
		return a
	}
	return merge(a, m)
}

func merge(a model.Article, m Meta) model.Article {
	if a.Journal == "" {
		a.Journal = m.Journal
	}
	if len(a.Keywords) == 0 {
		a.Keywords = m.Keywords
	}
	if len(a.Authors) == 0 {
		a.Authors = m.Authors
	}
	if a.Published == "" {
		a.Published = m.Published
	}
	if m.Abstract != "" {
		a.Summary = m.Abstract
	} else if fb := FallbackSummary(a.Summary); fb != "" {
		a.Summary = fb
	}
	return a
}

// Fetch returns metadata for a DOI, from cache when fresh. Crossref is
// asked first; OpenAlex fills in when Crossref fails or returns no
// abstract.
func (e *Enricher) Fetch(ctx context.Context, doi string) (Meta, error) {
	if m, ok, err := e.cache.Get(ctx, doi); err != nil {
		e.log.Warn("metadata cache read failed", zap.String("doi", doi), zap.Error(err))
	} else if ok {
		return m, nil
	}

	m, crossrefErr := e.crossref(ctx, doi)
	if crossrefErr != nil || m.Abstract == "" {
		if oa, err := e.openAlex(ctx, doi); err == nil {
			m = fill(m, oa)
			crossrefErr = nil
		} else if crossrefErr != nil {
			return Meta{}, fmt.Errorf("crossref: %w; openalex: %v", crossrefErr, err)
		}
	}

	if err := e.cache.Put(ctx, doi, m); err != nil {
		e.log.Warn("metadata cache write failed", zap.String("doi", doi), zap.Error(err))
	}
	return m, nil
}

// fill keeps a's fields and takes b's where a is empty.
func fill(a, b Meta) Meta {
	if a.Title == "" {
		a.Title = b.Title
	}
	if a.Journal == "" {
		a.Journal = b.Journal
	}
	if len(a.Keywords) == 0 {
		a.Keywords = b.Keywords
	}
	if len(a.Authors) == 0 {
		a.Authors = b.Authors
	}
	if a.Abstract == "" {
		a.Abstract = b.Abstract
	}
	if a.Published == "" {
		a.Published = b.Published
	}
	return a
}

type crossrefResponse struct {
	Message struct {
		Title          []string `json:"title"`
		ContainerTitle []string `json:"container-title"`
		Subject        []string `json:"subject"`
		Abstract       string   `json:"abstract"`
		Author         []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		Published struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"published"`
	} `json:"message"`
}

func (e *Enricher) crossref(ctx context.Context, doi string) (Meta, error) {
	var res crossrefResponse
	if err := e.getJSON(ctx, e.cfg.CrossrefBaseURL+"/works/"+url.PathEscape(doi), &res); err != nil {
		return Meta{}, err
	}

	msg := res.Message
	m := Meta{
		Abstract: CleanAbstract(msg.Abstract),
		Keywords: msg.Subject,
	}
	if len(msg.Title) > 0 {
		m.Title = strings.TrimSpace(msg.Title[0])
	}
	if len(msg.ContainerTitle) > 0 {
		m.Journal = strings.TrimSpace(msg.ContainerTitle[0])
	}
	for _, a := range msg.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name != "" {
			m.Authors = append(m.Authors, name)
		}
	}
	if len(msg.Published.DateParts) > 0 {
		m.Published = dateFromParts(msg.Published.DateParts[0])
	}
	return m, nil
}

func dateFromParts(parts []int) string {
	if len(parts) == 0 || parts[0] == 0 {
		return ""
	}
	y, mo, d := parts[0], 1, 1
	if len(parts) > 1 {
		mo = parts[1]
	}
	if len(parts) > 2 {
		d = parts[2]
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d)
}

type openAlexResponse struct {
	Title           string `json:"title"`
	PublicationDate string `json:"publication_date"`
	Authorships     []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	Keywords []struct {
		DisplayName string `json:"display_name"`
	} `json:"keywords"`
	PrimaryLocation struct {
		Source struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

// reassembleAbstract rebuilds plain text from OpenAlex's inverted index,
// which maps each word to the positions it occupies.
func reassembleAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	max := -1
	for _, positions := range index {
		for _, p := range positions {
			if p > max {
				max = p
			}
		}
	}
	words := make([]string, max+1)
	for w, positions := range index {
		for _, p := range positions {
			if p >= 0 && p <= max {
				words[p] = w
			}
		}
	}
	var kept []string
	for _, w := range words {
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func (e *Enricher) openAlex(ctx context.Context, doi string) (Meta, error) {
	var res openAlexResponse
	if err := e.getJSON(ctx, e.cfg.OpenAlexBaseURL+"/works/https://doi.org/"+doi, &res); err != nil {
		return Meta{}, err
	}

	m := Meta{
		Title:     strings.TrimSpace(res.Title),
		Journal:   strings.TrimSpace(res.PrimaryLocation.Source.DisplayName),
		Published: res.PublicationDate,
		Abstract:  CleanAbstract(reassembleAbstract(res.AbstractInvertedIndex)),
	}
	for _, k := range res.Keywords {
		if k.DisplayName != "" {
			m.Keywords = append(m.Keywords, k.DisplayName)
		}
	}
	for _, a := range res.Authorships {
		if a.Author.DisplayName != "" {
			m.Authors = append(m.Authors, a.Author.DisplayName)
		}
	}
	return m, nil
}

func (e *Enricher) getJSON(ctx context.Context, rawURL string, out any) error {
	e.pace()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	ua := "journalclub/1.0"
	if e.cfg.Mailto != "" {
		ua = fmt.Sprintf("journalclub/1.0 (mailto:%s)", e.cfg.Mailto)
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// pace keeps the configured minimum spacing between upstream requests.
func (e *Enricher) pace() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if wait := e.cfg.MinInterval - time.Since(e.last); wait > 0 {
		time.Sleep(wait)
	}
	e.last = time.Now()
}

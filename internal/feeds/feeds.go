// Package feeds pulls article metadata from journal RSS/Atom feeds. Feed
// aggregators decorate titles and bury DOIs in namespaced fields, so items
// are cleaned up on the way in. One broken feed never fails a pass; it is
// logged and skipped.
package feeds

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"journalclub/internal/identity"
	"journalclub/internal/model"
)

// LoadList reads a feed-list file: one URL per line, blank lines skipped,
// `#` starts a comment (full line or trailing).
func LoadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed list: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read feed list: %w", err)
	}
	return urls, nil
}

// Fetcher downloads and normalizes feeds.
type Fetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
	log     *zap.Logger
}

func NewFetcher(timeout time.Duration, log *zap.Logger) *Fetcher {
	p := gofeed.NewParser()
	p.UserAgent = "journalclub/1.0"
	return &Fetcher{parser: p, timeout: timeout, log: log}
}

// FetchAll fetches every feed and returns the combined items. Per-feed
// failures are logged and skipped.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []model.Article {
	var out []model.Article
	for _, u := range urls {
		items, err := f.Fetch(ctx, u)
		if err != nil {
			f.log.Warn("feed fetch failed", zap.String("feed", u), zap.Error(err))
			continue
		}
		f.log.Info("feed fetched", zap.String("feed", u), zap.Int("items", len(items)))
		out = append(out, items...)
	}
	return out
}

// Fetch downloads one feed under the per-feed timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]model.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	journal := CleanJournalTitle(feed.Title)
	var out []model.Article
	for _, item := range feed.Items {
		a, ok := itemToArticle(journal, item)
		if !ok {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func itemToArticle(journal string, item *gofeed.Item) (model.Article, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return model.Article{}, false
	}

	a := model.Article{
		Title:    title,
		URL:      link,
		Journal:  journal,
		Keywords: item.Categories,
		Summary:  strings.TrimSpace(item.Description),
		DOI:      itemDOI(item),
	}
	if a.Summary == "" {
		a.Summary = strings.TrimSpace(item.Content)
	}
	if item.PublishedParsed != nil {
		a.Published = model.DateOf(*item.PublishedParsed)
	}
	return a, true
}

// itemDOI prefers the prism:doi extension field, then falls back to pattern
// extraction from the link and GUID.
func itemDOI(item *gofeed.Item) string {
	for _, e := range item.Extensions["prism"]["doi"] {
		if doi := identity.NormalizeDOI(e.Value); doi != "" {
			return doi
		}
	}
	return identity.ExtractDOI(item.Link, item.GUID)
}

var (
	journalPrefixes = regexp.MustCompile(`(?i)^(tandf:|sage publications ltd:|sage publications:|sciencedirect publication:)\s*`)
	journalSuffixes = regexp.MustCompile(`(?i):\s*(table of contents|toc)$`)
)

// CleanJournalTitle strips aggregator noise from a feed title.
func CleanJournalTitle(s string) string {
	s = strings.TrimSpace(s)
	s = journalPrefixes.ReplaceAllString(s, "")
	s = journalSuffixes.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

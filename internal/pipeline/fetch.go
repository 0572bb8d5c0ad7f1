package pipeline

import (
	"context"

	"go.uber.org/zap"

	"journalclub/internal/feeds"
	"journalclub/internal/identity"
	"journalclub/internal/metadata"
	"journalclub/internal/model"
	"journalclub/internal/score"
	"journalclub/internal/store"
)

// FetchReport tallies one fetch pass.
type FetchReport struct {
	Fetched    int             `json:"fetched"`    // items delivered by the feeds
	Merged     int             `json:"merged"`     // in-batch duplicates collapsed
	Known      int             `json:"known"`      // already decided, filtered out
	Upgraded   int             `json:"upgraded"`   // identity forms learned on known records
	Candidates int             `json:"candidates"` // new undecided articles this pass
	Scores     score.Stats     `json:"scores"`
	Snapshot   *store.Snapshot `json:"snapshot,omitempty"`
	DigestPath string          `json:"digest_path,omitempty"`
}

// RunFetch runs a full fetch pass from the configured feed list.
func (e *Engine) RunFetch(ctx context.Context) (FetchReport, error) {
	urls, err := feeds.LoadList(e.Config.Feeds.ListFile)
	if err != nil {
		return FetchReport{}, err
	}
	arts := e.Fetcher.FetchAll(ctx, urls)
	return e.RunFetchArticles(ctx, arts)
}

// RunFetchArticles runs a fetch pass over an already-collected batch, the
// path used by `fetch --input` and by tests.
func (e *Engine) RunFetchArticles(ctx context.Context, arts []model.Article) (FetchReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, st, snaps, err := e.lockedSession()
	if err != nil {
		return FetchReport{}, err
	}
	defer lock.Release()

	return e.runFetch(ctx, st, snaps, arts)
}

func (e *Engine) runFetch(ctx context.Context, st *store.Store, snaps *store.Snapshots, arts []model.Article) (FetchReport, error) {
	report := FetchReport{Fetched: len(arts)}

	cands, merged := mergeBatch(arts)
	report.Merged = merged

	fresh := make([]*candidate, 0, len(cands))
	for _, c := range cands {
		rec, ok := st.LookupAny(c.identities()...)
		if !ok {
			fresh = append(fresh, c)
			continue
		}
		report.Known++
		for _, id := range c.identities() {
			if id == rec.Identity || id == rec.Secondary {
				continue
			}
			if _, err := st.RecordSeenWithUpgrade(rec.Identity, id); err != nil {
				e.Log.Warn("identity upgrade failed",
					zap.String("record", rec.Identity.Key()),
					zap.String("learned", id.Key()),
					zap.Error(err))
				continue
			}
			report.Upgraded++
		}
	}

	records := make([]model.Record, 0, len(fresh))
	for _, c := range fresh {
		records = append(records, e.buildCandidate(ctx, snaps, c))
	}
	report.Candidates = len(records)
	report.Scores = score.RankStats(records)

	e.Log.Info("fetch pass collected",
		zap.Int("fetched", report.Fetched),
		zap.Int("merged", report.Merged),
		zap.Int("known", report.Known),
		zap.Int("upgraded", report.Upgraded),
		zap.Int("candidates", report.Candidates))

	if len(records) < e.Config.Scoring.MinItems {
		e.Log.Info("not enough new candidates, no digest this pass",
			zap.Int("candidates", len(records)),
			zap.Int("min_items", e.Config.Scoring.MinItems))
		return report, nil
	}

	ranked := score.Rank(records)
	snap, err := snaps.Build(ranked, e.Config.Scoring.TopN)
	if err != nil {
		return report, err
	}
	report.Snapshot = snap

	path, err := e.Writer.Write(ctx, snap)
	if err != nil {
		return report, err
	}
	report.DigestPath = path

	picked := make([]model.Record, 0, len(snap.Entries))
	for _, entry := range snap.Entries {
		picked = append(picked, entry.Candidate)
	}
	if err := e.Sink.DigestReady(model.DigestReady{
		SnapshotID: snap.ID,
		CreatedAt:  snap.CreatedAt,
		OutboxFile: path,
		Ranked:     picked,
	}); err != nil {
		e.Log.Warn("digest event emit failed", zap.String("snapshot", snap.ID), zap.Error(err))
	}
	return report, nil
}

// buildCandidate enriches, tags, and scores one fresh article. The
// first-seen date comes from the earliest snapshot that already carried
// the article, so a candidate that keeps reappearing does not lose its
// seniority to newer arrivals.
func (e *Engine) buildCandidate(ctx context.Context, snaps *store.Snapshots, c *candidate) model.Record {
	a := c.art
	if e.Enricher != nil {
		a = e.Enricher.Enrich(ctx, a)
	} else {
		a.Summary = metadata.FallbackSummary(a.Summary)
	}

	firstSeen := ""
	for _, id := range c.identities() {
		if d, ok := snaps.EarliestAppearance(id.Key()); ok {
			firstSeen = d
			break
		}
	}
	if firstSeen == "" {
		firstSeen = model.DateOf(e.clock())
	}

	return model.Record{
		Identity:  c.id,
		Secondary: c.secondary,
		Title:     a.Title,
		Journal:   a.Journal,
		Keywords:  a.Keywords,
		Authors:   a.Authors,
		Abstract:  a.Summary,
		Published: a.Published,
		Score:     score.Score(a.Title, a.Keywords, a.Summary, e.Config.Scoring.Boost),
		Tags:      e.Extractor.ExtractArticle(a),
		FirstSeen: firstSeen,
	}
}

// candidate is one logical article in a fetch batch, keyed by up to two
// identity forms.
type candidate struct {
	id        model.Identity
	secondary model.Identity
	art       model.Article
}

func (c *candidate) identities() []model.Identity {
	ids := []model.Identity{c.id}
	if !c.secondary.IsZero() {
		ids = append(ids, c.secondary)
	}
	return ids
}

// mergeBatch collapses a raw batch into distinct logical articles. The
// first occurrence wins for every field; later occurrences fill gaps and
// contribute identity forms, so an article that one feed carries by URL
// and another by DOI comes out as a single DOI-primary candidate. Items
// with no usable identity are dropped.
func mergeBatch(arts []model.Article) ([]*candidate, int) {
	var (
		cands  []*candidate
		merged int
		index  = make(map[string]*candidate)
	)
	for _, a := range arts {
		a.DOI = identity.NormalizeDOI(a.DOI)
		var ids []model.Identity
		if a.DOI != "" {
			ids = append(ids, model.DOI(a.DOI))
		}
		if u := identity.NormalizeURL(a.URL); u != "" {
			ids = append(ids, model.URL(u))
		}
		if len(ids) == 0 {
			continue
		}

		var c *candidate
		for _, id := range ids {
			if hit, ok := index[id.Key()]; ok {
				c = hit
				break
			}
		}
		if c == nil {
			c = &candidate{id: ids[0], art: a}
			if len(ids) > 1 {
				c.secondary = ids[1]
			}
			cands = append(cands, c)
		} else {
			merged++
			c.art = fillArticle(c.art, a)
			for _, id := range ids {
				if id == c.id || id == c.secondary {
					continue
				}
				if id.Kind == model.KindDOI && c.id.Kind == model.KindURL {
					c.secondary = c.id
					c.id = id
				} else if c.secondary.IsZero() {
					c.secondary = id
				}
			}
		}
		for _, id := range c.identities() {
			index[id.Key()] = c
		}
	}
	return cands, merged
}

// fillArticle keeps a's fields and takes b's where a is empty.
func fillArticle(a, b model.Article) model.Article {
	if a.Title == "" {
		a.Title = b.Title
	}
	if a.DOI == "" {
		a.DOI = b.DOI
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
	if a.Summary == "" {
		a.Summary = b.Summary
	}
	if a.Published == "" {
		a.Published = b.Published
	}
	return a
}

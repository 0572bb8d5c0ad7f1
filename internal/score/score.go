// Package score implements the deterministic keyword relevance scorer and
// the ranking order used to select digest candidates. No learned state, no
// recency bias: the same inputs always produce the same ranking.
package score

import (
	"sort"
	"strings"
	"unicode"

	"journalclub/internal/model"
)

// Score sums the weights of boost keywords that match the article's title,
// keyword list, or abstract. Matching folds case and punctuation, treats
// hyphens and spaces as interchangeable, and matches a keyword when any of
// its words appears as a whole word in the text, tolerating simple plural
// forms (survey/surveys, policy/policies). Each keyword contributes its
// weight at most once. Missing fields degrade to title-only scoring.
func Score(title string, keywords []string, abstract string, boost map[string]int) int {
	if len(boost) == 0 {
		return 0
	}
	words := tokenSet(title + " " + strings.Join(keywords, " ") + " " + abstract)
	total := 0
	for kw, weight := range boost {
		if matches(words, kw) {
			total += weight
		}
	}
	return total
}

// ScoreRecord scores an already-built candidate record.
func ScoreRecord(r model.Record, boost map[string]int) int {
	return Score(r.Title, r.Keywords, r.Abstract, boost)
}

// Rank orders candidates by descending score, breaking ties by ascending
// first-seen date and then identity key. The order is total, so ranking is
// reproducible across runs.
func Rank(candidates []model.Record) []model.Record {
	out := make([]model.Record, len(candidates))
	copy(out, candidates)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.FirstSeen != b.FirstSeen {
			return a.FirstSeen < b.FirstSeen
		}
		return a.Identity.Key() < b.Identity.Key()
	})
	return out
}

// Stats summarizes a scored batch for pass logs.
type Stats struct {
	Count  int     `json:"count"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median int     `json:"median"`
	Zero   int     `json:"zero"`
}

// RankStats computes score statistics over a scored batch.
func RankStats(candidates []model.Record) Stats {
	if len(candidates) == 0 {
		return Stats{}
	}
	scores := make([]int, len(candidates))
	sum := 0
	zero := 0
	for i, c := range candidates {
		scores[i] = c.Score
		sum += c.Score
		if c.Score == 0 {
			zero++
		}
	}
	sort.Ints(scores)
	return Stats{
		Count:  len(scores),
		Min:    scores[0],
		Max:    scores[len(scores)-1],
		Mean:   float64(sum) / float64(len(scores)),
		Median: scores[len(scores)/2],
		Zero:   zero,
	}
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalize(s)) {
		set[w] = struct{}{}
	}
	return set
}

// normalize lowercases and folds hyphens, underscores, and punctuation to
// spaces, keeping letters and digits (including accented letters, so
// macron-bearing place names survive).
func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func matches(words map[string]struct{}, keyword string) bool {
	for _, w := range strings.Fields(normalize(keyword)) {
		if hasVariant(words, w) {
			return true
		}
	}
	return false
}

func hasVariant(words map[string]struct{}, w string) bool {
	if _, ok := words[w]; ok {
		return true
	}
	if _, ok := words[w+"s"]; ok {
		return true
	}
	if _, ok := words[w+"es"]; ok {
		return true
	}
	if strings.HasSuffix(w, "y") {
		if _, ok := words[strings.TrimSuffix(w, "y")+"ies"]; ok {
			return true
		}
	}
	return false
}

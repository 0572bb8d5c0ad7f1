// Package extract tags articles with canonical geography, method, and
// stakeholder terms from alias dictionaries. Tags enrich digest entries and
// queue listings; they play no part in scoring.
package extract

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"journalclub/internal/model"
)

// Dimension names used as tag keys.
const (
	DimGeography    = "geography"
	DimMethods      = "methods"
	DimStakeholders = "stakeholders"
)

// LoadFile reads a dictionaries override file. A dimension present in the
// file replaces the built-in one; a dimension absent from the file keeps
// the defaults.
func LoadFile(path string) (Dictionaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionaries{}, fmt.Errorf("read dictionaries: %w", err)
	}
	var file Dictionaries
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Dictionaries{}, fmt.Errorf("parse dictionaries %s: %w", path, err)
	}

	d := Defaults()
	if file.Geography != nil {
		d.Geography = file.Geography
	}
	if file.Methods != nil {
		d.Methods = file.Methods
	}
	if file.Stakeholders != nil {
		d.Stakeholders = file.Stakeholders
	}
	if err := validate(d); err != nil {
		return Dictionaries{}, fmt.Errorf("dictionaries %s: %w", path, err)
	}
	return d, nil
}

func validate(d Dictionaries) error {
	for dim, entries := range map[string]map[string][]string{
		DimGeography:    d.Geography,
		DimMethods:      d.Methods,
		DimStakeholders: d.Stakeholders,
	} {
		for canonical, aliases := range entries {
			if strings.TrimSpace(canonical) == "" {
				return fmt.Errorf("%s has an empty canonical term", dim)
			}
			if len(aliases) == 0 {
				return fmt.Errorf("%s term %q has no aliases", dim, canonical)
			}
			for _, a := range aliases {
				if normalize(a) == "" {
					return fmt.Errorf("%s term %q has an empty alias", dim, canonical)
				}
			}
		}
	}
	return nil
}

type pattern struct {
	canonical string
	re        *regexp.Regexp
}

type dimension struct {
	name     string
	patterns []pattern
}

// Extractor matches alias dictionaries against article text.
type Extractor struct {
	dims []dimension
}

// New compiles the dictionaries into an extractor.
func New(d Dictionaries) (*Extractor, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	e := &Extractor{}
	for _, dim := range []struct {
		name    string
		entries map[string][]string
	}{
		{DimGeography, d.Geography},
		{DimMethods, d.Methods},
		{DimStakeholders, d.Stakeholders},
	} {
		compiled := dimension{name: dim.name}
		for canonical, aliases := range dim.entries {
			parts := make([]string, 0, len(aliases))
			for _, a := range aliases {
				parts = append(parts, regexp.QuoteMeta(normalize(a)))
			}
			sort.Strings(parts)
			re, err := regexp.Compile(`\b(?:` + strings.Join(parts, "|") + `)(?:s|es|ies)?\b`)
			if err != nil {
				return nil, fmt.Errorf("compile %s term %q: %w", dim.name, canonical, err)
			}
			compiled.patterns = append(compiled.patterns, pattern{canonical: canonical, re: re})
		}
		sort.Slice(compiled.patterns, func(i, j int) bool {
			return compiled.patterns[i].canonical < compiled.patterns[j].canonical
		})
		e.dims = append(e.dims, compiled)
	}
	return e, nil
}

// Extract tags the article per dimension. Fields are consulted in order of
// trust: tags found in the title win; otherwise the keyword list; otherwise
// the abstract. Dimensions with no match are absent from the result.
func (e *Extractor) Extract(title string, keywords []string, abstract string) model.Tags {
	fields := []string{
		normalize(title),
		normalize(strings.Join(keywords, " ")),
		normalize(abstract),
	}
	tags := make(model.Tags)
	for _, dim := range e.dims {
		for _, text := range fields {
			if text == "" {
				continue
			}
			found := dim.match(text)
			if len(found) > 0 {
				tags[dim.name] = found
				break
			}
		}
	}
	return tags
}

// ExtractArticle tags an inbound article.
func (e *Extractor) ExtractArticle(a model.Article) model.Tags {
	return e.Extract(a.Title, a.Keywords, a.Summary)
}

func (d dimension) match(text string) []string {
	var out []string
	for _, p := range d.patterns {
		if p.re.MatchString(text) {
			out = append(out, p.canonical)
		}
	}
	return out
}

var macronFold = strings.NewReplacer(
	"ā", "a", "ē", "e", "ī", "i", "ō", "o", "ū", "u",
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
)

// normalize lowercases, folds macrons and smart quotes, treats hyphens and
// underscores as spaces, drops remaining punctuation, and collapses
// whitespace, so alias phrases match regardless of typography.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = macronFold.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

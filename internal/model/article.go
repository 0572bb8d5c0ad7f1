package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day-granularity format used for persisted dates.
const DateLayout = "2006-01-02"

// DateOf renders a time as a persisted date string (UTC).
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// IdentityKind tags which attribute an identity was derived from.
type IdentityKind string

const (
	KindDOI IdentityKind = "doi"
	KindURL IdentityKind = "url"
)

// Identity is the canonical logical identity of an article: its DOI when
// one is known, otherwise its normalized URL.
type Identity struct {
	Kind  IdentityKind `json:"kind"`
	Value string       `json:"value"`
}

func DOI(v string) Identity { return Identity{Kind: KindDOI, Value: v} }
func URL(v string) Identity { return Identity{Kind: KindURL, Value: v} }

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool { return id.Value == "" }

// Key renders the persisted string form, e.g. "doi:10.1234/abc".
func (id Identity) Key() string { return string(id.Kind) + ":" + id.Value }

func (id Identity) String() string { return id.Key() }

// ParseKey inverts Key. Only the first colon separates kind from value, so
// DOIs and URLs containing colons round-trip.
func ParseKey(key string) (Identity, error) {
	kind, value, ok := strings.Cut(key, ":")
	if !ok || value == "" {
		return Identity{}, fmt.Errorf("malformed identity key: %q", key)
	}
	switch IdentityKind(kind) {
	case KindDOI, KindURL:
		return Identity{Kind: IdentityKind(kind), Value: value}, nil
	default:
		return Identity{}, fmt.Errorf("unknown identity kind in key: %q", key)
	}
}

// Article is the inbound shape delivered by the fetch collaborators. Only
// title and url are guaranteed; everything else is best effort.
type Article struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	DOI       string   `json:"doi,omitempty"`
	Journal   string   `json:"journal,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Published string   `json:"published,omitempty"`
}

// Tags holds extracted dimension tags (geography, methods, stakeholders)
// keyed by dimension name.
type Tags map[string][]string

// Record is the per-article state. Candidates carry the zero tier in memory
// only; the store persists a record the moment its tier is decided.
type Record struct {
	Identity    Identity `json:"identity"`
	Secondary   Identity `json:"secondary,omitzero"`
	Title       string   `json:"title"`
	Journal     string   `json:"journal,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Abstract    string   `json:"abstract,omitempty"`
	Published   string   `json:"published,omitempty"`
	Score       int      `json:"score"`
	Tier        Tier     `json:"tier,omitempty"`
	State       State    `json:"state,omitempty"`
	FirstSeen   string   `json:"first_seen"`
	LastUpdated string   `json:"last_updated,omitempty"`
	Tags        Tags     `json:"tags,omitempty"`
}

// Identities lists the record's known identity forms, primary first.
func (r Record) Identities() []Identity {
	ids := []Identity{r.Identity}
	if !r.Secondary.IsZero() {
		ids = append(ids, r.Secondary)
	}
	return ids
}

// Link returns the best browser-openable reference for the record.
func (r Record) Link() string {
	for _, id := range r.Identities() {
		if id.Kind == KindURL {
			return id.Value
		}
	}
	if r.Identity.Kind == KindDOI {
		return "https://doi.org/" + r.Identity.Value
	}
	return ""
}

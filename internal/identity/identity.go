// Package identity derives canonical article identities from raw feed and
// API attributes. Everything here is pure; malformed input degrades to a
// best-effort URL identity rather than an error.
package identity

import (
	"net/url"
	"regexp"
	"strings"

	"journalclub/internal/model"
)

var doiPattern = regexp.MustCompile(`10\.\d{4,9}/\S+`)

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
}

// Resolve picks the canonical identity for an article: the DOI when one is
// present and survives normalization, otherwise the normalized URL.
func Resolve(doi, rawURL string) model.Identity {
	if d := NormalizeDOI(doi); d != "" {
		return model.DOI(d)
	}
	return model.URL(NormalizeURL(rawURL))
}

// NormalizeDOI lowercases a DOI and strips resolver wrappers and a leading
// doi: label. Returns "" when nothing DOI-shaped remains.
func NormalizeDOI(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	for _, p := range doiPrefixes {
		s = strings.TrimPrefix(s, p)
	}
	s = strings.TrimPrefix(s, "doi:")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".,;")
	if !strings.HasPrefix(s, "10.") || !strings.Contains(s, "/") {
		return ""
	}
	return s
}

// Tracking parameters stripped during URL normalization, in addition to
// anything prefixed utm_.
var trackingParams = map[string]struct{}{
	"gclid":  {},
	"fbclid": {},
	"mc_cid": {},
	"mc_eid": {},
	"igshid": {},
}

// NormalizeURL lowercases the scheme and host, strips tracking query
// parameters and the fragment, sorts the surviving query for a stable
// form, and removes a trailing slash. Path case is preserved.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if _, drop := trackingParams[lk]; drop || strings.HasPrefix(lk, "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	return strings.TrimSuffix(u.String(), "/")
}

// ExtractDOI scans free text, typically entry links and GUIDs, for the
// first DOI-shaped substring and returns it normalized.
func ExtractDOI(candidates ...string) string {
	for _, c := range candidates {
		m := doiPattern.FindString(c)
		if m == "" {
			continue
		}
		if i := strings.IndexAny(m, "?#&"); i >= 0 {
			m = m[:i]
		}
		if d := NormalizeDOI(m); d != "" {
			return d
		}
	}
	return ""
}

package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML drops markup and returns the text content. Crossref abstracts
// arrive wrapped in JATS tags and feed summaries often carry publisher
// markup.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

var abstractLabels = []string{"Abstract", "ABSTRACT", "Summary", "SUMMARY"}

// CleanAbstract strips markup, a leading Abstract/Summary label, and
// collapses whitespace.
func CleanAbstract(s string) string {
	s = strings.TrimSpace(StripHTML(s))
	for _, label := range abstractLabels {
		if strings.HasPrefix(s, label) {
			s = strings.TrimLeft(s[len(label):], ":")
			break
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// FallbackSummary decides whether a raw feed summary is substantial enough
// to stand in for a missing abstract. Short blurbs and tables-of-contents
// boilerplate are rejected.
func FallbackSummary(raw string) string {
	if len(strings.TrimSpace(raw)) < 50 {
		return ""
	}
	cleaned := CleanAbstract(raw)
	if len(cleaned) <= 100 {
		return ""
	}
	if strings.HasPrefix(cleaned, "Volume ") || strings.HasPrefix(cleaned, "Publication date") {
		return ""
	}
	return cleaned
}

package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:prism="http://prismstandard.org/namespaces/basic/2.0/">
<channel>
<title>tandf: Housing Studies: Table of Contents</title>
<link>https://www.tandfonline.com/toc/chos20/current</link>
<description>journal feed</description>
<item>
<title>Tenure security for renters</title>
<link>https://www.tandfonline.com/doi/full/10.1080/02673037.2026.1234567</link>
<guid>10.1080/02673037.2026.1234567</guid>
<description>Abstract text here.</description>
<prism:doi>10.1080/02673037.2026.1234567</prism:doi>
<pubDate>Mon, 04 May 2026 10:00:00 GMT</pubDate>
<category>housing</category>
</item>
<item>
<title></title>
<link>https://example.org/no-title</link>
</item>
<item>
<title>No DOI item</title>
<link>https://example.org/articles/568</link>
<description></description>
</item>
</channel>
</rss>`

func TestLoadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.txt")
	blob := `# housing journals
https://feeds.example.org/housing.rss
https://feeds.example.org/urban.rss  # weekly TOC

https://feeds.example.org/policy.rss
`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	urls, err := LoadList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://feeds.example.org/housing.rss",
		"https://feeds.example.org/urban.rss",
		"https://feeds.example.org/policy.rss",
	}, urls)
}

func TestLoadListMissingFile(t *testing.T) {
	_, err := LoadList(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestCleanJournalTitle(t *testing.T) {
	cases := map[string]string{
		"tandf: Housing Studies: Table of Contents":     "Housing Studies",
		"SAGE Publications Ltd: Urban Studies":          "Urban Studies",
		"SAGE Publications: Environment and Planning A": "Environment and Planning A",
		"ScienceDirect Publication: Cities":             "Cities",
		"Housing Policy Debate: TOC":                    "Housing Policy Debate",
		"Plain Journal":                                 "Plain Journal",
		"  padded  ":                                    "padded",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanJournalTitle(in), in)
	}
}

func TestFetchMapsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, zap.NewNop())
	articles, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 2, "item without title is dropped")

	first := articles[0]
	assert.Equal(t, "Tenure security for renters", first.Title)
	assert.Equal(t, "Housing Studies", first.Journal)
	assert.Equal(t, "10.1080/02673037.2026.1234567", first.DOI)
	assert.Equal(t, "2026-05-04", first.Published)
	assert.Equal(t, []string{"housing"}, first.Keywords)
	assert.Equal(t, "Abstract text here.", first.Summary)

	assert.Empty(t, articles[1].DOI)
}

func TestFetchAllSkipsBrokenFeeds(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedXML))
	}))
	defer good.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()

	f := NewFetcher(5*time.Second, zap.NewNop())
	articles := f.FetchAll(context.Background(), []string{broken.URL, good.URL})
	assert.Len(t, articles, 2)
}

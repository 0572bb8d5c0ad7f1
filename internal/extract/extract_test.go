package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(Defaults())
	require.NoError(t, err)
	return e
}

func TestExtractFromTitle(t *testing.T) {
	e := newDefaultExtractor(t)
	tags := e.Extract("Spatial justice and renters in Tāmaki Makaurau", nil, "")

	assert.Equal(t, []string{"Auckland"}, tags[DimGeography])
	assert.Equal(t, []string{"spatial-justice"}, tags[DimMethods])
	assert.Equal(t, []string{"renters"}, tags[DimStakeholders])
}

func TestExtractMacronAndPlainSpelling(t *testing.T) {
	e := newDefaultExtractor(t)
	withMacron := e.Extract("Housing in Tāmaki Makaurau", nil, "")
	plain := e.Extract("Housing in Tamaki Makaurau", nil, "")
	assert.Equal(t, []string{"Auckland"}, withMacron[DimGeography])
	assert.Equal(t, []string{"Auckland"}, plain[DimGeography])
}

func TestExtractFirstFieldWinsPerDimension(t *testing.T) {
	e := newDefaultExtractor(t)
	tags := e.Extract(
		"Auckland housing supply",
		nil,
		"A Wellington comparison drawing on interviews with tenants.",
	)
	assert.Equal(t, []string{"Auckland"}, tags[DimGeography], "title geography wins over abstract")
	assert.Equal(t, []string{"renters"}, tags[DimStakeholders], "stakeholders fall through to abstract")
}

func TestExtractKeywordsBeforeAbstract(t *testing.T) {
	e := newDefaultExtractor(t)
	tags := e.Extract(
		"An untagged title",
		[]string{"ethnography", "Christchurch"},
		"A survey of Berlin households.",
	)
	assert.Equal(t, []string{"Christchurch"}, tags[DimGeography])
	assert.Equal(t, []string{"ethnography"}, tags[DimMethods])
}

func TestExtractPluralAndHyphenFolding(t *testing.T) {
	e := newDefaultExtractor(t)

	tags := e.Extract("What councils owe their tenants", nil, "")
	assert.Equal(t, []string{"local-government", "renters"}, tags[DimStakeholders])

	tags = e.Extract("A meta-analysis of rent control", nil, "")
	assert.Equal(t, []string{"systematic-review"}, tags[DimMethods])

	tags = e.Extract("Counter mapping the city", nil, "")
	assert.Equal(t, []string{"counter-mapping"}, tags[DimMethods])
}

func TestExtractNoPartialWords(t *testing.T) {
	e := newDefaultExtractor(t)
	tags := e.Extract("Maintenance of rentals in general", nil, "")
	assert.NotContains(t, tags[DimStakeholders], "landlords")
	assert.Contains(t, tags[DimStakeholders], "renters")
}

func TestExtractNothing(t *testing.T) {
	e := newDefaultExtractor(t)
	tags := e.Extract("Entirely unrelated quantum chromodynamics", nil, "")
	assert.Empty(t, tags)
}

func TestExtractSortedCanonicals(t *testing.T) {
	e := newDefaultExtractor(t)
	tags := e.Extract("Wellington and Auckland compared", nil, "")
	assert.Equal(t, []string{"Auckland", "Wellington"}, tags[DimGeography])
}

func TestLoadFileOverridesOneDimension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionaries.yaml")
	blob := `geography:
  Dunedin:
    - dunedin
    - ōtepoti
`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	d, err := LoadFile(path)
	require.NoError(t, err)
	e, err := New(d)
	require.NoError(t, err)

	tags := e.Extract("Student housing in Ōtepoti", nil, "")
	assert.Equal(t, []string{"Dunedin"}, tags[DimGeography])

	tags = e.Extract("Auckland rentals", nil, "")
	assert.Empty(t, tags[DimGeography], "replaced dimension drops the defaults")
	assert.Contains(t, tags[DimStakeholders], "renters", "untouched dimensions keep defaults")
}

func TestLoadFileRejectsEmptyAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionaries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("methods:\n  broken: []\n"), 0o644))
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

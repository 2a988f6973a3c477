package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

const scimagoSample = "\ufeffRank;Sourceid;Title;Type;Issn;SJR;SJR Best Quartile;H index;Country;Publisher;Categories\n" +
	"1;21100;\"Nature\";journal;\"14764687, 00280836\";18,509;Q1;1331;United Kingdom;\"Nature Publishing Group\";\"Multidisciplinary (Q1)\"\n" +
	"2;17436;\"Journal of Applied Physics\";journal;\"10897550, 00218979\";0,649;Q2;319;United States;\"American Institute of Physics\";\"Physics and Astronomy (miscellaneous) (Q2)\"\n" +
	"3;21101;\"International Journal of Advanced Research\";journal;-;-;-;3;India;;\"Multidisciplinary (Q4); Engineering (miscellaneous) (Q4)\"\n" +
	"4;99999;\"\";journal;;;;;;;\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCatalog(t *testing.T) {
	entries, err := ReadCatalog(strings.NewReader(scimagoSample))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	nature := entries[0]
	assert.Equal(t, "Nature", nature.Name)
	assert.Equal(t, []string{"14764687", "00280836"}, nature.ISSN)
	require.NotNil(t, nature.SJR)
	assert.InDelta(t, 18.509, *nature.SJR, 1e-9)
	assert.Equal(t, domain.QuartileQ1, nature.Quartile)
	assert.Equal(t, "United Kingdom", nature.Country)
	assert.Equal(t, "Nature Publishing Group", nature.Publisher)
	assert.Equal(t, []string{"Multidisciplinary"}, nature.Categories)

	jap := entries[1]
	assert.Equal(t, []string{"Physics and Astronomy (miscellaneous)"}, jap.Categories)
	assert.Equal(t, domain.QuartileQ2, jap.Quartile)

	ijar := entries[2]
	assert.Nil(t, ijar.ISSN)
	assert.Nil(t, ijar.SJR)
	assert.Equal(t, domain.QuartileUnknown, ijar.Quartile)
	assert.Empty(t, ijar.Publisher)
	assert.Equal(t, []string{"Multidisciplinary", "Engineering (miscellaneous)"}, ijar.Categories)
}

func TestReadCatalog_MissingColumns(t *testing.T) {
	tests := map[string]string{
		"no title":      "Rank;Issn;Categories\n1;123;Physics\n",
		"no categories": "Rank;Title;Issn\n1;Nature;123\n",
		"empty file":    "",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCatalog(strings.NewReader(input))
			assert.ErrorIs(t, err, domain.ErrMalformedDataset)
		})
	}
}

func TestReadCatalog_NoRows(t *testing.T) {
	_, err := ReadCatalog(strings.NewReader("Title;Categories\n"))
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestReadBlocklist(t *testing.T) {
	input := "# Beall's list\n\nInternational Journal of Advanced Research\n  Journal of Global Research in Computer Science  \n#comment\n"

	names, err := ReadBlocklist(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"International Journal of Advanced Research",
		"Journal of Global Research in Computer Science",
	}, names)
}

func TestParseDecimal(t *testing.T) {
	v := parseDecimal("0,649")
	require.NotNil(t, v)
	assert.InDelta(t, 0.649, *v, 1e-9)

	v = parseDecimal("12.5")
	require.NotNil(t, v)
	assert.InDelta(t, 12.5, *v, 1e-9)

	assert.Nil(t, parseDecimal(""))
	assert.Nil(t, parseDecimal("-"))
}

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	loader := &FileLoader{
		CatalogPath:    writeFile(t, dir, "scimago.csv", scimagoSample),
		JournalsPath:   writeFile(t, dir, "journals.txt", "International Journal of Advanced Research\n"),
		PublishersPath: writeFile(t, dir, "publishers.txt", "# none yet\nOMICS Publishing Group\n"),
	}

	data, err := loader.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, data.Entries, 3)
	assert.Equal(t, []string{"International Journal of Advanced Research"}, data.PredatoryJournals)
	assert.Equal(t, []string{"OMICS Publishing Group"}, data.PredatoryPublishers)
}

func TestFileLoader_MissingFile(t *testing.T) {
	dir := t.TempDir()
	catalog := writeFile(t, dir, "scimago.csv", scimagoSample)
	journals := writeFile(t, dir, "journals.txt", "")

	tests := map[string]*FileLoader{
		"catalog":    {CatalogPath: filepath.Join(dir, "missing.csv"), JournalsPath: journals, PublishersPath: journals},
		"journals":   {CatalogPath: catalog, JournalsPath: filepath.Join(dir, "missing.txt"), PublishersPath: journals},
		"publishers": {CatalogPath: catalog, JournalsPath: journals, PublishersPath: filepath.Join(dir, "missing.txt")},
	}

	for name, loader := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loader.Load(context.Background())
			assert.ErrorIs(t, err, domain.ErrDatasetUnavailable)
		})
	}
}

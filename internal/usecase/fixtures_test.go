package usecase

import (
	"testing"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

func sjr(v float64) *float64 { return &v }

// sampleEntries is a small catalog shaped like SCImago rows
func sampleEntries() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{
			Name:       "Nature",
			ISSN:       []string{"14764687", "00280836"},
			Categories: []string{"Multidisciplinary"},
			Country:    "United Kingdom",
			SJR:        sjr(18.509),
			Quartile:   domain.QuartileQ1,
			Publisher:  "Nature Publishing Group",
		},
		{
			Name:       "Nature Communications",
			ISSN:       []string{"20411723"},
			Categories: []string{"Multidisciplinary", "Chemistry (miscellaneous)"},
			Country:    "United Kingdom",
			SJR:        sjr(4.887),
			Quartile:   domain.QuartileQ1,
			Publisher:  "Nature Publishing Group",
		},
		{
			Name:       "Science",
			ISSN:       []string{"10959203", "00368075"},
			Categories: []string{"Multidisciplinary"},
			Country:    "United States",
			SJR:        sjr(12.124),
			Quartile:   domain.QuartileQ1,
			Publisher:  "American Association for the Advancement of Science",
		},
		{
			Name:       "Journal of Applied Physics",
			ISSN:       []string{"00218979"},
			Categories: []string{"Physics and Astronomy (miscellaneous)"},
			Country:    "United States",
			SJR:        sjr(0.649),
			Quartile:   domain.QuartileQ2,
			Publisher:  "American Institute of Physics",
		},
		{
			Name:       "Journal of Applied Physiology",
			ISSN:       []string{"87507587"},
			Categories: []string{"Physiology"},
			Country:    "United States",
			SJR:        sjr(1.207),
			Quartile:   domain.QuartileQ1,
			Publisher:  "American Physiological Society",
		},
		{
			Name:       "International Journal of Advanced Research",
			Categories: []string{"Multidisciplinary"},
			Country:    "India",
			Quartile:   domain.QuartileQ4,
			Publisher:  "Shoaib Publishing",
		},
		{
			Name:       "Revista de Saúde Pública",
			ISSN:       []string{"00348910"},
			Categories: []string{"Public Health, Environmental and Occupational Health"},
			Country:    "Brazil",
			SJR:        sjr(0.601),
			Quartile:   domain.QuartileQ2,
		},
	}
}

// predatoryJournals and predatoryPublishers mimic the blocklist files
var (
	predatoryJournals   = []string{"international journal of advanced research", "journal of global research in computer science"}
	predatoryPublishers = []string{"shoaib publishing", "omics publishing group"}
)

func newTestIndex(t *testing.T) *CatalogIndex {
	t.Helper()
	idx, err := NewCatalogIndex(sampleEntries())
	if err != nil {
		t.Fatalf("NewCatalogIndex() error = %v", err)
	}
	return idx
}

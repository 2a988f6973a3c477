package scopus

import (
	"strings"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// serialTitleResponse is the subset of the Serial Title API response we read
type serialTitleResponse struct {
	SerialMetadataResponse struct {
		Entry []serialEntry `json:"entry"`
		Error string        `json:"error"`
	} `json:"serial-metadata-response"`
}

type serialEntry struct {
	Title     string `json:"dc:title"`
	Publisher string `json:"dc:publisher"`
	ISSN      string `json:"prism:issn"`
	EISSN     string `json:"prism:eIssn"`
	Error     string `json:"error"`
}

// mapToIndexingResult reports a journal as indexed when the response carries
// at least one real serial entry. Error placeholders do not count.
func mapToIndexingResult(resp *serialTitleResponse) *domain.IndexingResult {
	for _, e := range resp.SerialMetadataResponse.Entry {
		if e.Error == "" && strings.TrimSpace(e.Title) != "" {
			return &domain.IndexingResult{Indexed: true}
		}
	}
	return &domain.IndexingResult{Indexed: false}
}

package domain

// Quartile is the SCImago best-quartile ranking of a journal
type Quartile string

const (
	QuartileQ1      Quartile = "Q1"
	QuartileQ2      Quartile = "Q2"
	QuartileQ3      Quartile = "Q3"
	QuartileQ4      Quartile = "Q4"
	QuartileUnknown Quartile = ""
)

// ParseQuartile maps a dataset value such as "Q1" to a Quartile.
// Anything unrecognised (including "-") is QuartileUnknown.
func ParseQuartile(s string) Quartile {
	switch Quartile(s) {
	case QuartileQ1, QuartileQ2, QuartileQ3, QuartileQ4:
		return Quartile(s)
	default:
		return QuartileUnknown
	}
}

// CatalogEntry is one journal of the reference catalog.
// Entries are built once by the dataset loader and are read-only afterwards.
type CatalogEntry struct {
	Name           string   `json:"name"`
	NormalizedName string   `json:"normalizedName"`
	ISSN           []string `json:"issn,omitempty"`
	Categories     []string `json:"categories"`
	Country        string   `json:"country,omitempty"`
	SJR            *float64 `json:"sjr,omitempty"`
	Quartile       Quartile `json:"quartile,omitempty"`
	Publisher      string   `json:"publisher,omitempty"` // empty when absent
}

// MatchCandidate is a scored catalog entry for one query
type MatchCandidate struct {
	Entry CatalogEntry `json:"entry"`
	Score float64      `json:"score"` // 0..1
	Rank  int          `json:"rank"`  // 1-based
}

// PredatoryStatus is the blocklist classification of a journal and its publisher
type PredatoryStatus struct {
	Journal   bool `json:"isPredatoryJournal"`
	Publisher bool `json:"isPredatoryPublisher"`
}

// ReferenceData is everything the dataset loader supplies at startup
type ReferenceData struct {
	Entries             []CatalogEntry
	PredatoryJournals   []string
	PredatoryPublishers []string
}

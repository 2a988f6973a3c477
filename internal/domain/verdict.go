package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// EvidenceStatus is the outcome of consulting one external source
type EvidenceStatus string

const (
	EvidenceOK      EvidenceStatus = "ok"
	EvidenceFailed  EvidenceStatus = "failed"
	EvidenceSkipped EvidenceStatus = "skipped"
)

// EvidenceRecord records one attempted external source, in call order
type EvidenceRecord struct {
	Source string         `json:"source"`
	Status EvidenceStatus `json:"status"`
	Detail string         `json:"detail,omitempty"`
}

// Money is an amount in a currency as reported by an extraction source.
// Currency is an ISO code (USD, EUR, GBP) or empty when it could not be determined.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Raw      string  `json:"raw,omitempty"`
}

func (m Money) String() string {
	amount := strconv.FormatFloat(m.Amount, 'f', -1, 64)
	if m.Currency == "" {
		return amount
	}
	return amount + " " + m.Currency
}

// IndexingResult is what the indexing-verification source reports
type IndexingResult struct {
	Indexed bool `json:"indexed"`
}

// ExtractionResult is what the AI-extraction source reports.
// A nil field means the source did not know.
type ExtractionResult struct {
	APC        *Money  `json:"apc,omitempty"`
	Frequency  *string `json:"frequency,omitempty"`
	OpenAccess *bool   `json:"openAccess,omitempty"`
	Hybrid     *bool   `json:"hybrid,omitempty"`
}

// Credentials are per-request API keys. An empty key means "absent".
// They are passed through to collaborators as call parameters only.
type Credentials struct {
	IndexingKey   string
	ExtractionKey string
}

// String never prints the keys themselves
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{indexing:%t extraction:%t}", c.IndexingKey != "", c.ExtractionKey != "")
}

// GoString keeps %#v from leaking keys into logs
func (c Credentials) GoString() string {
	return c.String()
}

// Verdict is the consolidated result for one query.
// Nil pointer fields are "unknown".
type Verdict struct {
	Query                string           `json:"query"`
	MatchedName          string           `json:"matchedName,omitempty"`
	MatchScore           float64          `json:"matchScore"`
	Categories           []string         `json:"categories"`
	Publisher            string           `json:"publisher,omitempty"`
	ISSN                 []string         `json:"issn,omitempty"`
	Country              string           `json:"country,omitempty"`
	SJR                  *float64         `json:"sjr,omitempty"`
	Quartile             Quartile         `json:"quartile,omitempty"`
	IsPredatoryJournal   bool             `json:"isPredatoryJournal"`
	IsPredatoryPublisher bool             `json:"isPredatoryPublisher"`
	ScopusIndexed        *bool            `json:"scopusIndexed"`
	APC                  *Money           `json:"apc"`
	PublicationFrequency *string          `json:"publicationFrequency"`
	OpenAccess           *bool            `json:"openAccess"`
	Hybrid               *bool            `json:"hybrid"`
	EvidenceSources      []EvidenceRecord `json:"evidenceSources"`
}

// Matched reports whether the query resolved to a catalog entry
func (v *Verdict) Matched() bool {
	return v.MatchedName != ""
}

// ResultSummary holds counts derived from a ResultSet's verdicts
type ResultSummary struct {
	Total               int `json:"total"`
	Matched             int `json:"matched"`
	Unmatched           int `json:"unmatched"`
	PredatoryJournals   int `json:"predatoryJournals"`
	PredatoryPublishers int `json:"predatoryPublishers"`
	ScopusIndexed       int `json:"scopusIndexed"`
	ScopusUnknown       int `json:"scopusUnknown"`
	FailedSources       int `json:"failedSources"`
}

// ResultSet is the ordered collection of verdicts handed to export
type ResultSet struct {
	Verdicts []Verdict     `json:"verdicts"`
	Summary  ResultSummary `json:"summary"`
}

// ResultColumns is the tabular header used by Rows
var ResultColumns = []string{
	"Query", "Matched_Title", "Match_Score", "ISSN", "Publisher", "Categories", "Country",
	"SJR", "Quartile", "Scopus_Indexed", "is_predatory_journal", "is_predatory_publisher",
	"APC", "Frequency", "is_open_access", "is_hybrid", "Evidence",
}

const unknownCell = "unknown"

// Rows returns the header followed by one row per verdict, in order
func (rs ResultSet) Rows() [][]string {
	rows := make([][]string, 0, len(rs.Verdicts)+1)
	rows = append(rows, append([]string(nil), ResultColumns...))
	for i := range rs.Verdicts {
		rows = append(rows, rs.Verdicts[i].row())
	}
	return rows
}

func (v *Verdict) row() []string {
	sjr := ""
	if v.SJR != nil {
		sjr = strconv.FormatFloat(*v.SJR, 'f', 3, 64)
	}
	apc := unknownCell
	if v.APC != nil {
		apc = v.APC.String()
	}
	freq := unknownCell
	if v.PublicationFrequency != nil {
		freq = *v.PublicationFrequency
	}

	evidence := make([]string, 0, len(v.EvidenceSources))
	for _, e := range v.EvidenceSources {
		evidence = append(evidence, e.Source+"="+string(e.Status))
	}

	return []string{
		v.Query,
		v.MatchedName,
		strconv.FormatFloat(v.MatchScore, 'f', 3, 64),
		strings.Join(v.ISSN, ", "),
		v.Publisher,
		strings.Join(v.Categories, "; "),
		v.Country,
		sjr,
		string(v.Quartile),
		triState(v.ScopusIndexed),
		strconv.FormatBool(v.IsPredatoryJournal),
		strconv.FormatBool(v.IsPredatoryPublisher),
		apc,
		freq,
		triState(v.OpenAccess),
		triState(v.Hybrid),
		strings.Join(evidence, "; "),
	}
}

func triState(b *bool) string {
	if b == nil {
		return unknownCell
	}
	return strconv.FormatBool(*b)
}

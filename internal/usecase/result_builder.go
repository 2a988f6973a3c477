package usecase

import (
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// ResultBuilder assembles verdicts into the ResultSet handed to export
type ResultBuilder struct{}

// NewResultBuilder creates a result builder
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{}
}

// Build copies verdicts in order and adds summary counts derived from them.
// The input slice is never modified.
func (b *ResultBuilder) Build(verdicts []domain.Verdict) domain.ResultSet {
	rs := domain.ResultSet{
		Verdicts: make([]domain.Verdict, len(verdicts)),
	}
	copy(rs.Verdicts, verdicts)

	for i := range rs.Verdicts {
		v := &rs.Verdicts[i]
		v.EvidenceSources = append([]domain.EvidenceRecord(nil), v.EvidenceSources...)
		summarize(&rs.Summary, v)
	}

	return rs
}

func summarize(sum *domain.ResultSummary, v *domain.Verdict) {
	sum.Total++
	if v.Matched() {
		sum.Matched++
	} else {
		sum.Unmatched++
	}
	if v.IsPredatoryJournal {
		sum.PredatoryJournals++
	}
	if v.IsPredatoryPublisher {
		sum.PredatoryPublishers++
	}
	switch {
	case v.ScopusIndexed == nil:
		sum.ScopusUnknown++
	case *v.ScopusIndexed:
		sum.ScopusIndexed++
	}
	for _, e := range v.EvidenceSources {
		if e.Status == domain.EvidenceFailed {
			sum.FailedSources++
		}
	}
}

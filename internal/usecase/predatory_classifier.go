package usecase

import (
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// PredatoryClassifier tags journals and publishers found on the blocklists.
// Both sets are built once and only read afterwards.
type PredatoryClassifier struct {
	journals   map[string]struct{}
	publishers map[string]struct{}
}

// NewPredatoryClassifier normalizes both blocklists into lookup sets.
// Names that normalize to nothing are ignored.
func NewPredatoryClassifier(journals, publishers []string) *PredatoryClassifier {
	return &PredatoryClassifier{
		journals:   normalizedSet(journals),
		publishers: normalizedSet(publishers),
	}
}

// Classify reports blocklist membership for a journal and its publisher.
// An empty publisher is unknown and is never flagged.
func (c *PredatoryClassifier) Classify(journalName, publisherName string) domain.PredatoryStatus {
	var status domain.PredatoryStatus

	if key := Normalize(journalName); key != "" {
		_, status.Journal = c.journals[key]
	}
	if key := Normalize(publisherName); key != "" {
		_, status.Publisher = c.publishers[key]
	}

	return status
}

// Sizes returns the number of distinct blocklisted journals and publishers
func (c *PredatoryClassifier) Sizes() (journals, publishers int) {
	return len(c.journals), len(c.publishers)
}

func normalizedSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if key := Normalize(n); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// ContentType is the media type written by WriteCSV
const ContentType = "text/csv; charset=utf-8"

// WriteCSV writes the header and one row per verdict, in ResultSet order
func WriteCSV(w io.Writer, rs domain.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rs.Rows()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// FileName builds the download name used for exports, e.g. journal_analysis_category_20250101_120000.csv
func FileName(kind string, stamp string) string {
	return fmt.Sprintf("journal_analysis_%s_%s.csv", kind, stamp)
}

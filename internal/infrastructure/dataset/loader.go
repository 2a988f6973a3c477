package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

// SCImago export column names
const (
	colTitle      = "Title"
	colCategories = "Categories"
	colISSN       = "Issn"
	colPublisher  = "Publisher"
	colCountry    = "Country"
	colSJR        = "SJR"
	colQuartile   = "SJR Best Quartile"
)

// categoryQuartile matches the " (Q1)" suffix SCImago appends to each category
var categoryQuartile = regexp.MustCompile(`\s*\(Q[1-4]\)\s*$`)

// FileLoader reads the reference data from local files
type FileLoader struct {
	CatalogPath    string
	JournalsPath   string
	PublishersPath string
}

// Load reads the catalog and both blocklists. Any failure is fatal to startup.
func (l *FileLoader) Load(ctx context.Context) (*domain.ReferenceData, error) {
	entries, err := readCatalogFile(l.CatalogPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	journals, err := readBlocklistFile(l.JournalsPath)
	if err != nil {
		return nil, err
	}
	publishers, err := readBlocklistFile(l.PublishersPath)
	if err != nil {
		return nil, err
	}

	logging.Info("reference data loaded",
		"component", "dataset",
		"catalog_entries", len(entries),
		"predatory_journals", len(journals),
		"predatory_publishers", len(publishers),
	)

	return &domain.ReferenceData{
		Entries:             entries,
		PredatoryJournals:   journals,
		PredatoryPublishers: publishers,
	}, nil
}

func readCatalogFile(path string) ([]domain.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetUnavailable, err)
	}
	defer f.Close()

	entries, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ReadCatalog parses a ';'-separated SCImago export.
// Title and Categories columns are required; the rest are optional.
// Rows with a blank title are skipped.
func ReadCatalog(r io.Reader) ([]domain.CatalogEntry, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", domain.ErrMalformedDataset)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedDataset, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[h] = i
	}
	for _, required := range []string{colTitle, colCategories} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", domain.ErrMalformedDataset, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []domain.CatalogEntry
	skipped := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrMalformedDataset, line, err)
		}

		title := field(record, colTitle)
		if title == "" {
			skipped++
			continue
		}

		entries = append(entries, domain.CatalogEntry{
			Name:       title,
			ISSN:       splitList(field(record, colISSN), ","),
			Categories: parseCategories(field(record, colCategories)),
			Country:    field(record, colCountry),
			SJR:        parseDecimal(field(record, colSJR)),
			Quartile:   domain.ParseQuartile(field(record, colQuartile)),
			Publisher:  field(record, colPublisher),
		})
	}

	if skipped > 0 {
		logging.Warn("catalog rows without title skipped", "component", "dataset", "rows", skipped)
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	return entries, nil
}

// parseCategories splits "Hematology (Q1); Oncology (Q2)" into bare category names
func parseCategories(s string) []string {
	parts := splitList(s, ";")
	for i, p := range parts {
		parts[i] = categoryQuartile.ReplaceAllString(p, "")
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDecimal reads SCImago numbers, which use a decimal comma ("145,004")
func parseDecimal(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}

func splitList(s, sep string) []string {
	if s == "" || s == "-" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" && p != "-" {
			out = append(out, p)
		}
	}
	return out
}

func readBlocklistFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetUnavailable, err)
	}
	defer f.Close()

	names, err := ReadBlocklist(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return names, nil
}

// ReadBlocklist reads one name per line. Blank lines and '#' comments are skipped.
func ReadBlocklist(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedDataset, err)
	}
	return names, nil
}

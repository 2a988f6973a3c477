package gemini

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

var (
	amountPattern   = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d+))?`)
	currencyPattern = regexp.MustCompile(`(?i)\b(USD|EUR|GBP)\b`)
)

// ParseExtraction reads the "Label: value" lines of a model answer.
// Labels are matched case-insensitively; missing or unknown values stay nil.
func ParseExtraction(text string) *domain.ExtractionResult {
	result := &domain.ExtractionResult{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-*• ")
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "*` ")

		switch strings.ToLower(strings.Trim(label, "* ")) {
		case "apc":
			result.APC = ParseMoney(value)
		case "frequency":
			result.Frequency = parseText(value)
		case "open access":
			result.OpenAccess = parseYesNo(value)
		case "hybrid":
			result.Hybrid = parseYesNo(value)
		}
	}

	return result
}

// ParseMoney extracts an amount and ISO currency from text such as
// "$3,490", "2,000 EUR" or "£1500.50". It returns nil when no amount is present.
func ParseMoney(value string) *domain.Money {
	if parseText(value) == nil {
		return nil
	}

	m := amountPattern.FindStringSubmatch(value)
	if m == nil {
		return nil
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	if m[2] != "" {
		digits += "." + m[2]
	}
	amount, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}

	return &domain.Money{
		Amount:   amount,
		Currency: detectCurrency(value),
		Raw:      value,
	}
}

func detectCurrency(value string) string {
	switch {
	case strings.Contains(value, "$"):
		return "USD"
	case strings.Contains(value, "€"):
		return "EUR"
	case strings.Contains(value, "£"):
		return "GBP"
	}
	if m := currencyPattern.FindStringSubmatch(value); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func parseText(value string) *string {
	switch strings.ToLower(strings.TrimRight(value, ".")) {
	case "", "none", "unknown", "n/a", "na", "not found", "not available":
		return nil
	}
	return &value
}

func parseYesNo(value string) *bool {
	if parseText(value) == nil {
		return nil
	}
	v := strings.ToLower(value)
	switch {
	case strings.HasPrefix(v, "y"):
		t := true
		return &t
	case strings.HasPrefix(v, "n"):
		f := false
		return &f
	default:
		return nil
	}
}

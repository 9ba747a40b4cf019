package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// ColumnReport compares a header row with the required column list.
type ColumnReport struct {
	// Valid is true when no required column is missing.
	Valid bool `json:"valid"`

	// Missing lists required columns absent from the header, in required
	// order.
	Missing []string `json:"missing"`

	// Extra lists header columns that are not required, in header order.
	Extra []string `json:"extra"`

	// Total is the number of required columns.
	Total int `json:"total"`

	// Found is the number of required columns present.
	Found int `json:"found"`
}

// ColumnError is returned when required columns are missing.
type ColumnError struct {
	Missing []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing %d required column(s): %s", len(e.Missing), strings.Join(e.Missing, ", "))
}

// Err returns a *ColumnError when the report is not valid, nil otherwise.
func (r ColumnReport) Err() error {
	if r.Valid {
		return nil
	}
	return &ColumnError{Missing: r.Missing}
}

// ValidateColumns checks headers against the final output columns. Names are
// compared upper-cased and trimmed.
func ValidateColumns(headers []string) ColumnReport {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[normalizeHeader(h)] = true
	}

	required := make(map[string]bool, len(types.FinalColumns))
	report := ColumnReport{
		Missing: make([]string, 0),
		Extra:   make([]string, 0),
		Total:   len(types.FinalColumns),
	}
	for _, col := range types.FinalColumns {
		key := normalizeHeader(col)
		required[key] = true
		if present[key] {
			report.Found++
		} else {
			report.Missing = append(report.Missing, col)
		}
	}
	for _, h := range headers {
		if !required[normalizeHeader(h)] {
			report.Extra = append(report.Extra, h)
		}
	}

	report.Valid = len(report.Missing) == 0
	return report
}

func normalizeHeader(h string) string {
	return strings.ToUpper(strings.TrimSpace(h))
}

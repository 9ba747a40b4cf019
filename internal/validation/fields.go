package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// =============================================================================
// FIELD RULES
// =============================================================================

// FieldRule describes the expected format of one column.
type FieldRule struct {
	// Column is the column name.
	Column string

	// DataType is "numeric", "decimal" or "string".
	DataType string

	// Length, when positive, is the exact number of characters required.
	Length int
}

// DefaultFieldRules are the row checks applied to normalized survey tables.
// Empty values are never reported; absence is handled by the pipeline
// defaults.
var DefaultFieldRules = []FieldRule{
	{Column: types.ColCEP, DataType: "numeric", Length: 8},
	{Column: types.ColLatitude, DataType: "decimal"},
	{Column: types.ColLongitude, DataType: "decimal"},
	{Column: types.ColQuantidadeUMs, DataType: "decimal"},
	{Column: types.ColUCsResidenciais, DataType: "decimal"},
	{Column: types.ColUCsComerciais, DataType: "decimal"},
}

// ValidateRows checks every row against rules and reports each failure as a
// warning, since the XML formatter falls back to defaults for bad values.
// Columns absent from the table are skipped.
func ValidateRows(t types.Table, rules []FieldRule) *ValidationResult {
	result := NewResult()
	result.RowsValidated = t.Len()

	active := make([]FieldRule, 0, len(rules))
	for _, rule := range rules {
		if t.HasColumn(rule.Column) {
			active = append(active, rule)
		}
	}

	for i, row := range t.Rows {
		for _, rule := range active {
			value := strings.TrimSpace(row[rule.Column])
			if value == "" {
				continue
			}
			result.FieldsValidated++

			if msg := validateField(value, rule); msg != "" {
				result.Add(&ValidationError{
					Severity:  SeverityWarning,
					Field:     rule.Column,
					Value:     value,
					Rule:      rule.DataType,
					Message:   msg,
					RowNumber: i + 1,
				})
			}
		}
	}

	return result
}

func validateField(value string, rule FieldRule) string {
	if msg := validateDataType(value, rule.DataType); msg != "" {
		return msg
	}
	if rule.Length > 0 && len([]rune(value)) != rule.Length {
		return fmt.Sprintf("Value must have exactly %d characters (actual: %d)", rule.Length, len([]rune(value)))
	}
	return ""
}

// =============================================================================
// DATA TYPE VALIDATORS
// =============================================================================

// validateDataType validates a value against a data type.
//
// SUPPORTED DATA TYPES:
//   - string: Any text value (always valid)
//   - numeric: Digits only
//   - decimal: Decimal numbers, comma or dot as separator
func validateDataType(value, dataType string) string {
	switch dataType {
	case "numeric":
		return validateNumeric(value)
	case "decimal":
		return validateDecimal(value)
	default:
		return ""
	}
}

// validateNumeric validates that a value contains only digits. Leading zeros
// are significant, so the value is not parsed as an integer.
func validateNumeric(value string) string {
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Sprintf("Value '%s' is not a valid number", value)
		}
	}
	return ""
}

// validateDecimal validates that a value is a valid decimal number.
func validateDecimal(value string) string {
	if _, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64); err != nil {
		return fmt.Sprintf("Value '%s' is not a valid decimal number", value)
	}
	return ""
}

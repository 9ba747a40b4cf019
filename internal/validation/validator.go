// =============================================================================
// Survey Address Converter - Validation Engine
// =============================================================================
//
// This module checks inputs and outputs of a conversion run:
//   - Column layout of an uploaded survey file
//   - Complement combinations (1, 1+2 or 1+2+3)
//   - Field formats of individual rows (postal code, coordinates, counts)
//   - Structure of the generated building documents
//   - Upload name and size
//
// ERROR HANDLING:
//   - Errors are collected, not returned on the first failure
//   - Each error carries the field, the value and the row number
//   - Errors can be warnings (continue processing) or fatal (stop processing)
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity indicates the severity of the error.
	// "error" = fatal, processing should stop
	// "warning" = non-fatal, processing can continue
	Severity string

	// Field is the name of the column or element that failed validation.
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// RowNumber is the 1-based data row (0 when not row specific).
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] ", strings.ToUpper(e.Severity)))
	if e.RowNumber > 0 {
		b.WriteString(fmt.Sprintf("Row %d, ", e.RowNumber))
	}
	if e.Field != "" {
		b.WriteString(fmt.Sprintf("Field '%s': ", e.Field))
	}
	b.WriteString(e.Message)
	if e.Value != "" {
		b.WriteString(fmt.Sprintf(" (value: '%s')", e.Value))
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// FieldsValidated is the total number of fields validated.
	FieldsValidated int

	// RowsValidated is the total number of rows validated.
	RowsValidated int
}

// NewResult returns an empty, valid result.
func NewResult() *ValidationResult {
	return &ValidationResult{IsValid: true, Errors: make([]*ValidationError, 0)}
}

// Add records a finding and updates the counters.
func (r *ValidationResult) Add(err *ValidationError) {
	r.Errors = append(r.Errors, err)
	if err.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
}

// addError is a shorthand for a fatal finding.
func (r *ValidationResult) addError(field, rule, message string) {
	r.Add(&ValidationError{Severity: SeverityError, Field: field, Rule: rule, Message: message})
}

// addWarning is a shorthand for a non-fatal finding.
func (r *ValidationResult) addWarning(field, rule, message string) {
	r.Add(&ValidationError{Severity: SeverityWarning, Field: field, Rule: rule, Message: message})
}

// Messages returns the messages of every finding with the given severity.
func (r *ValidationResult) Messages(severity string) []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Severity == severity {
			out = append(out, e.Message)
		}
	}
	return out
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
//
// PARAMETERS:
//   - errors: The validation errors to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Validation report generated at %s\n\n", time.Now().Format(time.RFC3339))
	writer.WriteString(FormatErrors(errors))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}

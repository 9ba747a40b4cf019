// =============================================================================
// Survey Address Converter - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   survey-converter validate <file> [--separator auto|'|'|';'] [--report path]
//
// A CSV file is checked for the expected columns, the complement
// combinations of every row and the format of the numeric fields. A single
// XML building document (.xml) is checked for its structure and complement
// codes. The command fails when a fatal finding is reported.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/survey-xml-converter/internal/csvparser"
	"github.com/ginjaninja78/survey-xml-converter/internal/validation"
)

var (
	validateSeparator string
	validateReport    string
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Report columns, complements and field formats of a survey file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			result *validation.ValidationResult
			err    error
		)
		if strings.EqualFold(filepath.Ext(args[0]), ".xml") {
			result, err = validateDocument(args[0])
		} else {
			result, err = validateSurvey(args[0])
		}
		if err != nil {
			return err
		}

		fmt.Println(validation.FormatErrors(result.Errors))
		switch {
		case !result.IsValid:
			printFailure("%d error(s), %d warning(s)", result.ErrorCount, result.WarningCount)
		case result.WarningCount > 0:
			printWarning("valid with %d warning(s)", result.WarningCount)
		default:
			printSuccess("valid")
		}
		if validateReport != "" {
			if err := validation.WriteErrorLog(result.Errors, validateReport); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", validateReport)
		}

		if !result.IsValid {
			return fmt.Errorf("validation failed with %d error(s)", result.ErrorCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateSeparator, "separator", "", "Field separator: auto, | or ; (default from config)")
	validateCmd.Flags().StringVar(&validateReport, "report", "", "Write the findings to this file")
}

// validateSurvey prints the column and complement reports of a CSV file and
// returns every finding.
func validateSurvey(path string) (*validation.ValidationResult, error) {
	settings := appConfig.CSV
	if validateSeparator != "" {
		settings.Delimiter = validateSeparator
	}

	data, err := csvparser.Parse(path, settings)
	if err != nil {
		return nil, err
	}
	table := data.Table()

	fmt.Printf("File:        %s\n", filepath.Base(path))
	fmt.Printf("Encoding:    %s\n", data.Encoding)
	fmt.Printf("Separator:   %q\n", data.Delimiter)
	fmt.Printf("Rows:        %d\n", len(data.Rows))

	columns := validation.ValidateColumns(data.Headers)
	fmt.Printf("Columns:     %d/%d required found\n", columns.Found, columns.Total)

	complements := validation.ValidateComplements(table)
	fmt.Printf("Complements: %s\n\n", complements.Message)

	result := validation.ValidateRows(table, validation.DefaultFieldRules)
	for _, col := range columns.Missing {
		result.Add(&validation.ValidationError{
			Severity: validation.SeverityError,
			Field:    col,
			Rule:     "required_column",
			Message:  "Coluna obrigatória ausente",
		})
	}
	if !complements.Valid {
		result.Add(&validation.ValidationError{
			Severity:  validation.SeverityError,
			Field:     "COMPLEMENTO",
			Rule:      "complement_combination",
			Message:   complements.Message,
			RowNumber: complements.Row,
		})
	}
	return result, nil
}

// validateDocument checks a single building document.
func validateDocument(path string) (*validation.ValidationResult, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result := validation.ValidateXML(doc)
	for _, finding := range validation.ValidateXMLComplements(doc).Errors {
		result.Add(finding)
	}
	return result, nil
}

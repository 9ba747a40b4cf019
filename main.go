// =============================================================================
// Survey Address Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   survey-converter process <file>...  - Convert survey files to CSV or XML
//   survey-converter validate <file>    - Report columns and complements
//   survey-converter serve              - Start the HTTP interface
//   survey-converter clean              - Remove expired generated files
//   survey-converter version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, normalization pipeline, writers and HTTP server
//   - pkg/       : File management and output writers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/survey-xml-converter/cmd"
)

func main() {
	cmd.Execute()
}

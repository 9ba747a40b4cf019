// =============================================================================
// Survey Address Converter - Routing Reference Loader
// =============================================================================
//
// Routing spreadsheets map a street code to the routing identifier and the
// locality identifier used by the import system. Each spreadsheet is read
// from its first sheet; the first non-empty row is the header.
//
// EXPECTED COLUMNS (case-insensitive):
//
//   | cod_lograd  | id       | id_localidade |
//   |-------------|----------|---------------|
//   | 2700035341  | 57149008 | 1894644       |
//
// Other columns are ignored. Identifiers that were stored as floats
// ("57149008.0") are cut back to their integer text.
//
// A spreadsheet that does not exist aborts the run: partial routing data
// would silently produce rows without identifiers.
//
// =============================================================================

package reference

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// REFERENCE STRUCTURES
// =============================================================================

// Column names looked up in the header row.
const (
	ColumnKey          = "cod_lograd"
	ColumnRouteID      = "id"
	ColumnLocalidadeID = "id_localidade"
)

// Entry is one routing row.
type Entry struct {
	// Key is the street code exactly as read.
	Key string

	// RouteID is the routing identifier.
	RouteID string

	// LocalidadeID is the locality identifier.
	LocalidadeID string
}

// Table is the concatenation of every loaded spreadsheet.
type Table struct {
	// Entries holds the rows of all sources in load order.
	Entries []Entry

	// Sources lists the files that were loaded.
	Sources []string

	// HasKey is false when no source has the cod_lograd column. The join
	// is skipped in that case. Entries of a source without the column have
	// an empty Key and never match.
	HasKey bool
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.Entries)
}

// =============================================================================
// ERRORS
// =============================================================================

// MissingFileError reports a routing spreadsheet that does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("reference file not found: %s", e.Path)
}

// IsMissingFile reports whether err is or wraps a MissingFileError.
func IsMissingFile(err error) bool {
	var target *MissingFileError
	return errors.As(err, &target)
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// Load reads every file in dir and concatenates them.
//
// PARAMETERS:
//   - dir: The reference directory.
//   - files: Spreadsheet names inside dir.
//
// RETURNS:
//   - The combined table.
//   - A *MissingFileError if any file is absent, or a read error.
func Load(dir string, files []string) (*Table, error) {
	paths := make([]string, len(files))
	for i, name := range files {
		paths[i] = filepath.Join(dir, name)
		if _, err := os.Stat(paths[i]); os.IsNotExist(err) {
			return nil, &MissingFileError{Path: paths[i]}
		}
	}

	combined := &Table{}
	for _, path := range paths {
		part, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		combined.Entries = append(combined.Entries, part.Entries...)
		combined.Sources = append(combined.Sources, path)
		combined.HasKey = combined.HasKey || part.HasKey
	}

	return combined, nil
}

// LoadFile reads a single routing spreadsheet.
func LoadFile(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("failed to open reference file %s: %w", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("reference file %s has no sheets", path)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", path, err)
	}

	table := &Table{Sources: []string{path}}

	headerIndex := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return table, nil
	}

	positions := columnPositions(rows[headerIndex])
	keyCol, ok := positions[ColumnKey]
	table.HasKey = ok
	routeCol, hasRoute := positions[ColumnRouteID]
	locCol, hasLoc := positions[ColumnLocalidadeID]

	for _, row := range rows[headerIndex+1:] {
		if isRowEmpty(row) {
			continue
		}

		getCell := func(index int, present bool) string {
			if present && index < len(row) {
				return strings.TrimSpace(row[index])
			}
			return ""
		}

		table.Entries = append(table.Entries, Entry{
			Key:          getCell(keyCol, ok),
			RouteID:      trimFloatSuffix(getCell(routeCol, hasRoute)),
			LocalidadeID: trimFloatSuffix(getCell(locCol, hasLoc)),
		})
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// columnPositions maps lowercased header names to their index.
func columnPositions(header []string) map[string]int {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}
	return positions
}

// trimFloatSuffix removes a trailing ".0" left by spreadsheet number cells.
func trimFloatSuffix(value string) string {
	return strings.TrimSuffix(value, ".0")
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

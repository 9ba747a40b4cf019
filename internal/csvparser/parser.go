// =============================================================================
// Survey Address Converter - CSV Parser Module
// =============================================================================
//
// This module reads survey exports into a types.Table. Exports come from
// different tools, so the parser has to discover two things on its own:
//
//   1. The text encoding: probed in the configured order (UTF-8, then
//      ISO-8859-1, then Windows-1252). A UTF-8 byte order mark is dropped.
//   2. The delimiter: taken from the header line. A pipe wins over a
//      semicolon; a comma is the fallback.
//
// PARSING MODES:
//   - Parse:            Load the whole file into memory (default)
//   - StreamingParser:  Read rows one at a time or in fixed-size chunks,
//                       used by the chunked pipeline for large files
//
// CELL VALUES:
//   Cells are kept exactly as read. Whitespace is significant for the
//   complement fields and is handled by the pipeline, not here.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/survey-xml-converter/internal/config"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyFile is returned for a file without a header line.
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrNoRows is returned for a file with a header but no data rows.
	ErrNoRows = errors.New("CSV file has no data rows")

	// ErrUndecodable is returned when no configured encoding can read the file.
	ErrUndecodable = errors.New("could not decode file with any configured encoding")
)

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData holds the parsed content of a CSV file.
type CSVData struct {
	// Headers contains the column headers in order.
	Headers []string

	// Rows contains the data rows as records keyed by header.
	Rows []types.Record

	// SourceFile is the path to the original CSV file.
	SourceFile string

	// Encoding is the encoding that decoded the file.
	Encoding string

	// Delimiter is the detected or configured field separator.
	Delimiter rune
}

// Table returns the parsed content as a table.
func (d *CSVData) Table() types.Table {
	return types.Table{Columns: d.Headers, Rows: d.Rows}
}

// =============================================================================
// MAIN PARSING FUNCTION
// =============================================================================

// Parse reads a CSV file and returns its content.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding probe order.
//
// RETURNS:
//   - A pointer to CSVData containing the parsed content.
//   - ErrEmptyFile, ErrNoRows or ErrUndecodable for unusable input, or a
//     wrapped read error.
func Parse(filePath string, settings config.CSVSettings) (*CSVData, error) {
	p, err := NewStreamingParser(filePath, settings)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	data := &CSVData{
		Headers:    p.Headers(),
		SourceFile: filePath,
		Encoding:   p.Encoding(),
		Delimiter:  p.Delimiter(),
	}

	for p.Next() {
		data.Rows = append(data.Rows, p.Row())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if len(data.Rows) == 0 {
		return nil, ErrNoRows
	}

	return data, nil
}

// ReadHeaders returns the cleaned header row of a file without reading the
// data rows.
func ReadHeaders(filePath string, settings config.CSVSettings) ([]string, error) {
	p, err := NewStreamingParser(filePath, settings)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Headers(), nil
}

// CountRows counts the data rows of a file. Blank lines are not counted.
func CountRows(filePath string, settings config.CSVSettings) (int, error) {
	p, err := NewStreamingParser(filePath, settings)
	if err != nil {
		return 0, err
	}
	defer p.Close()

	count := 0
	for p.Next() {
		count++
	}
	return count, p.Err()
}

// =============================================================================
// ENCODING DETECTION
// =============================================================================

// DetectEncoding returns the first encoding in order that decodes the file.
// Single-byte encodings decode any input, so they only fail when unknown.
func DetectEncoding(filePath string, order []string) (string, error) {
	for _, name := range order {
		enc, err := lookupEncoding(name)
		if err != nil {
			return "", err
		}
		if enc != nil {
			return name, nil
		}

		ok, err := isValidUTF8(filePath)
		if err != nil {
			return "", err
		}
		if ok {
			return name, nil
		}
	}
	return "", ErrUndecodable
}

// lookupEncoding maps a configured name to a decoder. UTF-8 returns a nil
// encoding and is validated separately.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8", "utf-8-sig":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func isValidUTF8(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(io.Discard, transform.NewReader(f, encoding.UTF8Validator))
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	return true, nil
}

// decodingReader wraps r so that it yields UTF-8 without a byte order mark.
func decodingReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// =============================================================================
// DELIMITER DETECTION
// =============================================================================

// sniffSize bounds how much of the header line is inspected.
const sniffSize = 64 * 1024

// DetectDelimiter picks the delimiter from a header line.
func DetectDelimiter(line string) rune {
	switch {
	case strings.ContainsRune(line, '|'):
		return '|'
	case strings.ContainsRune(line, ';'):
		return ';'
	default:
		return ','
	}
}

// configuredDelimiter returns the forced delimiter, or 0 for auto detection.
func configuredDelimiter(setting string) rune {
	switch setting {
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case ",", "comma":
		return ','
	default:
		return 0
	}
}

// configureReader applies the delimiter and the lenient parsing options.
func configureReader(reader *csv.Reader, delimiter rune) {
	reader.Comma = delimiter

	// Allow variable number of fields per record.
	reader.FieldsPerRecord = -1

	// Allow quotes in unquoted fields.
	reader.LazyQuotes = true
}

// =============================================================================
// HEADER HANDLING
// =============================================================================

// cleanHeaders trims header names, names blank ones, and maps any header that
// matches a known column case-insensitively to its canonical spelling.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = canonicalHeader(header)
	}
	return cleaned
}

var knownColumns = func() map[string]string {
	m := make(map[string]string, len(types.FinalColumns))
	for _, c := range types.FinalColumns {
		m[strings.ToUpper(c)] = c
	}
	return m
}()

func canonicalHeader(header string) string {
	if canonical, ok := knownColumns[strings.ToUpper(header)]; ok {
		return canonical
	}
	return header
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads a CSV file row by row without loading it into memory.
//
// USAGE:
//
//	parser, err := csvparser.NewStreamingParser(path, settings)
//	if err != nil {
//	    return err
//	}
//	defer parser.Close()
//
//	for {
//	    chunk, err := parser.ReadChunk(50000)
//	    if err == io.EOF {
//	        break
//	    }
//	    // process chunk
//	}
type StreamingParser struct {
	file       *os.File
	reader     *csv.Reader
	headers    []string
	currentRow types.Record
	rowNumber  int
	err        error
	encoding   string
	delimiter  rune
}

// NewStreamingParser opens a file, detects its encoding and delimiter and
// reads the header row.
func NewStreamingParser(filePath string, settings config.CSVSettings) (*StreamingParser, error) {
	order := settings.Encodings
	if len(order) == 0 {
		order = config.Default().CSV.Encodings
	}

	encName, err := DetectEncoding(filePath, order)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	decoded, err := decodingReader(file, encName)
	if err != nil {
		file.Close()
		return nil, err
	}

	buffered := bufio.NewReaderSize(decoded, sniffSize)
	delimiter := configuredDelimiter(settings.Delimiter)
	if delimiter == 0 {
		delimiter, err = sniffDelimiter(buffered)
		if err != nil {
			file.Close()
			return nil, err
		}
	}

	reader := csv.NewReader(buffered)
	configureReader(reader, delimiter)

	p := &StreamingParser{
		file:      file,
		reader:    reader,
		encoding:  encName,
		delimiter: delimiter,
	}

	if err := p.readHeaders(); err != nil {
		file.Close()
		return nil, err
	}

	return p, nil
}

// sniffDelimiter inspects the first line without consuming it.
func sniffDelimiter(r *bufio.Reader) (rune, error) {
	peek, _ := r.Peek(sniffSize)
	if len(peek) == 0 {
		return 0, ErrEmptyFile
	}
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	return DetectDelimiter(string(peek)), nil
}

// readHeaders reads the header row.
func (p *StreamingParser) readHeaders() error {
	for {
		row, err := p.reader.Read()
		if err == io.EOF {
			return ErrEmptyFile
		}
		if err != nil {
			return fmt.Errorf("error reading header row: %w", err)
		}
		p.rowNumber++
		if isRowEmpty(row) {
			continue
		}
		p.headers = cleanHeaders(row)
		return nil
	}
}

// Next advances to the next non-empty row.
// Returns true if a row is available, false at end of file or on error.
func (p *StreamingParser) Next() bool {
	if p.err != nil {
		return false
	}

	for {
		row, err := p.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber+1, err)
			return false
		}
		p.rowNumber++

		if isRowEmpty(row) {
			continue
		}

		record := make(types.Record, len(p.headers))
		for i, header := range p.headers {
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		p.currentRow = record
		return true
	}
}

// ReadChunk returns up to n rows. It returns io.EOF once no rows remain.
func (p *StreamingParser) ReadChunk(n int) (types.Table, error) {
	chunk := types.Table{Columns: p.headers}
	for len(chunk.Rows) < n && p.Next() {
		chunk.Rows = append(chunk.Rows, p.currentRow)
	}
	if err := p.Err(); err != nil {
		return types.Table{}, err
	}
	if len(chunk.Rows) == 0 {
		return types.Table{}, io.EOF
	}
	return chunk, nil
}

// Row returns the current row.
func (p *StreamingParser) Row() types.Record {
	return p.currentRow
}

// Headers returns the column headers.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// Encoding returns the encoding used to decode the file.
func (p *StreamingParser) Encoding() string {
	return p.encoding
}

// Delimiter returns the field separator in use.
func (p *StreamingParser) Delimiter() rune {
	return p.delimiter
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file.
func (p *StreamingParser) Close() error {
	return p.file.Close()
}

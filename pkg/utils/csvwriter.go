package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// OutputDelimiter separates fields in generated CSV files.
const OutputDelimiter = ';'

// WriteCSV writes t to path as UTF-8 with a byte order mark, ';' separated,
// with every field quoted. The file is removed if writing fails.
func WriteCSV(path string, t types.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteCSVTo(f, t); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// WriteCSVTo writes t to w in the same format as WriteCSV.
func WriteCSVTo(w io.Writer, t types.Table) error {
	encoded := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	buf := bufio.NewWriter(encoded)

	if err := writeQuotedRecord(buf, t.Columns); err != nil {
		return err
	}

	fields := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			fields[i] = row[col]
		}
		if err := writeQuotedRecord(buf, fields); err != nil {
			return err
		}
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := encoded.Close(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// writeQuotedRecord writes one line with every field in double quotes.
// Embedded quotes are doubled.
func writeQuotedRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			w.WriteRune(OutputDelimiter)
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	_, err := w.WriteString("\r\n")
	if err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

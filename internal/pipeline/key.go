package pipeline

import (
	"strings"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// CompositeKey joins values with "-", collapses repeated separators and
// trims separators from both ends.
func CompositeKey(values ...string) string {
	joined := strings.Join(values, "-")

	var b strings.Builder
	b.Grow(len(joined))
	prevDash := false
	for _, r := range joined {
		if r == '-' {
			if prevDash {
				continue
			}
			prevDash = true
		} else {
			prevDash = false
		}
		b.WriteRune(r)
	}

	return strings.Trim(b.String(), "-")
}

// BuildKeys writes the composite key of every row to CHAVE LOG. The key
// fields must already be normalized.
func BuildKeys(t types.Table) types.Table {
	out := types.Table{Columns: t.WithColumns(types.ColChaveLog), Rows: make([]types.Record, len(t.Rows))}
	values := make([]string, len(KeyColumns))
	for i, row := range t.Rows {
		next := row.Clone()
		for j, col := range KeyColumns {
			values[j] = row[col]
		}
		next[types.ColChaveLog] = CompositeKey(values...)
		out.Rows[i] = next
	}
	return out
}

package pipeline

import (
	"github.com/ginjaninja78/survey-xml-converter/internal/reference"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// Joiner attaches routing and locality identifiers to rows by street code.
// It is built once per run and shared read-only by every chunk.
type Joiner struct {
	index   map[string]reference.Entry
	enabled bool
}

// NewJoiner indexes the reference table by normalized street code. The first
// entry wins when a code appears more than once, so the join never
// multiplies rows. Entries with an empty code are not indexed.
func NewJoiner(ref *reference.Table) *Joiner {
	j := &Joiner{index: make(map[string]reference.Entry)}
	if ref == nil || !ref.HasKey {
		return j
	}

	j.enabled = true
	for _, entry := range ref.Entries {
		key := NormalizeStreetCode(entry.Key)
		if key == "" {
			continue
		}
		if _, exists := j.index[key]; !exists {
			j.index[key] = entry
		}
	}
	return j
}

// Enabled reports whether the reference side has a join column.
func (j *Joiner) Enabled() bool {
	return j.enabled
}

// Size returns the number of distinct street codes indexed.
func (j *Joiner) Size() int {
	return len(j.index)
}

// Join fills ID_ROTEIRO and ID_LOCALIDADE. Every row is kept; rows without a
// match get empty identifiers. When either side lacks its join column both
// identifiers are set to "" for every row.
func (j *Joiner) Join(t types.Table) types.Table {
	out := types.Table{
		Columns: t.WithColumns(types.ColIDRoteiro, types.ColIDLocalidade),
		Rows:    make([]types.Record, len(t.Rows)),
	}
	active := j.enabled && t.HasColumn(types.ColCodLogradouro)

	for i, row := range t.Rows {
		next := row.Clone()
		next[types.ColIDRoteiro] = ""
		next[types.ColIDLocalidade] = ""
		if active {
			if entry, ok := j.index[row[types.ColCodLogradouro]]; ok {
				next[types.ColIDRoteiro] = entry.RouteID
				next[types.ColIDLocalidade] = entry.LocalidadeID
			}
		}
		out.Rows[i] = next
	}
	return out
}

// Matched counts rows carrying a routing identifier.
func Matched(t types.Table) int {
	n := 0
	for _, row := range t.Rows {
		if row[types.ColIDRoteiro] != "" {
			n++
		}
	}
	return n
}

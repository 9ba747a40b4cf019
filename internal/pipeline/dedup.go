package pipeline

import (
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// DedupState remembers the survey codes already emitted.
type DedupState struct {
	seen map[string]struct{}
}

// NewDedupState returns an empty state.
func NewDedupState() *DedupState {
	return &DedupState{seen: make(map[string]struct{})}
}

// Dedup drops rows whose COD_SURVEY was already seen, keeping the first
// occurrence and the order of the survivors. An empty code is a value like
// any other. Tables without the column are returned unchanged.
func Dedup(t types.Table, state *DedupState) types.Table {
	if !t.HasColumn(types.ColCodSurvey) {
		return t
	}
	if state == nil {
		state = NewDedupState()
	}

	out := types.Table{Columns: t.Columns, Rows: make([]types.Record, 0, len(t.Rows))}
	for _, row := range t.Rows {
		code := row[types.ColCodSurvey]
		if _, dup := state.seen[code]; dup {
			continue
		}
		state.seen[code] = struct{}{}
		out.Rows = append(out.Rows, row)
	}
	return out
}

package pipeline

import (
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// textReplacements rewrites literal null and boolean spellings left by
// upstream exports.
var textReplacements = map[string]string{
	"NaN":   "",
	"nan":   "",
	"None":  "",
	"null":  "",
	"True":  types.FlagTrue,
	"False": types.FlagFalse,
}

// Finalize projects every row onto the fixed output column order. Missing
// columns become empty, working columns are dropped and literal null or
// boolean spellings are rewritten.
func Finalize(t types.Table) types.Table {
	out := types.Table{
		Columns: append([]string(nil), types.FinalColumns...),
		Rows:    make([]types.Record, len(t.Rows)),
	}
	for i, row := range t.Rows {
		next := make(types.Record, len(types.FinalColumns))
		for _, col := range types.FinalColumns {
			value := row[col]
			if replacement, ok := textReplacements[value]; ok {
				value = replacement
			}
			next[col] = value
		}
		out.Rows[i] = next
	}
	return out
}

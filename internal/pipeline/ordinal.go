package pipeline

import (
	"strconv"
	"strings"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// OrdinalState holds the running count of every (key, prefix) group. Sharing
// one state across calls continues the numbering.
type OrdinalState struct {
	counts map[string]int
}

// NewOrdinalState returns an empty state.
func NewOrdinalState() *OrdinalState {
	return &OrdinalState{counts: make(map[string]int)}
}

// next increments and returns the count of a group.
func (s *OrdinalState) next(key, prefix string) int {
	group := key + "\x00" + prefix
	s.counts[group]++
	return s.counts[group]
}

// Groups returns the number of distinct groups seen so far.
func (s *OrdinalState) Groups() int {
	return len(s.counts)
}

// Prefix returns the first two characters of a normalized complement, or ""
// when it is shorter than two characters.
func Prefix(normalized string) string {
	runes := []rune(normalized)
	if len(runes) < 2 {
		return ""
	}
	return string(runes[:2])
}

// Ordinals numbers the rows of every (CHAVE LOG, prefix) group 1..N in input
// order and records the working copies of COMPLEMENTO3. Rows without a valid
// prefix get ordinal 0 and an empty result. Rows keep their input order.
//
// Columns written: COMPLEMENTO3_ORIGINAL, COMPLEMENTO3_TRATADO, ORDEM,
// Resultado.
func Ordinals(t types.Table, state *OrdinalState) types.Table {
	if state == nil {
		state = NewOrdinalState()
	}

	out := types.Table{
		Columns: t.WithColumns(types.ColComplemento3Orig, types.ColComplemento3Tratado, types.ColOrdem, types.ColResultadoBruto),
		Rows:    make([]types.Record, len(t.Rows)),
	}

	for i, row := range t.Rows {
		next := row.Clone()
		original := row[types.ColComplemento3]
		normalized := normalizeComplement(original)
		next[types.ColComplemento3Orig] = original
		next[types.ColComplemento3Tratado] = normalized

		prefix := Prefix(normalized)
		if prefix == "" {
			next[types.ColOrdem] = "0"
			next[types.ColResultadoBruto] = ""
		} else {
			ordinal := state.next(row[types.ColChaveLog], prefix)
			next[types.ColOrdem] = strconv.Itoa(ordinal)
			next[types.ColResultadoBruto] = prefix + " " + strconv.Itoa(ordinal)
		}
		out.Rows[i] = next
	}

	return out
}

// Zones derives the zone code from the state, the locality abbreviation, the
// station and the cell number (first space-separated token of CELULA, kept in
// the working column Nº CELULA). The code is left empty when the state or the
// abbreviation is missing.
func Zones(t types.Table) types.Table {
	out := types.Table{Columns: t.WithColumns(types.ColNumCelula, types.ColCodZona), Rows: make([]types.Record, len(t.Rows))}
	for i, row := range t.Rows {
		next := row.Clone()
		cell := strings.SplitN(row[types.ColCelula], " ", 2)[0]
		next[types.ColNumCelula] = cell

		uf, abbrev := row[types.ColUF], row[types.ColLocalidadeAbrev]
		if uf == "" || abbrev == "" {
			next[types.ColCodZona] = ""
		} else {
			next[types.ColCodZona] = uf + "-" + abbrev + "-" + row[types.ColEstacao] + "-CEOS-" + cell
		}
		out.Rows[i] = next
	}
	return out
}

// Compare writes RESULTADO (the ordinal result without spaces) and
// COMPARATIVO, which tells whether it equals the normalized complement 3.
func Compare(t types.Table) types.Table {
	out := types.Table{Columns: t.WithColumns(types.ColResultado, types.ColComparativo), Rows: make([]types.Record, len(t.Rows))}
	for i, row := range t.Rows {
		next := row.Clone()
		result := deriver.Transform(types.ColResultado, row[types.ColResultadoBruto])
		next[types.ColResultado] = result
		if result == row[types.ColComplemento3Tratado] {
			next[types.ColComparativo] = types.FlagTrue
		} else {
			next[types.ColComparativo] = types.FlagFalse
		}
		out.Rows[i] = next
	}
	return out
}

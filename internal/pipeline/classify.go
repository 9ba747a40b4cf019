package pipeline

import (
	"math"
	"strconv"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// Thresholds are the upper bounds used by the classifier.
type Thresholds struct {
	// Complement is the largest acceptable complement 3 number.
	Complement int

	// Ordinal is the largest acceptable ordinal.
	Ordinal int
}

// DefaultThresholds returns 10 for both bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{Complement: 10, Ordinal: 10}
}

// NumericArgument returns the first run of digits in s, or 0 when there is
// none. Runs too long for an int saturate at math.MaxInt.
func NumericArgument(s string) int {
	start := -1
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			return atoiSaturating(s[start:i])
		}
	}
	if start >= 0 {
		return atoiSaturating(s[start:])
	}
	return 0
}

func atoiSaturating(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// Label applies the classification rules in order; the first match wins.
func Label(ordinal, number int, th Thresholds) string {
	switch {
	case ordinal == 0:
		return types.LabelNoPrefix
	case number == 0:
		return types.LabelComplementEmpty
	case number > th.Complement:
		return types.LabelComplementTooHigh
	case ordinal > th.Ordinal:
		return types.LabelOrdinalTooHigh
	default:
		return types.LabelOK
	}
}

// Classify writes the complement 3 number and the validation label of every
// row. It expects ORDEM and COMPLEMENTO3_TRATADO from Ordinals.
func Classify(t types.Table, th Thresholds) types.Table {
	out := types.Table{Columns: t.WithColumns(types.ColArgumento3, types.ColValidacao), Rows: make([]types.Record, len(t.Rows))}
	for i, row := range t.Rows {
		next := row.Clone()
		number := NumericArgument(row[types.ColComplemento3Tratado])
		ordinal, _ := strconv.Atoi(row[types.ColOrdem])
		next[types.ColArgumento3] = strconv.Itoa(number)
		next[types.ColValidacao] = Label(ordinal, number, th)
		out.Rows[i] = next
	}
	return out
}

// Restore puts the untouched complement 3 value back into COMPLEMENTO3.
func Restore(t types.Table) types.Table {
	out := types.Table{Columns: t.Columns, Rows: make([]types.Record, len(t.Rows))}
	for i, row := range t.Rows {
		next := row.Clone()
		if original, ok := row[types.ColComplemento3Orig]; ok {
			next[types.ColComplemento3] = original
		}
		out.Rows[i] = next
	}
	return out
}

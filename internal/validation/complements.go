package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// Complement validation messages.
const (
	msgComplementRequired = "COMPLEMENTO deve estar preenchido"
	msgComplement2Needed  = "Para gerar XML com três complementos a coluna COMPLEMENTO2 deve ser preenchida"
	msgNoValidRecords     = "Nenhum registro válido encontrado"
)

// ComplementReport summarizes the complement combinations of a table.
type ComplementReport struct {
	// Valid is false when a column is missing or a row has an invalid
	// combination.
	Valid bool `json:"valid"`

	// Message is the first error, or the per-combination counts.
	Message string `json:"message"`

	// Row is the 1-based row of the first error, 0 when valid.
	Row int `json:"row,omitempty"`

	// One, Two and Three count rows with 1, 1+2 and 1+2+3 complements.
	One   int `json:"one"`
	Two   int `json:"two"`
	Three int `json:"three"`
}

// ValidateComplements checks that every row fills COMPLEMENTO and uses one
// of the combinations 1, 1+2 or 1+2+3. The first error is reported; when
// there is none the message counts the rows of each combination.
func ValidateComplements(t types.Table) ComplementReport {
	for _, col := range []string{types.ColComplemento, types.ColComplemento2, types.ColComplemento3} {
		if !t.HasColumn(col) {
			return ComplementReport{Message: fmt.Sprintf("Coluna %s não encontrada", col)}
		}
	}

	var report ComplementReport
	for i, row := range t.Rows {
		c1 := strings.TrimSpace(row[types.ColComplemento]) != ""
		c2 := strings.TrimSpace(row[types.ColComplemento2]) != ""
		c3 := strings.TrimSpace(row[types.ColComplemento3]) != ""

		switch {
		case !c1:
			return ComplementReport{Message: msgComplementRequired, Row: i + 1}
		case !c2 && !c3:
			report.One++
		case c2 && !c3:
			report.Two++
		case c2 && c3:
			report.Three++
		default:
			return ComplementReport{Message: msgComplement2Needed, Row: i + 1}
		}
	}

	report.Valid = true
	report.Message = countsMessage(report.One, report.Two, report.Three)
	return report
}

func countsMessage(one, two, three int) string {
	var parts []string
	if one > 0 {
		parts = append(parts, fmt.Sprintf("%d registros com 1 complemento", one))
	}
	if two > 0 {
		if len(parts) == 0 {
			parts = append(parts, fmt.Sprintf("%d registros com 2 complementos", two))
		} else {
			parts = append(parts, fmt.Sprintf("%d com 2 complementos", two))
		}
	}
	if three > 0 {
		if len(parts) == 0 {
			parts = append(parts, fmt.Sprintf("%d registros com 3 complementos", three))
		} else {
			parts = append(parts, fmt.Sprintf("%d com 3 complementos", three))
		}
	}

	switch len(parts) {
	case 0:
		return msgNoValidRecords
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " e " + parts[1]
	default:
		return parts[0] + ", " + parts[1] + " e " + parts[2]
	}
}

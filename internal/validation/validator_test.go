package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

func TestValidationResultCounters(t *testing.T) {
	r := NewResult()
	r.addWarning("a", "rule", "first")
	assert.True(t, r.IsValid)

	r.addError("b", "rule", "second")

	assert.False(t, r.IsValid)
	assert.Equal(t, 1, r.ErrorCount)
	assert.Equal(t, 1, r.WarningCount)
	assert.Equal(t, []string{"second"}, r.Messages(SeverityError))
	assert.Equal(t, []string{"first"}, r.Messages(SeverityWarning))
}

func TestValidationErrorString(t *testing.T) {
	err := &ValidationError{Severity: SeverityWarning, Field: "CEP", Value: "12", Message: "too short", RowNumber: 3}
	assert.Equal(t, "[WARNING] Row 3, Field 'CEP': too short (value: '12')", err.Error())

	bare := &ValidationError{Severity: SeverityError, Message: "broken"}
	assert.Equal(t, "[ERROR] broken", bare.Error())
}

func TestFormatErrorsAndWriteLog(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	errs := []*ValidationError{{Severity: SeverityError, Message: "one"}, {Severity: SeverityWarning, Message: "two"}}
	formatted := FormatErrors(errs)
	assert.Contains(t, formatted, "2 finding(s)")
	assert.Contains(t, formatted, "1. [ERROR] one")

	path := filepath.Join(t.TempDir(), "errors.log")
	require.NoError(t, WriteErrorLog(errs, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2. [WARNING] two")
}

func TestValidateColumns(t *testing.T) {
	headers := append([]string(nil), types.FinalColumns...)
	headers[1] = " celula "
	headers = append(headers[:5], headers[6:]...)
	headers = append(headers, "OBSERVACAO")

	report := ValidateColumns(headers)

	assert.False(t, report.Valid)
	assert.Equal(t, []string{types.FinalColumns[5]}, report.Missing)
	assert.Equal(t, []string{"OBSERVACAO"}, report.Extra)
	assert.Equal(t, len(types.FinalColumns), report.Total)
	assert.Equal(t, len(types.FinalColumns)-1, report.Found)

	var colErr *ColumnError
	require.ErrorAs(t, report.Err(), &colErr)
	assert.Equal(t, report.Missing, colErr.Missing)
}

func TestValidateColumnsComplete(t *testing.T) {
	report := ValidateColumns(types.FinalColumns)

	assert.True(t, report.Valid)
	assert.Empty(t, report.Missing)
	assert.NoError(t, report.Err())
}

func complementTable(rows ...[3]string) types.Table {
	t := types.Table{Columns: []string{types.ColComplemento, types.ColComplemento2, types.ColComplemento3}}
	for _, r := range rows {
		t.Rows = append(t.Rows, types.Record{
			types.ColComplemento:  r[0],
			types.ColComplemento2: r[1],
			types.ColComplemento3: r[2],
		})
	}
	return t
}

func TestValidateComplements(t *testing.T) {
	tests := []struct {
		name  string
		table types.Table
		valid bool
		msg   string
		row   int
	}{
		{
			name:  "one and two",
			table: complementTable([3]string{"LT5", "", ""}, [3]string{"QD1", "LT2", ""}, [3]string{"QD1", "LT3", ""}),
			valid: true,
			msg:   "1 registros com 1 complemento e 2 com 2 complementos",
		},
		{
			name:  "all three kinds",
			table: complementTable([3]string{"LT5", "", ""}, [3]string{"QD1", "LT2", ""}, [3]string{"QD1", "LT2", "CA1"}),
			valid: true,
			msg:   "1 registros com 1 complemento, 1 com 2 complementos e 1 com 3 complementos",
		},
		{
			name:  "only three",
			table: complementTable([3]string{"QD1", "LT2", "CA1"}),
			valid: true,
			msg:   "1 registros com 3 complementos",
		},
		{
			name:  "empty table",
			table: complementTable(),
			valid: true,
			msg:   "Nenhum registro válido encontrado",
		},
		{
			name:  "missing first",
			table: complementTable([3]string{"LT5", "", ""}, [3]string{" ", "LT2", ""}),
			msg:   "COMPLEMENTO deve estar preenchido",
			row:   2,
		},
		{
			name:  "third without second",
			table: complementTable([3]string{"QD1", "", "CA1"}),
			msg:   "Para gerar XML com três complementos a coluna COMPLEMENTO2 deve ser preenchida",
			row:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ValidateComplements(tt.table)
			assert.Equal(t, tt.valid, report.Valid)
			assert.Equal(t, tt.msg, report.Message)
			assert.Equal(t, tt.row, report.Row)
		})
	}
}

func TestValidateComplementsMissingColumn(t *testing.T) {
	table := types.Table{Columns: []string{types.ColComplemento, types.ColComplemento2}}

	report := ValidateComplements(table)

	assert.False(t, report.Valid)
	assert.Equal(t, "Coluna COMPLEMENTO3 não encontrada", report.Message)
}

func TestValidateUpload(t *testing.T) {
	assert.True(t, ValidateUpload("enderecos.CSV", 10, 0).IsValid)

	r := ValidateUpload("", 10, 0)
	assert.Equal(t, []string{"Nenhum arquivo selecionado"}, r.Messages(SeverityError))

	r = ValidateUpload("enderecos.xlsx", 10, 0)
	assert.Equal(t, []string{"Tipo de arquivo não permitido. Use: csv"}, r.Messages(SeverityError))

	r = ValidateUpload("enderecos.csv", 2048, 1024)
	assert.Equal(t, []string{"Arquivo muito grande. Máximo: 1.00 KB"}, r.Messages(SeverityError))

	r = ValidateUpload("enderecos.csv", 0, 0)
	assert.False(t, r.IsValid)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512.00 B", FormatSize(512))
	assert.Equal(t, "1.50 KB", FormatSize(1536))
	assert.Equal(t, "2.00 GB", FormatSize(DefaultMaxUploadSize))
}

func TestValidateRows(t *testing.T) {
	table := types.Table{
		Columns: []string{types.ColCEP, types.ColLatitude, types.ColLongitude},
		Rows: []types.Record{
			{types.ColCEP: "74000000", types.ColLatitude: "-16,68", types.ColLongitude: "-49.26"},
			{types.ColCEP: "7400", types.ColLatitude: "norte", types.ColLongitude: ""},
			{types.ColCEP: "7400-000", types.ColLatitude: "", types.ColLongitude: "1"},
		},
	}

	result := ValidateRows(table, DefaultFieldRules)

	assert.True(t, result.IsValid)
	assert.Equal(t, 3, result.RowsValidated)
	require.Equal(t, 3, result.WarningCount)
	assert.Equal(t, 2, result.Errors[0].RowNumber)
	assert.Equal(t, types.ColCEP, result.Errors[0].Field)
	assert.True(t, strings.HasPrefix(result.Errors[0].Message, "Value must have exactly 8"))
	assert.Equal(t, types.ColLatitude, result.Errors[1].Field)
	assert.Equal(t, 3, result.Errors[2].RowNumber)
}

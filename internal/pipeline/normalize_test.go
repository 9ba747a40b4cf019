package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

func TestNormalizeCEP(t *testing.T) {
	tests := map[string]string{
		"71.065-071 ":  "71065071",
		"1065071":      "01065071",
		"740000001234": "74000000",
		"":             "",
		"abc":          "",
		" 5 ":          "00000005",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCEP(in), "input %q", in)
	}
}

func TestNormalizeStreetCode(t *testing.T) {
	assert.Equal(t, "2700035341", NormalizeStreetCode("2700035341"))
	assert.Equal(t, "2700035341", NormalizeStreetCode(" 27.000.353-41 "))
	assert.Equal(t, "1234567890", NormalizeStreetCode("123456789012"))
	assert.Equal(t, "", NormalizeStreetCode("S/N"))
}

func TestNormalizeTable(t *testing.T) {
	in := tableOf(surveyRow("X1", map[string]string{
		"CEP":                  "71.065-071 ",
		"COD_LOGRADOURO":       "27000353410000",
		"ESTACAO_ABASTECEDORA": " ETGR ",
		"COMPLEMENTO":          " QD 1 ",
		"COMPLEMENTO3":         " ca1 ",
	}))

	out := Normalize(in)

	row := out.Rows[0]
	assert.Equal(t, "71065071", row["CEP"])
	assert.Equal(t, "2700035341", row["COD_LOGRADOURO"])
	assert.Equal(t, "ETGR", row["ESTACAO_ABASTECEDORA"])
	assert.Equal(t, "QD 1", row["COMPLEMENTO"])
	assert.Equal(t, " ca1 ", row["COMPLEMENTO3"], "complement 3 is untouched")
	assert.Equal(t, " ETGR ", in.Rows[0]["ESTACAO_ABASTECEDORA"], "input must not be modified")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := tableOf(
		surveyRow("X1", map[string]string{"CEP": "71.065-071", "COD_LOGRADOURO": "A-12/3"}),
		surveyRow("X2", map[string]string{"CEP": "", "LOGRADOURO": "  RUA  "}),
	)

	once := Normalize(in)
	twice := Normalize(once)

	assert.Equal(t, once, twice)
}

func TestNormalizeAddsMissingKeyColumns(t *testing.T) {
	in := types.Table{Columns: []string{"CEP"}, Rows: []types.Record{{"CEP": "1"}}}

	out := Normalize(in)

	for _, col := range KeyColumns {
		require.True(t, out.HasColumn(col), col)
		assert.Equal(t, "", out.Rows[0][col])
	}
	assert.Equal(t, "00000001", out.Rows[0]["CEP"])
}

func TestDerivationRules(t *testing.T) {
	deriv := MustTransformer(DerivationRules)

	assert.Equal(t, "CA 12", deriv.Transform(types.ColComplemento3Tratado, "  ca 12 "))
	assert.Equal(t, "CA12", deriv.Transform(types.ColResultado, "CA 12"))
	assert.Equal(t, "", deriv.Transform(types.ColResultado, ""))
	assert.Equal(t, "CA1", normalizeComplement(" ca1"))
}

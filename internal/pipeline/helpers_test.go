package pipeline

import (
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// surveyRow returns a complete input row; overrides replace single fields.
func surveyRow(survey string, overrides map[string]string) types.Record {
	row := types.Record{
		"CELULA":               "68 NORTE",
		"ESTACAO_ABASTECEDORA": "ETGR",
		"UF":                   "GO",
		"MUNICIPIO":            "GOIANIA",
		"LOCALIDADE":           "GOIANIA",
		"LOCALIDADE_ABREV":     "GNA",
		"LOGRADOURO":           "RUA 1",
		"COD_LOGRADOURO":       "2700035341",
		"NUM_FACHADA":          "10",
		"COMPLEMENTO":          "QD1",
		"COMPLEMENTO2":         "LT2",
		"COMPLEMENTO3":         "CA1",
		"CEP":                  "74000000",
		"BAIRRO":               "CENTRO",
		"COD_SURVEY":           survey,
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

// tableOf builds a table whose columns are the union of the row keys plus
// the final column list.
func tableOf(rows ...types.Record) types.Table {
	t := types.Table{Columns: append([]string(nil), types.FinalColumns...)}
	for _, r := range rows {
		for k := range r {
			if !t.HasColumn(k) {
				t.Columns = append(t.Columns, k)
			}
		}
	}
	t.Rows = rows
	return t
}

func column(t types.Table, name string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

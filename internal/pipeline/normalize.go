package pipeline

import (
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// KeyColumns are the fields that make up the composite grouping key, in key
// order.
var KeyColumns = []string{
	types.ColEstacao,
	types.ColLocalidade,
	types.ColLogradouro,
	types.ColComplemento,
	types.ColComplemento2,
}

// NormalizationRules clean the postal code, the street code and the key
// fields before any derivation.
var NormalizationRules = []Rule{
	{Field: types.ColCEP, Actions: []Action{
		{Type: "trim"},
		{Type: "extract_digits"},
		{Type: "truncate", Value: "8"},
		{Type: "pad_zeros_to_length", Value: "8"},
	}},
	{Field: types.ColCodLogradouro, Actions: streetCodeActions},
	{Field: types.ColEstacao, Actions: []Action{{Type: "trim"}}},
	{Field: types.ColLocalidade, Actions: []Action{{Type: "trim"}}},
	{Field: types.ColLogradouro, Actions: []Action{{Type: "trim"}}},
	{Field: types.ColComplemento, Actions: []Action{{Type: "trim"}}},
	{Field: types.ColComplemento2, Actions: []Action{{Type: "trim"}}},
}

var streetCodeActions = []Action{
	{Type: "trim"},
	{Type: "extract_digits"},
	{Type: "truncate", Value: "10"},
}

var normalizer = MustTransformer(NormalizationRules)

// Normalize returns a copy of t with the postal code, the street code and the
// key fields cleaned. Key columns missing from the input are added empty.
// Applying it twice gives the same table as applying it once.
func Normalize(t types.Table) types.Table {
	out := normalizer.Apply(t)
	out.Columns = out.WithColumns(KeyColumns...)
	for _, row := range out.Rows {
		for _, col := range KeyColumns {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}
	}
	return out
}

// NormalizeStreetCode cleans a street code the same way Normalize cleans the
// COD_LOGRADOURO column.
func NormalizeStreetCode(code string) string {
	return normalizer.Transform(types.ColCodLogradouro, code)
}

// NormalizeCEP cleans a postal code the same way Normalize cleans CEP.
func NormalizeCEP(cep string) string {
	return normalizer.Transform(types.ColCEP, cep)
}

// DerivationRules compute the working columns derived from COMPLEMENTO3:
// COMPLEMENTO3_TRATADO is the trimmed, uppercased complement and RESULTADO is
// the ordinal result without spaces.
var DerivationRules = []Rule{
	{Field: types.ColComplemento3Tratado, Actions: []Action{{Type: "trim"}, {Type: "uppercase"}}},
	{Field: types.ColResultado, Actions: []Action{{Type: "remove_spaces"}}},
}

var deriver = MustTransformer(DerivationRules)

// normalizeComplement is the working form of a complement.
func normalizeComplement(value string) string {
	return deriver.Transform(types.ColComplemento3Tratado, value)
}

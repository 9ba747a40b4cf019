package xmlwriter

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/survey-xml-converter/internal/complement"
	"github.com/ginjaninja78/survey-xml-converter/internal/config"
	"github.com/ginjaninja78/survey-xml-converter/internal/pipeline"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// Root and block element names.
const (
	RootElement    = "edificio"
	AddressElement = "enderecoEdificio"
	TecnicoElement = "tecnico"
	EmpresaElement = "empresa"
)

// Destinacao values.
const (
	DestinacaoResidencia = "RESIDENCIA"
	DestinacaoComercio   = "COMERCIO"
	DestinacaoMista      = "MISTA"
)

// timestampLayout is YYYYMMDDhhmmss.
const timestampLayout = "20060102150405"

// decimalComma turns "-16,6869" into "-16.6869".
var decimalComma = pipeline.Action{Type: "replace", Find: ",", Value: "."}

// DefaultRules returns the rules that fill empty fields of a row with the
// configured fallbacks.
func DefaultRules(d config.XMLDefaults) []pipeline.Rule {
	fallback := func(column, value string) pipeline.Rule {
		return pipeline.Rule{Field: column, Actions: []pipeline.Action{{Type: "if_empty_use_default", Value: value}}}
	}
	return []pipeline.Rule{
		fallback(types.ColCodZona, d.CodZona),
		fallback(types.ColLocalidade, d.Localidade),
		fallback(types.ColIDEndereco, d.IDEndereco),
		fallback(types.ColNumFachada, d.NumeroFachada),
		fallback(types.ColCEP, d.CEP),
		fallback(types.ColIDRoteiro, d.IDRoteiro),
		fallback(types.ColIDLocalidade, d.IDLocalidade),
		fallback(types.ColCodLogradouro, d.CodLogradouro),
	}
}

// withDefaults returns a copy of row with the default rules applied.
func withDefaults(row types.Record, d config.XMLDefaults) types.Record {
	rules := DefaultRules(d)
	filled := row.Clone()
	t := pipeline.MustTransformer(rules)
	for _, rule := range rules {
		filled[rule.Field] = t.Transform(rule.Field, row[rule.Field])
	}
	return filled
}

// EdificioOptions controls BuildEdificio.
type EdificioOptions struct {
	// Settings carries the root attributes, fixed metadata and fallbacks.
	Settings config.XMLSettings

	// IncludeComplement3 is false when COMPLEMENTO3 is empty in every row of
	// the table; the third complement block is then never written.
	// Otherwise the block is written for rows with a non-empty RESULTADO.
	IncludeComplement3 bool

	// Now is the generation time written to <data>.
	Now time.Time
}

// BuildEdificio builds the building document for one row.
//
// PARAMETERS:
//   - row: A classified row. The third complement is read from RESULTADO,
//     the per-group renumbered value, and is left out when it is empty.
//   - opts: Settings, the table-wide complement 3 flag and the clock.
//
// RETURNS:
//   - The <edificio> element, ready for Marshal.
//
// Every field falls back to the configured default when the row value is
// empty. Coordinates that are not numbers are left out.
func BuildEdificio(row types.Record, opts EdificioOptions) *XMLElement {
	s := opts.Settings
	d := s.Defaults
	source := row
	row = withDefaults(row, d)

	root := NewElement(RootElement, "")
	root.SetAttr("tipo", s.Tipo)
	root.SetAttr("versao", s.Versao)

	root.Add("gravado", "false")
	root.Add("nEdificio", row[types.ColCodSurvey])

	if x, ok := Coordinate(row[types.ColLongitude]); ok {
		root.Add("coordX", x)
	}
	if y, ok := Coordinate(row[types.ColLatitude]); ok {
		root.Add("coordY", y)
	}

	zone := row[types.ColCodZona]
	localidade := row[types.ColLocalidade]
	root.Add("codigoZona", zone)
	root.Add("nomeZona", zone)
	root.Add("localidade", localidade)

	root.AddElement(buildAddress(row, source, opts, localidade))

	tecnico := NewElement(TecnicoElement, "")
	tecnico.Add("id", s.TecnicoID).Add("nome", s.TecnicoNome)
	root.AddElement(tecnico)

	empresa := NewElement(EmpresaElement, "")
	empresa.Add("id", s.EmpresaID).Add("nome", s.EmpresaNome)
	root.AddElement(empresa)

	root.Add("data", opts.Now.Format(timestampLayout))
	root.Add("totalUCs", totalUnits(row[types.ColQuantidadeUMs], d.TotalUCs))
	root.Add("ocupacao", s.Ocupacao)
	root.Add("numPisos", s.NumPisos)

	destinacao := s.Destinacao
	if s.DeriveDestinacao {
		destinacao = Destinacao(count(row[types.ColUCsResidenciais]), count(row[types.ColUCsComerciais]))
	}
	root.Add("destinacao", destinacao)

	return &root
}

// buildAddress reads the filled row; the street description uses the source
// row so a missing street code is not replaced by the default one.
func buildAddress(row, source types.Record, opts EdificioOptions, localidade string) XMLElement {
	address := NewElement(AddressElement, "")

	address.Add("id", row[types.ColIDEndereco])
	address.Add("logradouro", StreetDescription(source, localidade))
	address.Add("numero_fachada", row[types.ColNumFachada])

	c1 := complement.Decode(row[types.ColComplemento])
	address.Add("id_complemento1", c1.Code).Add("argumento1", c1.Argument)
	c2 := complement.Decode(row[types.ColComplemento2])
	address.Add("id_complemento2", c2.Code).Add("argumento2", c2.Argument)

	if c3 := row[types.ColResultado]; opts.IncludeComplement3 && strings.TrimSpace(c3) != "" {
		p := complement.Decode(c3)
		address.Add("id_complemento3", p.Code).Add("argumento3", p.Argument)
	}

	address.Add("cep", row[types.ColCEP])
	address.Add("bairro", valueOr(row, types.ColBairro, localidade))
	address.Add("id_roteiro", row[types.ColIDRoteiro])
	address.Add("id_localidade", row[types.ColIDLocalidade])
	address.Add("cod_lograd", row[types.ColCodLogradouro])

	return address
}

// StreetDescription joins street, neighborhood, municipality and
// "<locality> - <state>", skipping empty parts, and appends the street code in
// parentheses when there is one.
func StreetDescription(row types.Record, localidade string) string {
	parts := []string{
		row[types.ColLogradouro],
		row[types.ColBairro],
		row[types.ColMunicipio],
		localidade + " - " + row[types.ColUF],
	}

	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	description := strings.Join(kept, ", ")

	if code := row[types.ColCodLogradouro]; code != "" {
		description += " (" + code + ")"
	}
	return description
}

// Coordinate converts a comma-decimal coordinate to dot-decimal. The second
// result is false for empty, non-numeric or non-finite input.
func Coordinate(raw string) (string, bool) {
	f, ok := parseNumber(raw)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// Destinacao derives the building purpose from unit counts: only residential
// units give RESIDENCIA, only commercial units give COMERCIO, anything else
// gives MISTA.
func Destinacao(residential, commercial int) string {
	switch {
	case residential > 0 && commercial == 0:
		return DestinacaoResidencia
	case commercial > 0 && residential == 0:
		return DestinacaoComercio
	default:
		return DestinacaoMista
	}
}

func valueOr(row types.Record, column, fallback string) string {
	if v := row[column]; strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// totalUnits accepts "3" and "3.0"; anything else uses the fallback.
func totalUnits(raw, fallback string) string {
	n, ok := parseCount(raw)
	if !ok {
		return fallback
	}
	return strconv.Itoa(n)
}

func count(raw string) int {
	n, _ := parseCount(raw)
	return n
}

// parseNumber reads a comma- or dot-decimal number. NaN and infinities are
// rejected.
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(pipeline.ApplyTransformation(raw, decimalComma))
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseCount truncates a number to an int. Values outside the int32 range
// are rejected.
func parseCount(raw string) (int, bool) {
	f, ok := parseNumber(raw)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

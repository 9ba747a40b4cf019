package xmlwriter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/survey-xml-converter/internal/config"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

var generatedAt = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func options(includeC3 bool) EdificioOptions {
	return EdificioOptions{
		Settings:           config.Default().XML,
		IncludeComplement3: includeC3,
		Now:                generatedAt,
	}
}

func fullRow() types.Record {
	return types.Record{
		"COD_SURVEY":       "S100",
		"LATITUDE":         "-16,6869",
		"LONGITUDE":        "-49,2648",
		"COD_ZONA":         "GO-GNA-ETGR-CEOS-68",
		"LOCALIDADE":       "GOIANIA",
		"UF":               "GO",
		"MUNICIPIO":        "GOIANIA",
		"BAIRRO":           "CENTRO",
		"LOGRADOURO":       "RUA 1",
		"COD_LOGRADOURO":   "2700035341",
		"ID_ENDERECO":      "555",
		"NUM_FACHADA":      "10",
		"COMPLEMENTO":      "BL12",
		"COMPLEMENTO2":     "LT 3",
		"COMPLEMENTO3":     "CA1",
		"RESULTADO":        "CA1",
		"CEP":              "74000000",
		"ID_ROTEIRO":       "R1",
		"ID_LOCALIDADE":    "L1",
		"QUANTIDADE_UMS":   "4",
		"UCS_RESIDENCIAIS": "4",
		"UCS_COMERCIAIS":   "0",
	}
}

func text(t *testing.T, e *XMLElement, path ...string) string {
	t.Helper()
	v, ok := e.Text(path...)
	require.True(t, ok, "missing %s", strings.Join(path, "/"))
	return v
}

func TestBuildEdificioFullRow(t *testing.T) {
	doc := BuildEdificio(fullRow(), options(true))

	tipo, _ := doc.Attr("tipo")
	versao, _ := doc.Attr("versao")
	assert.Equal(t, "M", tipo)
	assert.Equal(t, "7.9.2", versao)

	assert.Equal(t, "false", text(t, doc, "gravado"))
	assert.Equal(t, "S100", text(t, doc, "nEdificio"))
	assert.Equal(t, "-49.2648", text(t, doc, "coordX"))
	assert.Equal(t, "-16.6869", text(t, doc, "coordY"))
	assert.Equal(t, "GO-GNA-ETGR-CEOS-68", text(t, doc, "codigoZona"))
	assert.Equal(t, "GO-GNA-ETGR-CEOS-68", text(t, doc, "nomeZona"))
	assert.Equal(t, "GOIANIA", text(t, doc, "localidade"))

	assert.Equal(t, "555", text(t, doc, AddressElement, "id"))
	assert.Equal(t, "RUA 1, CENTRO, GOIANIA, GOIANIA - GO (2700035341)", text(t, doc, AddressElement, "logradouro"))
	assert.Equal(t, "10", text(t, doc, AddressElement, "numero_fachada"))
	assert.Equal(t, "16", text(t, doc, AddressElement, "id_complemento1"))
	assert.Equal(t, "12", text(t, doc, AddressElement, "argumento1"))
	assert.Equal(t, "60", text(t, doc, AddressElement, "id_complemento2"))
	assert.Equal(t, "3", text(t, doc, AddressElement, "argumento2"))
	assert.Equal(t, "22", text(t, doc, AddressElement, "id_complemento3"))
	assert.Equal(t, "1", text(t, doc, AddressElement, "argumento3"))
	assert.Equal(t, "74000000", text(t, doc, AddressElement, "cep"))
	assert.Equal(t, "CENTRO", text(t, doc, AddressElement, "bairro"))
	assert.Equal(t, "R1", text(t, doc, AddressElement, "id_roteiro"))
	assert.Equal(t, "L1", text(t, doc, AddressElement, "id_localidade"))
	assert.Equal(t, "2700035341", text(t, doc, AddressElement, "cod_lograd"))

	assert.Equal(t, "1828772688", text(t, doc, TecnicoElement, "id"))
	assert.Equal(t, "NADIA CAROLINE", text(t, doc, TecnicoElement, "nome"))
	assert.Equal(t, "42541126", text(t, doc, EmpresaElement, "id"))
	assert.Equal(t, "TELEMONT", text(t, doc, EmpresaElement, "nome"))

	assert.Equal(t, "20240305140709", text(t, doc, "data"))
	assert.Equal(t, "4", text(t, doc, "totalUCs"))
	assert.Equal(t, "EDIFICACAOCOMPLETA", text(t, doc, "ocupacao"))
	assert.Equal(t, "1", text(t, doc, "numPisos"))
	assert.Equal(t, "COMERCIO", text(t, doc, "destinacao"))
}

func TestBuildEdificioElementOrder(t *testing.T) {
	doc := BuildEdificio(fullRow(), options(true))

	var names []string
	for _, c := range doc.Children {
		names = append(names, c.XMLName.Local)
	}
	assert.Equal(t, []string{
		"gravado", "nEdificio", "coordX", "coordY", "codigoZona", "nomeZona", "localidade",
		AddressElement, TecnicoElement, EmpresaElement,
		"data", "totalUCs", "ocupacao", "numPisos", "destinacao",
	}, names)
}

func TestBuildEdificioSingleComplement(t *testing.T) {
	row := types.Record{"COD_SURVEY": "S1", "COMPLEMENTO": "LT5", "COMPLEMENTO2": "", "COMPLEMENTO3": ""}

	doc := BuildEdificio(row, options(true))

	assert.Equal(t, "60", text(t, doc, AddressElement, "id_complemento1"))
	assert.Equal(t, "5", text(t, doc, AddressElement, "argumento1"))
	assert.Equal(t, "60", text(t, doc, AddressElement, "id_complemento2"))
	assert.Equal(t, "1", text(t, doc, AddressElement, "argumento2"))
	assert.Nil(t, doc.Child(AddressElement).Child("id_complemento3"))
	assert.Nil(t, doc.Child(AddressElement).Child("argumento3"))
}

func TestBuildEdificioComplement3FromResult(t *testing.T) {
	row := fullRow()
	row["COMPLEMENTO3"] = "CA12"
	row["RESULTADO"] = "CA1"

	doc := BuildEdificio(row, options(true))

	assert.Equal(t, "22", text(t, doc, AddressElement, "id_complemento3"))
	assert.Equal(t, "1", text(t, doc, AddressElement, "argumento3"))

	row["COMPLEMENTO3"] = "X"
	row["RESULTADO"] = ""

	doc = BuildEdificio(row, options(true))

	assert.Nil(t, doc.Child(AddressElement).Child("id_complemento3"))
	assert.Nil(t, doc.Child(AddressElement).Child("argumento3"))
}

func TestBuildEdificioComplement3NeedsTableFlag(t *testing.T) {
	doc := BuildEdificio(fullRow(), options(false))

	assert.Nil(t, doc.Child(AddressElement).Child("id_complemento3"))
}

func TestBuildEdificioFallbacks(t *testing.T) {
	doc := BuildEdificio(types.Record{"COD_SURVEY": "S2", "LATITUDE": "n/a"}, options(true))
	d := config.Default().XML.Defaults

	assert.Nil(t, doc.Child("coordX"))
	assert.Nil(t, doc.Child("coordY"))
	assert.Equal(t, d.CodZona, text(t, doc, "codigoZona"))
	assert.Equal(t, d.Localidade, text(t, doc, "localidade"))
	assert.Equal(t, d.IDEndereco, text(t, doc, AddressElement, "id"))
	assert.Equal(t, "GUARA - ", text(t, doc, AddressElement, "logradouro"))
	assert.Equal(t, "SN", text(t, doc, AddressElement, "numero_fachada"))
	assert.Equal(t, d.CEP, text(t, doc, AddressElement, "cep"))
	assert.Equal(t, d.Localidade, text(t, doc, AddressElement, "bairro"))
	assert.Equal(t, d.IDRoteiro, text(t, doc, AddressElement, "id_roteiro"))
	assert.Equal(t, d.IDLocalidade, text(t, doc, AddressElement, "id_localidade"))
	assert.Equal(t, d.CodLogradouro, text(t, doc, AddressElement, "cod_lograd"))
	assert.Equal(t, "1", text(t, doc, "totalUCs"))
}

func TestBuildEdificioRejectsNonFiniteNumbers(t *testing.T) {
	opts := options(true)
	opts.Settings.DeriveDestinacao = true

	for _, raw := range []string{"NaN", "Inf", "-Inf", "1e30", "-1e30"} {
		row := types.Record{
			"COD_SURVEY":       "S3",
			"LATITUDE":         raw,
			"LONGITUDE":        raw,
			"QUANTIDADE_UMS":   raw,
			"UCS_RESIDENCIAIS": raw,
			"UCS_COMERCIAIS":   "2",
		}

		doc := BuildEdificio(row, opts)

		assert.Equal(t, "1", text(t, doc, "totalUCs"), raw)
		assert.Equal(t, DestinacaoComercio, text(t, doc, "destinacao"), raw)
		if raw == "1e30" || raw == "-1e30" {
			continue
		}
		assert.Nil(t, doc.Child("coordX"), raw)
		assert.Nil(t, doc.Child("coordY"), raw)
	}
}

func TestBuildEdificioDerivedDestinacao(t *testing.T) {
	opts := options(true)
	opts.Settings.DeriveDestinacao = true

	doc := BuildEdificio(fullRow(), opts)

	assert.Equal(t, DestinacaoResidencia, text(t, doc, "destinacao"))
}

func TestDestinacao(t *testing.T) {
	assert.Equal(t, DestinacaoResidencia, Destinacao(3, 0))
	assert.Equal(t, DestinacaoComercio, Destinacao(0, 2))
	assert.Equal(t, DestinacaoMista, Destinacao(1, 1))
	assert.Equal(t, DestinacaoMista, Destinacao(0, 0))
}

func TestCoordinate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"-16,6869", "-16.6869", true},
		{"-16.50", "-16.5", true},
		{" 12 ", "12", true},
		{"", "", false},
		{"abc", "", false},
		{"1,2,3", "", false},
		{"NaN", "", false},
		{"nan", "", false},
		{"Inf", "", false},
		{"-Infinity", "", false},
		{"1e3", "1000", true},
	}
	for _, tt := range tests {
		got, ok := Coordinate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBuildEdificioMarshalsAndParses(t *testing.T) {
	data := Marshal(BuildEdificio(fullRow(), options(true)))

	assert.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+`<edificio tipo="M" versao="7.9.2">`))

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "22", text(t, parsed, AddressElement, "id_complemento3"))
}

func TestDefaultRulesFillEmptyFields(t *testing.T) {
	d := config.Default().XML.Defaults
	row := types.Record{"NUM_FACHADA": "  ", "CEP": "74000000"}

	filled := withDefaults(row, d)

	assert.Equal(t, d.NumeroFachada, filled["NUM_FACHADA"])
	assert.Equal(t, "74000000", filled["CEP"])
	assert.Equal(t, d.CodLogradouro, filled["COD_LOGRADOURO"])
	assert.Equal(t, "  ", row["NUM_FACHADA"], "the source row is not modified")
	assert.Len(t, DefaultRules(d), 8)
}

// =============================================================================
// Survey Address Converter - Shared Types
// =============================================================================
//
// This package contains the table model and the column names shared by the
// parser, the pipeline, the validators and the writers. Keeping them here
// avoids import cycles between those packages.
//
// NULL HANDLING:
//   A cell holding the empty string is treated as null everywhere. There is
//   no separate "missing" marker.
//
// =============================================================================

package types

// =============================================================================
// TABLE MODEL
// =============================================================================

// Record is one row of the working table, keyed by column name.
type Record map[string]string

// Get returns the value of a column, or "" when the column is absent.
func (r Record) Get(column string) string {
	return r[column]
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an in-memory tabular dataset.
type Table struct {
	// Columns holds the column names in header order.
	Columns []string

	// Rows holds the records in input order.
	Rows []Record
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table declares the given column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// WithColumns returns the column list with each name appended if absent.
// The receiver's slice is never modified.
func (t Table) WithColumns(names ...string) []string {
	cols := make([]string, len(t.Columns), len(t.Columns)+len(names))
	copy(cols, t.Columns)
	for _, name := range names {
		if !t.HasColumn(name) && !contains(cols, name) {
			cols = append(cols, name)
		}
	}
	return cols
}

// ColumnIsEmpty reports whether every row has an empty value for column.
// A table without the column counts as empty.
func (t Table) ColumnIsEmpty(column string) bool {
	for _, row := range t.Rows {
		if row[column] != "" {
			return false
		}
	}
	return true
}

// Append concatenates the rows of other onto t. Columns present only in other
// are appended to the column list in their original order.
func (t *Table) Append(other Table) {
	for _, c := range other.Columns {
		if !contains(t.Columns, c) {
			t.Columns = append(t.Columns, c)
		}
	}
	t.Rows = append(t.Rows, other.Rows...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Input and output columns.
const (
	ColChaveLog            = "CHAVE LOG"
	ColCelula              = "CELULA"
	ColEstacao             = "ESTACAO_ABASTECEDORA"
	ColUF                  = "UF"
	ColMunicipio           = "MUNICIPIO"
	ColLocalidade          = "LOCALIDADE"
	ColCodLocalidade       = "COD_LOCALIDADE"
	ColLocalidadeAbrev     = "LOCALIDADE_ABREV"
	ColLogradouro          = "LOGRADOURO"
	ColCodLogradouro       = "COD_LOGRADOURO"
	ColNumFachada          = "NUM_FACHADA"
	ColComplemento         = "COMPLEMENTO"
	ColComplemento2        = "COMPLEMENTO2"
	ColComplemento3        = "COMPLEMENTO3"
	ColCEP                 = "CEP"
	ColBairro              = "BAIRRO"
	ColCodSurvey           = "COD_SURVEY"
	ColQuantidadeUMs       = "QUANTIDADE_UMS"
	ColUCsResidenciais     = "UCS_RESIDENCIAIS"
	ColUCsComerciais       = "UCS_COMERCIAIS"
	ColIDEndereco          = "ID_ENDERECO"
	ColLatitude            = "LATITUDE"
	ColLongitude           = "LONGITUDE"
	ColIDRoteiro           = "ID_ROTEIRO"
	ColIDLocalidade        = "ID_LOCALIDADE"
	ColCodZona             = "COD_ZONA"
	ColOrdem               = "ORDEM"
	ColResultado           = "RESULTADO"
	ColComparativo         = "COMPARATIVO"
	ColArgumento3          = "Nº ARGUMENTO3 COMPLEMENTO3"
	ColValidacao           = "VALIDAÇÃO"
	ColComplemento3Tratado = "COMPLEMENTO3_TRATADO"
	ColComplemento3Orig    = "COMPLEMENTO3_ORIGINAL"
	ColResultadoBruto      = "Resultado"
	ColNumCelula           = "Nº CELULA"
)

// WorkingColumns are derivation helpers that never reach the output.
var WorkingColumns = []string{
	ColComplemento3Orig,
	ColComplemento3Tratado,
	ColResultadoBruto,
	ColNumCelula,
}

// FinalColumns is the fixed output column order. It is also the list of
// columns an input file is expected to carry.
var FinalColumns = []string{
	"CHAVE LOG", "CELULA", "ESTACAO_ABASTECEDORA", "UF", "MUNICIPIO", "LOCALIDADE",
	"COD_LOCALIDADE", "LOCALIDADE_ABREV", "LOGRADOURO", "COD_LOGRADOURO", "NUM_FACHADA",
	"COMPLEMENTO", "COMPLEMENTO2", "COMPLEMENTO3", "CEP", "BAIRRO", "COD_SURVEY",
	"QUANTIDADE_UMS", "COD_VIABILIDADE", "TIPO_VIABILIDADE", "TIPO_REDE", "UCS_RESIDENCIAIS",
	"UCS_COMERCIAIS", "NOME_CDO", "ID_ENDERECO", "LATITUDE", "LONGITUDE", "TIPO_SURVEY",
	"REDE_INTERNA", "UMS_CERTIFICADAS", "REDE_EDIF_CERT", "DISP_COMERCIAL", "ESTADO_CONTROLE",
	"DATA_ESTADO_CONTROLE", "ID_CELULA", "QUANTIDADE_HCS", "ID_ROTEIRO", "ID_LOCALIDADE",
	"COD_ZONA", "ORDEM", "RESULTADO", "COMPARATIVO", "Nº ARGUMENTO3 COMPLEMENTO3", "VALIDAÇÃO",
}

// Classification labels. The texts are fixed and read ">10" whatever
// thresholds the classifier runs with; the converter logs non-default ones.
const (
	LabelNoPrefix          = "SEM PREFIXO VÁLIDO"
	LabelComplementEmpty   = "VERIFICAR COMPLEMENTO3-VAZIO"
	LabelComplementTooHigh = "VERIFICAR COMPLEMENTO3 >10"
	LabelOrdinalTooHigh    = "VERIFICAR RESULTADO >10"
	LabelOK                = "OK"
)

// Comparison flags.
const (
	FlagTrue  = "VERDADEIRO"
	FlagFalse = "FALSO"
)

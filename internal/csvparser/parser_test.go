package csvparser

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/survey-xml-converter/internal/config"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func defaultSettings() config.CSVSettings {
	return config.Default().CSV
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, '|', DetectDelimiter("A|B;C"))
	assert.Equal(t, ';', DetectDelimiter("A;B,C"))
	assert.Equal(t, ',', DetectDelimiter("A,B"))
	assert.Equal(t, ',', DetectDelimiter("SINGLE"))
}

func TestParsePipeUTF8(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("COD_SURVEY|COMPLEMENTO3|cep\nX1| AP 3 |71.065-071\n\nX2||\n"))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, '|', data.Delimiter)
	assert.Equal(t, "utf-8", data.Encoding)
	assert.Equal(t, []string{"COD_SURVEY", "COMPLEMENTO3", "CEP"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, " AP 3 ", data.Rows[0]["COMPLEMENTO3"])
	assert.Equal(t, "71.065-071", data.Rows[0]["CEP"])
	assert.Equal(t, "", data.Rows[1]["CEP"])
}

func TestParseStripsBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("COD_SURVEY;UF\nX1;GO\n")...)
	path := writeFile(t, "bom.csv", content)

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, ';', data.Delimiter)
	assert.Equal(t, "COD_SURVEY", data.Headers[0])
	assert.Equal(t, "GO", data.Rows[0]["UF"])
}

func TestParseLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("LOGRADOURO|MUNICIPIO\nRUA SÃO JOÃO|GOIÂNIA\n")
	require.NoError(t, err)
	path := writeFile(t, "latin.csv", []byte(encoded))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, "latin-1", data.Encoding)
	assert.Equal(t, "RUA SÃO JOÃO", data.Rows[0]["LOGRADOURO"])
	assert.Equal(t, "GOIÂNIA", data.Rows[0]["MUNICIPIO"])
}

func TestParseForcedDelimiter(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("A;B|C\n1;2|3\n"))
	settings := defaultSettings()
	settings.Delimiter = ";"

	data, err := Parse(path, settings)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B|C"}, data.Headers)
	assert.Equal(t, "2|3", data.Rows[0]["B|C"])
}

func TestParseShortRowsArePadded(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("A|B|C\n1\n"))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, "", data.Rows[0]["C"])
}

func TestParseEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)

	_, err := Parse(path, defaultSettings())
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseHeaderOnly(t *testing.T) {
	path := writeFile(t, "header.csv", []byte("A|B\n"))

	_, err := Parse(path, defaultSettings())
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestParseUTF8OnlyRejectsLatin1(t *testing.T) {
	path := writeFile(t, "latin.csv", []byte("A|B\nS\xc3O|x\n"))
	settings := defaultSettings()
	settings.Encodings = []string{"utf-8"}

	_, err := Parse(path, settings)
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestUnsupportedEncoding(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("A\n1\n"))
	settings := defaultSettings()
	settings.Encodings = []string{"ebcdic"}

	_, err := Parse(path, settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ebcdic")
}

func TestStreamingReadChunk(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("ID|V\n1|a\n2|b\n3|c\n4|d\n5|e\n"))

	p, err := NewStreamingParser(path, defaultSettings())
	require.NoError(t, err)
	defer p.Close()

	var sizes []int
	var ids []string
	for {
		chunk, err := p.ReadChunk(2)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, chunk.Len())
		for _, r := range chunk.Rows {
			ids = append(ids, r["ID"])
		}
		assert.Equal(t, []string{"ID", "V"}, chunk.Columns)
	}

	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
}

func TestCountRowsAndHeaders(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("complemento;uf\n\nA;B\nC;D\n"))

	n, err := CountRows(path, defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	headers, err := ReadHeaders(path, defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, []string{"COMPLEMENTO", "UF"}, headers)
}

package utils

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "up"), filepath.Join(root, "down"))

	require.NoError(t, fm.EnsureDirectories())
	assert.DirExists(t, fm.UploadDir)
	assert.DirExists(t, fm.DownloadDir)
}

func TestSaveUpload(t *testing.T) {
	fm := NewFileManager(t.TempDir(), t.TempDir())

	path, err := fm.SaveUpload("../../etc/survey.csv", strings.NewReader("a;b\n"))
	require.NoError(t, err)

	assert.Equal(t, fm.UploadDir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_survey.csv"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a;b\n", string(data))
}

func TestDownloadPath(t *testing.T) {
	fm := NewFileManager("up", "down")

	p, err := fm.DownloadPath("moradias_xml_ETGR_20240101120000.zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("down", "moradias_xml_ETGR_20240101120000.zip"), p)

	for _, bad := range []string{"", ".", "..", "../secret", "a/b.zip", `a\b.zip`} {
		_, err := fm.DownloadPath(bad)
		assert.ErrorIs(t, err, ErrInvalidFileName, bad)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	got := generateOutputFileName("moradias_xml_{station}_{timestamp}.zip", map[string]string{"station": "ET GR"}, now)
	assert.Equal(t, "moradias_xml_ET_GR_20240115143022.zip", got)

	got = generateOutputFileName("out_{date}_{time}.csv", nil, now)
	assert.Equal(t, "out_20240115_143022.csv", got)

	got = generateOutputFileName("{uuid}.csv", nil, now)
	assert.Len(t, got, 36+len(".csv"))
}

func TestReserveFile(t *testing.T) {
	dir := t.TempDir()

	first, err := ReserveFile(dir, "out_20240115143022.csv")
	require.NoError(t, err)
	assert.Equal(t, "out_20240115143022.csv", first)
	assert.FileExists(t, filepath.Join(dir, first))

	second, err := ReserveFile(dir, "out_20240115143022.csv")
	require.NoError(t, err)
	assert.Equal(t, "out_20240115143022_1.csv", second)

	third, err := ReserveFile(dir, "out_20240115143022.csv")
	require.NoError(t, err)
	assert.Equal(t, "out_20240115143022_2.csv", third)

	_, err = ReserveFile(filepath.Join(dir, "missing"), "x.csv")
	assert.Error(t, err)
}

func TestCleanOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.zip")
	fresh := filepath.Join(dir, "fresh.csv")
	sub := filepath.Join(dir, "keep")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0644))
	require.NoError(t, os.Mkdir(sub, 0755))

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(sub, past, past))

	removed, err := CleanOldFiles(dir, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.DirExists(t, sub)

	removed, err = CleanOldFiles(filepath.Join(dir, "missing"), time.Hour)
	assert.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	assert.NoError(t, RemoveIfExists(path))
	assert.NoError(t, RemoveIfExists(path))
	assert.NoError(t, RemoveIfExists(""))
	assert.False(t, FileExists(path))
}

func TestWriteCSVTo(t *testing.T) {
	table := types.Table{
		Columns: []string{"CEP", "LOGRADOURO"},
		Rows: []types.Record{
			{"CEP": "01001000", "LOGRADOURO": `PRACA "SE"`},
			{"CEP": "", "LOGRADOURO": "RUA A; B"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSVTo(&buf, table))

	want := "\ufeff" +
		"\"CEP\";\"LOGRADOURO\"\r\n" +
		"\"01001000\";\"PRACA \"\"SE\"\"\"\r\n" +
		"\"\";\"RUA A; B\"\r\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table := types.Table{Columns: []string{"A"}, Rows: []types.Record{{"A": "1"}}}

	require.NoError(t, WriteCSV(path, table))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len("\ufeff\"A\"\r\n\"1\"\r\n")), info.Size())
}

func TestZipWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moradias.zip")
	zw, err := NewZipWriter(path, "")
	require.NoError(t, err)

	require.NoError(t, zw.Add(1, []byte("<EDIFICIO/>")))
	require.NoError(t, zw.Add(2, []byte("<EDIFICIO></EDIFICIO>")))
	assert.Equal(t, 2, zw.Count())
	require.NoError(t, zw.Close())

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 2)
	assert.Equal(t, "moradia1/moradia1.xml", zr.File[0].Name)
	assert.Equal(t, "moradia2/moradia2.xml", zr.File[1].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "<EDIFICIO/>", string(data))
}

func TestZipWriterPrefixAndAbort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.zip")
	zw, err := NewZipWriter(path, "moradias_xml_ETGR")
	require.NoError(t, err)

	assert.Equal(t, "moradias_xml_ETGR/moradia3/moradia3.xml", zw.EntryName(3))
	require.NoError(t, zw.Add(1, []byte("x")))
	require.NoError(t, zw.Abort())

	assert.NoFileExists(t, path)
}

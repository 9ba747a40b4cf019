package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "auto", cfg.CSV.Delimiter)
	assert.Equal(t, []string{"utf-8", "latin-1", "cp1252"}, cfg.CSV.Encodings)
	assert.Equal(t, 50000, cfg.Processing.ChunkSize)
	assert.Equal(t, ScopePerChunk, cfg.Processing.ChunkScope)
	assert.Equal(t, 10, cfg.Processing.ComplementThreshold)
	assert.Equal(t, 10, cfg.Processing.OrdinalThreshold)
	assert.Equal(t, "M", cfg.XML.Tipo)
	assert.Equal(t, "7.9.2", cfg.XML.Versao)
	assert.Equal(t, "SN", cfg.XML.Defaults.NumeroFachada)
	assert.Equal(t, time.Hour, cfg.Server.DownloadRetention)
	assert.Equal(t, 60, cfg.Server.UploadsPerMinute)
	assert.Len(t, cfg.ReferenceFiles, 2)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
upload_dir: `+filepath.Join(dir, "up")+`
download_dir: `+filepath.Join(dir, "down")+`
log_level: debug
csv:
  delimiter: ";"
processing:
  chunk_size: 10
  chunk_scope: global
  ordinal_threshold: 3
xml:
  empresa_nome: ACME
server:
  download_retention: 2h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, 10, cfg.Processing.ChunkSize)
	assert.Equal(t, ScopeGlobal, cfg.Processing.ChunkScope)
	assert.Equal(t, 3, cfg.Processing.OrdinalThreshold)
	assert.Equal(t, 10, cfg.Processing.ComplementThreshold)
	assert.Equal(t, "ACME", cfg.XML.EmpresaNome)
	assert.Equal(t, "TELEMONT", Default().XML.EmpresaNome)
	assert.Equal(t, 2*time.Hour, cfg.Server.DownloadRetention)

	assert.DirExists(t, filepath.Join(dir, "up"))
	assert.DirExists(t, filepath.Join(dir, "down"))
}

func TestLoadRejectsUnknownScope(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
upload_dir: `+filepath.Join(dir, "up")+`
download_dir: `+filepath.Join(dir, "down")+`
processing:
  chunk_scope: sometimes
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_scope")
}

func TestLoadRejectsDelimiter(t *testing.T) {
	path := writeConfig(t, "csv:\n  delimiter: \"#\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delimiter")
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.CSV.Delimiter)
}

func TestLoadOrDefaultBadYAML(t *testing.T) {
	path := writeConfig(t, "csv: [unterminated")

	_, err := LoadOrDefault(path)
	require.Error(t, err)
}

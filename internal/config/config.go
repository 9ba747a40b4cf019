// =============================================================================
// Survey Address Converter - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration. A single
// YAML file (config.yaml) drives the CLI and the HTTP server.
//
// CONFIGURATION SECTIONS:
//   1. Directories: upload, download, reference spreadsheets, logs
//   2. CSV:         delimiter and encoding probe order
//   3. Processing:  chunking, chunk scope, classification thresholds
//   4. XML:         root attributes, fixed metadata, fallback values
//   5. Server:      listen address, upload limit, download retention
//
// A missing file is not an error for callers that use LoadOrDefault: every
// setting has a default.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CHUNK SCOPE
// =============================================================================

// ChunkScope controls whether ordinal numbering and deduplication restart at
// each chunk or span the whole file.
type ChunkScope string

const (
	// ScopePerChunk restarts ordinals and the duplicate set at every chunk.
	ScopePerChunk ChunkScope = "per_chunk"

	// ScopeGlobal carries ordinals and the duplicate set across chunks, so a
	// chunked run produces the same rows as a single pass.
	ScopeGlobal ChunkScope = "global"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// UploadDir receives uploaded files while they are processed.
	// Default: "./uploads"
	UploadDir string `yaml:"upload_dir"`

	// DownloadDir receives generated CSV files and zip bundles.
	// Default: "./downloads"
	DownloadDir string `yaml:"download_dir"`

	// ReferenceDir holds the routing spreadsheets.
	// Default: "./roteiros"
	ReferenceDir string `yaml:"reference_dir"`

	// ReferenceFiles are the spreadsheet names inside ReferenceDir. Every
	// file must exist; a missing one aborts the run.
	// Default: roteiro_aparecida.xlsx, roteiro_goiania.xlsx
	ReferenceFiles []string `yaml:"reference_files"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	CSV        CSVSettings        `yaml:"csv"`
	Processing ProcessingSettings `yaml:"processing"`
	XML        XMLSettings        `yaml:"xml"`
	Server     ServerSettings     `yaml:"server"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for reading input files.
type CSVSettings struct {
	// Delimiter is "auto", "|" or ";". With "auto" the header line decides:
	// a pipe wins over a semicolon, and a comma is the fallback.
	// Default: "auto"
	Delimiter string `yaml:"delimiter"`

	// Encodings is the probe order. The first encoding that decodes the
	// whole file is used.
	// Supported: "utf-8", "latin-1" (alias "iso-8859-1"), "cp1252" (alias "windows-1252")
	// Default: utf-8, latin-1, cp1252
	Encodings []string `yaml:"encodings"`
}

// =============================================================================
// PROCESSING SETTINGS STRUCTURE
// =============================================================================

// ProcessingSettings controls the pipeline.
type ProcessingSettings struct {
	// ChunkSize is the number of rows per block in chunked mode.
	// Default: 50000
	ChunkSize int `yaml:"chunk_size"`

	// ChunkedThresholdMB switches a run to chunked mode when the input is
	// larger than this many megabytes. A negative value disables the switch.
	// Default: 100
	ChunkedThresholdMB int `yaml:"chunked_threshold_mb"`

	// ChunkScope is "per_chunk" or "global".
	// Default: "per_chunk"
	ChunkScope ChunkScope `yaml:"chunk_scope"`

	// ComplementThreshold labels rows whose complement 3 number is above it.
	// Default: 10
	ComplementThreshold int `yaml:"complement_threshold"`

	// OrdinalThreshold labels rows whose ordinal is above it.
	// Default: 10
	OrdinalThreshold int `yaml:"ordinal_threshold"`
}

// =============================================================================
// XML SETTINGS STRUCTURE
// =============================================================================

// XMLSettings controls the per-row XML documents.
type XMLSettings struct {
	// Tipo and Versao are the root element attributes.
	// Defaults: "M", "7.9.2"
	Tipo   string `yaml:"tipo"`
	Versao string `yaml:"versao"`

	// Technician and company metadata appended to every document.
	TecnicoID   string `yaml:"tecnico_id"`
	TecnicoNome string `yaml:"tecnico_nome"`
	EmpresaID   string `yaml:"empresa_id"`
	EmpresaNome string `yaml:"empresa_nome"`

	// Static building fields.
	Ocupacao   string `yaml:"ocupacao"`
	NumPisos   string `yaml:"num_pisos"`
	Destinacao string `yaml:"destinacao"`

	// DeriveDestinacao computes destinacao from the residential and
	// commercial unit counts instead of using the static value.
	// Default: false
	DeriveDestinacao bool `yaml:"derive_destinacao"`

	// Defaults are the fallback values used when a source column is empty.
	Defaults XMLDefaults `yaml:"defaults"`
}

// XMLDefaults are per-field fallback values.
type XMLDefaults struct {
	CodZona       string `yaml:"cod_zona"`
	Localidade    string `yaml:"localidade"`
	IDEndereco    string `yaml:"id_endereco"`
	NumeroFachada string `yaml:"numero_fachada"`
	CEP           string `yaml:"cep"`
	IDRoteiro     string `yaml:"id_roteiro"`
	IDLocalidade  string `yaml:"id_localidade"`
	CodLogradouro string `yaml:"cod_logradouro"`
	TotalUCs      string `yaml:"total_ucs"`
	Estacao       string `yaml:"estacao"`
}

// =============================================================================
// SERVER SETTINGS STRUCTURE
// =============================================================================

// ServerSettings controls the HTTP server.
type ServerSettings struct {
	// Address is the listen address.
	// Default: ":8080"
	Address string `yaml:"address"`

	// MaxUploadMB limits the size of an uploaded file.
	// Default: 2048
	MaxUploadMB int64 `yaml:"max_upload_mb"`

	// DownloadRetention is how long generated files are kept.
	// Default: 1h
	DownloadRetention time.Duration `yaml:"download_retention"`

	// KeepAlive is the interval of "waiting" events on idle progress streams.
	// Default: 30s
	KeepAlive time.Duration `yaml:"keep_alive"`

	// UploadsPerMinute limits conversion and validation uploads across all
	// clients. A negative value disables the limit.
	// Default: 60
	UploadsPerMinute int `yaml:"uploads_per_minute"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads the configuration from a YAML file.
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the Config struct with defaults applied.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configPath, falling back to Default when the file does
// not exist. Any other error is returned.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return nil, err
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// EnsureDirectories creates the upload and download directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.UploadDir, c.DownloadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.UploadDir == "" {
		cfg.UploadDir = "./uploads"
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "./downloads"
	}
	if cfg.ReferenceDir == "" {
		cfg.ReferenceDir = "./roteiros"
	}
	if len(cfg.ReferenceFiles) == 0 {
		cfg.ReferenceFiles = []string{"roteiro_aparecida.xlsx", "roteiro_goiania.xlsx"}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}

	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = "auto"
	}
	if len(cfg.CSV.Encodings) == 0 {
		cfg.CSV.Encodings = []string{"utf-8", "latin-1", "cp1252"}
	}

	p := &cfg.Processing
	if p.ChunkSize <= 0 {
		p.ChunkSize = 50000
	}
	if p.ChunkedThresholdMB == 0 {
		p.ChunkedThresholdMB = 100
	}
	if p.ChunkScope == "" {
		p.ChunkScope = ScopePerChunk
	}
	if p.ComplementThreshold == 0 {
		p.ComplementThreshold = 10
	}
	if p.OrdinalThreshold == 0 {
		p.OrdinalThreshold = 10
	}

	x := &cfg.XML
	setDefault(&x.Tipo, "M")
	setDefault(&x.Versao, "7.9.2")
	setDefault(&x.TecnicoID, "1828772688")
	setDefault(&x.TecnicoNome, "NADIA CAROLINE")
	setDefault(&x.EmpresaID, "42541126")
	setDefault(&x.EmpresaNome, "TELEMONT")
	setDefault(&x.Ocupacao, "EDIFICACAOCOMPLETA")
	setDefault(&x.NumPisos, "1")
	setDefault(&x.Destinacao, "COMERCIO")

	d := &x.Defaults
	setDefault(&d.CodZona, "DF-GURX-ETGR-CEOS-68")
	setDefault(&d.Localidade, "GUARA")
	setDefault(&d.IDEndereco, "93128133")
	setDefault(&d.NumeroFachada, "SN")
	setDefault(&d.CEP, "71065071")
	setDefault(&d.IDRoteiro, "57149008")
	setDefault(&d.IDLocalidade, "1894644")
	setDefault(&d.CodLogradouro, "2700035341")
	setDefault(&d.TotalUCs, "1")
	setDefault(&d.Estacao, "DESCONHECIDA")

	s := &cfg.Server
	setDefault(&s.Address, ":8080")
	if s.MaxUploadMB <= 0 {
		s.MaxUploadMB = 2048
	}
	if s.DownloadRetention <= 0 {
		s.DownloadRetention = time.Hour
	}
	if s.KeepAlive <= 0 {
		s.KeepAlive = 30 * time.Second
	}
	if s.UploadsPerMinute == 0 {
		s.UploadsPerMinute = 60
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// validate checks enumerated settings and creates the working directories.
func validate(cfg *Config) error {
	switch cfg.CSV.Delimiter {
	case "auto", "|", ";", ",":
	default:
		return fmt.Errorf("unsupported delimiter %q", cfg.CSV.Delimiter)
	}

	switch cfg.Processing.ChunkScope {
	case ScopePerChunk, ScopeGlobal:
	default:
		return fmt.Errorf("unsupported chunk_scope %q", cfg.Processing.ChunkScope)
	}

	if cfg.Processing.ComplementThreshold < 0 || cfg.Processing.OrdinalThreshold < 0 {
		return fmt.Errorf("thresholds must not be negative")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", cfg.LogLevel)
	}

	return cfg.EnsureDirectories()
}

// =============================================================================
// Survey Address Converter - Converter Module
// =============================================================================
//
// This module orchestrates one conversion run, from reading the survey file
// to writing the output into the download directory.
//
// OUTPUT MODES:
//   - csv: the classified table, projected onto the fixed column order, in a
//          single ';' separated file
//   - xml: one <edificio> document per classified row, bundled into a zip
//
// CONVERSION PIPELINE (csv mode):
//   1. Check the input file and pick a strategy (whole file or chunked)
//   2. Parse the CSV (encoding and delimiter are detected)
//   3. Check the columns the pipeline reads
//   4. Load the routing spreadsheets
//   5. Run the pipeline stages over the table or over each chunk
//   6. Finalize and write the output file
//
// Chunked mode is used for inputs larger than processing.chunked_threshold_mb
// or when forced. It runs the same stages over blocks of chunk_size rows.
//
// FAILURES:
//   Any error aborts the run. Output already written for the run is removed.
//   Row quality problems never fail a run; they become labels or warnings.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/survey-xml-converter/internal/config"
	"github.com/ginjaninja78/survey-xml-converter/internal/logger"
	"github.com/ginjaninja78/survey-xml-converter/internal/pipeline"
	"github.com/ginjaninja78/survey-xml-converter/internal/progress"
	"github.com/ginjaninja78/survey-xml-converter/internal/reference"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
	"github.com/ginjaninja78/survey-xml-converter/internal/validation"
)

// =============================================================================
// MODES AND OPTIONS
// =============================================================================

// Mode selects the output format.
type Mode string

const (
	ModeCSV Mode = "csv"
	ModeXML Mode = "xml"
)

// ParseMode converts a user-supplied mode name. An empty name selects csv.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCSV:
		return ModeCSV, nil
	case ModeXML:
		return ModeXML, nil
	default:
		return "", fmt.Errorf("unsupported mode %q (use csv or xml)", s)
	}
}

// Options controls a single run.
type Options struct {
	// Mode is the output format.
	Mode Mode

	// Chunked forces chunked processing regardless of the file size.
	Chunked bool

	// OutputDir overrides the configured download directory.
	OutputDir string

	// RemoveInput deletes the input file when a background run ends.
	RemoveInput bool
}

// Output file name formats.
const (
	csvNameFormat = "Enderecos_Totais_CO_Convertido_{timestamp}.csv"
	zipNameFormat = "moradias_xml_{station}_{timestamp}.zip"
)

// requiredColumns are the columns the pipeline reads. Every other output
// column is filled in empty at finalize.
var requiredColumns = []string{
	types.ColEstacao,
	types.ColLocalidade,
	types.ColLogradouro,
	types.ColCodLogradouro,
	types.ColComplemento,
	types.ColComplemento2,
	types.ColComplemento3,
	types.ColCEP,
	types.ColCodSurvey,
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs conversions with one configuration. A Converter is not tied
// to a file; the reporter receives the updates of every run it executes.
type Converter struct {
	cfg      *config.Config
	log      logger.Interface
	reporter progress.Reporter
	now      func() time.Time
}

// New creates a new Converter. A nil reporter discards progress updates.
//
// PARAMETERS:
//   - cfg: The application configuration.
//   - log: The logger for run diagnostics.
//   - reporter: The receiver of progress updates.
//
// RETURNS:
//   - A new Converter instance.
func New(cfg *config.Config, log logger.Interface, reporter progress.Reporter) *Converter {
	if reporter == nil {
		reporter = progress.Nop
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Converter{
		cfg:      cfg,
		log:      log,
		reporter: reporter,
		now:      time.Now,
	}
}

// =============================================================================
// MAIN RUN FUNCTION
// =============================================================================

// Run converts the file at input.
//
// PARAMETERS:
//   - ctx: Checked between chunks and before each output document batch.
//   - input: The path to the survey CSV file.
//   - opts: Mode, chunking and output directory.
//
// RETURNS:
//   - The result, naming the produced file inside the output directory.
//   - An error if the run failed. No output file is left behind in that case.
func (c *Converter) Run(ctx context.Context, input string, opts Options) (progress.Result, error) {
	start := c.now()

	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return progress.Result{}, err
	}

	info, err := os.Stat(input)
	if err != nil {
		return progress.Result{Mode: string(mode)}, fmt.Errorf("failed to open input file: %w", err)
	}
	if info.IsDir() {
		return progress.Result{Mode: string(mode)}, fmt.Errorf("input %s is a directory", input)
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = c.cfg.DownloadDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return progress.Result{Mode: string(mode)}, fmt.Errorf("failed to create output directory: %w", err)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)
	c.report(progress.Update{
		Message:  fmt.Sprintf("📊 Arquivo validado: %.2f MB", sizeMB),
		Progress: progress.PctValidated,
		Status:   progress.StatusProcessing,
	})
	c.log.Info("Converting %s (%.2f MB) in %s mode", input, sizeMB, mode)

	var res progress.Result
	switch {
	case mode == ModeXML:
		res, err = c.runXML(ctx, input, outDir)
	case c.useChunked(info.Size(), opts.Chunked):
		res, err = c.runChunked(ctx, input, outDir)
	default:
		res, err = c.runCSV(ctx, input, outDir)
	}
	res.Mode = string(mode)

	if err != nil {
		c.log.Error("Conversion of %s failed: %v", input, err)
		return res, err
	}

	c.log.Info("Wrote %s (%d rows) in %s", res.File, res.Rows, c.now().Sub(start).Round(time.Millisecond))
	return res, nil
}

// useChunked reports whether a file of size bytes is processed in chunks.
func (c *Converter) useChunked(size int64, forced bool) bool {
	if forced {
		return true
	}
	threshold := int64(c.cfg.Processing.ChunkedThresholdMB)
	return threshold > 0 && size > threshold*1024*1024
}

// =============================================================================
// SHARED STEPS
// =============================================================================

func (c *Converter) report(u progress.Update) {
	c.reporter.Report(u)
}

// checkColumns fails with a *validation.ColumnError when a column the
// pipeline reads is absent.
func checkColumns(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &validation.ColumnError{Missing: missing}
	}
	return nil
}

// loadReference reads every configured routing spreadsheet.
func (c *Converter) loadReference() (*reference.Table, error) {
	c.report(progress.Update{Message: "📁 Carregando arquivos de roteiro...", Progress: progress.PctReference})

	ref, err := reference.Load(c.cfg.ReferenceDir, c.cfg.ReferenceFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to load routing spreadsheets: %w", err)
	}
	if !ref.HasKey {
		c.log.Warn("A routing spreadsheet has no %s column; ID_ROTEIRO and ID_LOCALIDADE stay empty", reference.ColumnKey)
	}

	c.log.Info("Loaded %d routing entries from %d file(s)", ref.Len(), len(ref.Sources))
	c.report(progress.Update{Message: "✅ Roteiros carregados com sucesso"})
	return ref, nil
}

// warnRows logs field format problems. They never stop a run.
func (c *Converter) warnRows(t types.Table, firstRow int) {
	result := validation.ValidateRows(t, validation.DefaultFieldRules)
	if result.WarningCount == 0 {
		return
	}

	c.log.Warn("%d field value(s) with an unexpected format", result.WarningCount)
	for i, finding := range result.Errors {
		if i == maxLoggedFindings {
			c.log.Debug("... %d more", len(result.Errors)-i)
			break
		}
		finding.RowNumber += firstRow - 1
		c.log.Debug("%s", finding.Error())
	}
}

// maxLoggedFindings caps the per-row findings written at debug level.
const maxLoggedFindings = 20

// logStats writes the pipeline statistics at info level.
func (c *Converter) logStats(stats pipeline.Stats) {
	c.log.Info("Rows: %d read, %d written, %d duplicate(s) removed, %d joined, %d with prefix, %d chunk(s)",
		stats.InputRows, stats.OutputRows, stats.DuplicatesRemoved, stats.Joined, stats.WithPrefix, stats.Chunks)

	labels := make([]string, 0, len(stats.Labels))
	for label := range stats.Labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		c.log.Info("  %s: %d", label, stats.Labels[label])
	}

	// The label texts always read ">10".
	if used := pipeline.OptionsFromConfig(c.cfg.Processing).Thresholds; used != pipeline.DefaultThresholds() {
		c.log.Info("Label thresholds in use: complement > %d, ordinal > %d", used.Complement, used.Ordinal)
	}
}


// summary flattens the statistics into the result summary.
func summary(stats pipeline.Stats) map[string]int {
	out := map[string]int{
		"input_rows":         stats.InputRows,
		"output_rows":        stats.OutputRows,
		"duplicates_removed": stats.DuplicatesRemoved,
		"joined":             stats.Joined,
		"with_prefix":        stats.WithPrefix,
		"chunks":             stats.Chunks,
	}
	for label, n := range stats.Labels {
		out[label] = n
	}
	return out
}

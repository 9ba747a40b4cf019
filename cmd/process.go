// =============================================================================
// Survey Address Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts one or more survey
// files.
//
// COMMAND USAGE:
//   survey-converter process <file>... [flags]
//
// FLAGS:
//   --mode      : csv (normalized CSV) or xml (zip of building documents)
//   --chunked   : Force the chunked strategy in csv mode
//   --out       : Output directory (default: the configured download directory)
//   --workers   : Files converted at the same time
//
// PROCESSING:
//   A single file shows a progress bar. Several files are converted
//   concurrently and a bar counts finished files. Failures are written to an
//   error log in the output directory and do not stop the other files.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/survey-xml-converter/internal/converter"
	"github.com/ginjaninja78/survey-xml-converter/internal/progress"
	"github.com/ginjaninja78/survey-xml-converter/internal/validation"
	"github.com/ginjaninja78/survey-xml-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	processMode    string
	processChunked bool
	processOut     string
	processWorkers int
)

// errorLogFormat names the error log of a batch with failures.
const errorLogFormat = "process_errors_{timestamp}.log"

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Convert survey CSV files to a normalized CSV or an XML zip",
	Long: `The process command reads each survey file, normalizes the complement
fields, joins the routing tables and writes the result to the output
directory.

In csv mode the output is a ';' separated UTF-8 file with BOM. Files larger
than the configured threshold are processed in chunks. In xml mode the output
is a zip with one <edificio> document per address.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processMode, "mode", string(converter.ModeCSV), "Output mode: csv or xml")
	processCmd.Flags().BoolVar(&processChunked, "chunked", false, "Force chunked processing (csv mode)")
	processCmd.Flags().StringVar(&processOut, "out", "", "Output directory (default is the download directory)")
	processCmd.Flags().IntVar(&processWorkers, "workers", 2, "Number of files converted at the same time")
}

// fileResult is the outcome of one file.
type fileResult struct {
	input string
	res   progress.Result
	err   error
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context, inputs []string) error {
	startTime := time.Now()

	mode, err := converter.ParseMode(processMode)
	if err != nil {
		return err
	}
	outDir := processOut
	if outDir == "" {
		outDir = appConfig.DownloadDir
	}
	opts := converter.Options{Mode: mode, Chunked: processChunked, OutputDir: outDir}

	var results []fileResult
	if len(inputs) == 1 {
		results = []fileResult{processOne(ctx, inputs[0], opts)}
	} else {
		results = processMany(ctx, inputs, opts)
	}

	// =========================================================================
	// SUMMARY
	// =========================================================================

	var failures []*validation.ValidationError
	fmt.Println()
	for _, r := range results {
		if r.err != nil {
			failures = append(failures, &validation.ValidationError{
				Severity: validation.SeverityError,
				Field:    filepath.Base(r.input),
				Message:  r.err.Error(),
			})
			printFailure("%s: %v", filepath.Base(r.input), r.err)
			continue
		}
		printSuccess("%s -> %s (%d rows)", filepath.Base(r.input), filepath.Join(outDir, r.res.File), r.res.Rows)
		fmt.Printf("    %s\n", r.res.Message)
		if n := r.res.Summary["documents_with_warnings"]; n > 0 {
			printWarning("%d document(s) with incomplete complements", n)
		}
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", len(results))
	fmt.Printf("Successful:      %d\n", len(results)-len(failures))
	fmt.Printf("Errors:          %d\n", len(failures))
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if len(failures) == 0 {
		return nil
	}

	logPath := filepath.Join(outDir, utils.GenerateOutputFileName(errorLogFormat, nil))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		appLog.Warn("Could not create %s: %v", outDir, err)
	} else if err := validation.WriteErrorLog(failures, logPath); err != nil {
		appLog.Warn("Could not write error log: %v", err)
	} else {
		fmt.Printf("\nErrors have been logged to %s\n", logPath)
	}
	return fmt.Errorf("%d of %d file(s) failed", len(failures), len(results))
}

// processOne converts a single file behind a percentage bar.
func processOne(ctx context.Context, input string, opts converter.Options) fileResult {
	bar := newProgressBar(100, filepath.Base(input))
	reporter := progress.ReporterFunc(func(u progress.Update) {
		if u.Message != "" {
			bar.Describe(u.Message)
		}
		if u.Progress > 0 {
			bar.Set(u.Progress)
		}
	})

	res, err := converter.New(appConfig, appLog, reporter).Run(ctx, input, opts)
	if err == nil {
		bar.Finish()
	}
	return fileResult{input: input, res: res, err: err}
}

// processMany converts files concurrently, at most processWorkers at a time.
// Results keep the order of inputs.
func processMany(ctx context.Context, inputs []string, opts converter.Options) []fileResult {
	workers := processWorkers
	if workers < 1 {
		workers = 1
	}

	bar := newProgressBar(int64(len(inputs)), "Convertendo arquivos")
	results := make([]fileResult, len(inputs))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			log := appLog.With("file", filepath.Base(input))
			res, err := converter.New(appConfig, log, nil).Run(ctx, input, opts)
			results[i] = fileResult{input: input, res: res, err: err}
			bar.Add(1)
		}(i, input)
	}
	wg.Wait()
	bar.Finish()

	return results
}

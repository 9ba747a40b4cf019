package converter

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/ginjaninja78/survey-xml-converter/internal/config"
	"github.com/ginjaninja78/survey-xml-converter/internal/logger"
	"github.com/ginjaninja78/survey-xml-converter/internal/progress"
	"github.com/ginjaninja78/survey-xml-converter/pkg/utils"
)

// Start runs a conversion in its own goroutine and returns the run at once.
// The outcome is recorded with run.Finish: callers read it from the registry
// and follow it through run.Subscribe. A panic inside the run is recovered
// and recorded as a failure.
//
// PARAMETERS:
//   - ctx: Passed to Converter.Run.
//   - reg: The registry that creates the run and keeps its result.
//   - cfg: The application configuration.
//   - log: The logger for run diagnostics.
//   - input: The path to the survey CSV file.
//   - opts: Options for Converter.Run. With RemoveInput the input file is
//           deleted once the run ends.
//
// RETURNS:
//   - The started run.
func Start(ctx context.Context, reg *progress.Registry, cfg *config.Config, log logger.Interface, input string, opts Options) *progress.Run {
	run := reg.Start()

	go func() {
		var (
			res progress.Result
			err error
		)

		defer func() {
			if r := recover(); r != nil {
				log.Error("Run %s panicked: %v\n%s", run.ID(), r, debug.Stack())
				res = progress.Result{Mode: string(opts.Mode)}
				err = fmt.Errorf("unexpected failure while processing the file")
			}
			if opts.RemoveInput {
				if rmErr := utils.RemoveIfExists(input); rmErr != nil {
					log.Warn("Could not remove %s: %v", input, rmErr)
				}
			}
			run.Finish(res, err)
		}()

		log.Debug("Run %s started for %s", run.ID(), input)
		res, err = New(cfg, log, run).Run(ctx, input, opts)
	}()

	return run
}

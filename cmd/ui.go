package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// printSuccess, printFailure and printWarning write one marked line to
// stdout. Colors are dropped automatically when stdout is not a terminal.
func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Printf("  ✓ %s\n", fmt.Sprintf(format, args...))
}

func printFailure(format string, args ...interface{}) {
	color.New(color.FgRed).Printf("  ✗ %s\n", fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Printf("  ⚠ %s\n", fmt.Sprintf(format, args...))
}

// newProgressBar returns a bar on stderr that prints a newline when it
// completes.
func newProgressBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

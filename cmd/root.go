// =============================================================================
// Survey Address Converter - Root Command
// =============================================================================
//
// This file defines the root command of the CLI. Every subcommand shares the
// configuration and logger built here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (survey-converter)
//   ├── processCmd  (survey-converter process <file>...)
//   ├── validateCmd (survey-converter validate <file>)
//   ├── serveCmd    (survey-converter serve)
//   ├── cleanCmd    (survey-converter clean)
//   └── versionCmd  (survey-converter version)
//
// CONFIGURATION:
//   --config points to a YAML file. When the file does not exist the
//   defaults apply. --verbose forces debug logging.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/survey-xml-converter/internal/config"
	"github.com/ginjaninja78/survey-xml-converter/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig and appLog are built before any subcommand runs.
var (
	appConfig *config.Config
	appLog    *logger.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "survey-converter",
	Short: "Survey address converter - normalize survey CSV exports into CSV or XML",
	Long: `Survey address converter reads address survey exports (CSV separated by
'|' or ';'), normalizes the complement fields, joins the routing tables and
writes either a normalized CSV or a zip with one XML building document per
address.

Example Usage:
  survey-converter process enderecos.csv                # Normalized CSV
  survey-converter process enderecos.csv --mode xml     # Zip of XML documents
  survey-converter validate enderecos.csv               # Column and complement report
  survey-converter serve --addr :8080                   # HTTP interface`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig loads the configuration and builds the logger.
func initConfig() error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	appConfig = cfg
	appLog = logger.New(logger.Options{
		Level:  level,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	appLog.Debug("Configuration loaded from %s", cfgFile)
	return nil
}

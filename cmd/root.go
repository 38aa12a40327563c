// =============================================================================
// Event Ledger - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (eventledger)
//   ├── analyzeCmd  (eventledger analyze)
//   ├── processCmd  (eventledger process)
//   ├── validateCmd (eventledger validate)
//   └── versionCmd  (eventledger version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads .env into the environment (if present)
//   2. Loads the YAML configuration, environment overrides applied
//   3. Builds the zerolog logger and stores it in the command context
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/eventledger/internal/config"
	"github.com/ginjaninja78/eventledger/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg is the loaded configuration, set before any subcommand runs.
var cfg *config.Config

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eventledger",
	Short: "Event ledger analysis - event margins, overhead apportionment and duplicate audits",
	Long: `eventledger reads a financial ledger export (CSV or XLSX) in which every
movement is classified by event, and reports:

  - Revenue, expense and margin per target event
  - Shared overhead apportioned across events by revenue share
  - Corporate costs (personnel, taxes) kept out of the apportionment
  - Daily cash flow, running balance and the lowest balance
  - Likely duplicate costs for the audited event

Example Usage:
  eventledger analyze --file ledger.csv              # Report to stdout
  eventledger analyze --file ledger.csv --format md  # Markdown report
  eventledger process                                # Analyze every ledger in input_dir
  eventledger validate --file ledger.csv             # Check configuration and ledger`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initConfig loads the configuration and attaches the logger to the
// command context.
func initConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := logger.ParseLevel(cfg.LogLevel)
	if verbose {
		level = zerolog.DebugLevel
	}
	log := logger.New().Level(level)
	log.Debug().Str("config", cfgFile).Strs("target_events", cfg.TargetEvents).Msg("configuration loaded")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, log))
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Persistent flags are available to this command and all subcommands.

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file (a missing default file means built-in defaults)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

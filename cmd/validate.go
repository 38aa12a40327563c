// =============================================================================
// Event Ledger - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and, optionally, a ledger, without producing a report.
//
// COMMAND USAGE:
//   eventledger validate [--file ledger.csv] [--strict] [--log path]
//
// EXIT STATUS:
//   Non-zero when an error is found, or any finding with --strict.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/eventledger/internal/ledger"
	"github.com/ginjaninja78/eventledger/internal/validation"
)

var (
	validateFile   string
	validateStrict bool
	validateLog    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and, optionally, a ledger",
	Long: `The validate command checks the configuration (target events, patterns,
CSV settings, report format, currency) and, with --file, loads a ledger and
reports dropped rows, target events without transactions and the status
fallback.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Ledger file to check")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().StringVar(&validateLog, "log", "", "Also write the findings to this file")
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	v := validation.NewValidatorWithOptions(validation.ValidationOptions{
		TreatWarningsAsErrors: validateStrict,
	})

	result := v.ValidateConfig(cfg)

	if validateFile != "" {
		l, err := ledger.Load(validateFile, ledger.OptionsFromConfig(cfg, filepath.Base(validateFile)))
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", validateFile, err)
		}
		delim := "xlsx"
		if l.Delimiter != 0 {
			delim = fmt.Sprintf("%q", l.Delimiter)
		}
		fmt.Fprintf(out, "Ledger %s: %d row(s) read, %d loaded, delimiter %s\n",
			l.Source, l.RowsRead, len(l.Transactions), delim)
		result.Merge(v.ValidateLedger(l, cfg))
	}

	fmt.Fprintln(out, validation.FormatErrors(result.Errors))

	if validateLog != "" {
		if err := validation.WriteErrorLog(result.Errors, validateLog); err != nil {
			return err
		}
	}

	if !result.IsValid {
		return fmt.Errorf("validation failed with %d error(s) and %d warning(s)", result.ErrorCount, result.WarningCount)
	}
	return nil
}

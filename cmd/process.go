// =============================================================================
// Event Ledger - Process Command
// =============================================================================
//
// This file defines the 'process' command, which analyzes every ledger in the
// input directory and writes one report per ledger.
//
// COMMAND USAGE:
//   eventledger process [flags]
//
// FLAGS:
//   --dry-run : Analyze without writing reports, logs or archiving inputs
//   --format  : Report format (default: report_format from the configuration)
//
// PROCESSING PIPELINE:
//   1. Discover ledgers (.csv, .xlsx) in input_dir
//   2. For each ledger, one after another:
//      a. Analyze it with the default selection
//      b. Write the report to output_dir, named by output_name_format
//      c. Move the ledger to input_archive_dir
//   3. Write the error log and the processing summary
//
// A ledger that fails to load is logged and left in place; processing
// continues with the next one.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
	"github.com/ginjaninja78/eventledger/internal/ledger"
	"github.com/ginjaninja78/eventledger/internal/logger"
	"github.com/ginjaninja78/eventledger/internal/report"
	"github.com/ginjaninja78/eventledger/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun analyzes without writing anything.
var dryRun bool

// processFormat overrides the configured report format.
var processFormat string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Analyze every ledger in the input directory",
	Long: `The process command scans the input directory for ledgers and analyzes each
one with the default selection (configured statuses, full date range).

On success:
  - The report is placed in the output directory
  - The ledger is moved to the input archive
  - A processing summary is written

On error:
  - An error log is created in the output directory
  - The ledger remains in the input directory
  - Processing continues with the other ledgers`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Analyze without writing reports, logs or archiving inputs",
	)

	processCmd.Flags().StringVar(
		&processFormat,
		"format",
		"",
		"Report format: text, markdown, json, xml, xlsx",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	out := cmd.OutOrStdout()

	summary := utils.ProcessingSummary{StartTime: time.Now()}

	format, err := report.ParseFormat(firstNonEmpty(processFormat, cfg.ReportFormat))
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	inputFiles, err := fm.DiscoverInputFiles()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No ledger files found in the input directory.")
		return nil
	}
	summary.TotalFiles = len(inputFiles)

	fmt.Fprintf(out, "Found %d ledger(s) to process\n", len(inputFiles))
	if dryRun {
		fmt.Fprintln(out, "Dry run: no report will be written and no ledger archived.")
	}

	// =========================================================================
	// STEP 2: ANALYZE EACH LEDGER
	// =========================================================================

	a, err := analyzer.New(cfg)
	if err != nil {
		return err
	}

	var errorEntries []utils.ErrorLogEntry
	fail := func(path string, err error) {
		entry := classifyError(path, err)
		errorEntries = append(errorEntries, entry)
		summary.Fail(utils.FailedFileInfo{
			InputFile:    path,
			ErrorType:    entry.ErrorType,
			ErrorMessage: entry.ErrorMessage,
		})
		log.Error().Err(err).Str("file", path).Msg("ledger failed")
		fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(path), err)
	}

	for _, path := range inputFiles {
		start := time.Now()

		b, err := a.RunFile(ctx, path, analyzer.Selection{})
		if err != nil {
			fail(path, err)
			continue
		}

		name := utils.GenerateOutputFileName(
			cfg.OutputNameFormat,
			map[string]string{"ledger": utils.LedgerName(path)},
			format.Extension(),
		)
		outPath := filepath.Join(cfg.OutputDir, name)

		info := utils.ProcessedFileInfo{
			InputFile:  path,
			OutputFile: outPath,
			RunID:      b.RunID,
			Rows:       b.Stats.RowsRead,
			Dropped:    b.Stats.Dropped.Total(),
			Selected:   b.Stats.Selected,
			Duplicates: len(b.Audit.Flagged),
		}

		if !dryRun {
			if err := report.WriteFile(outPath, b, format, cfg.Currency); err != nil {
				fail(path, err)
				continue
			}
			archived, err := fm.ArchiveInputFile(path)
			if err != nil {
				// The report exists; leave the ledger in place and carry on.
				log.Warn().Err(err).Str("file", path).Msg("ledger not archived")
			}
			info.ArchivePath = archived
		}

		info.ProcessTime = time.Since(start)
		summary.Record(info)
		fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(path), name)
	}

	// =========================================================================
	// STEP 3: SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if dryRun {
		return nil
	}

	if logPath, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir); err != nil {
		log.Error().Err(err).Msg("failed to write error log")
	} else if logPath != "" {
		fmt.Fprintf(out, "Error log:       %s\n", logPath)
	}
	if summaryPath, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
		log.Error().Err(err).Msg("failed to write summary")
	} else {
		fmt.Fprintf(out, "Summary:         %s\n", summaryPath)
	}

	return nil
}

// classifyError turns a ledger failure into an error log entry.
func classifyError(path string, err error) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp:    time.Now(),
		FileName:     filepath.Base(path),
		ErrorType:    "io",
		ErrorMessage: err.Error(),
	}

	var schemaErr *ledger.SchemaError
	var parseErr *ledger.ParseError
	switch {
	case errors.As(err, &schemaErr):
		entry.ErrorType = "schema"
		entry.Column = schemaErr.Column
	case errors.As(err, &parseErr):
		entry.ErrorType = "parse"
	}
	return entry
}

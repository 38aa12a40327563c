// =============================================================================
// Event Ledger - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command, which runs one analysis over one
// ledger and writes the report.
//
// COMMAND USAGE:
//   eventledger analyze --file ledger.csv [flags]
//
// FLAGS:
//   --file    : The ledger to analyze (CSV or XLSX)
//   --from    : First day of the selection, DD/MM/YYYY (default: earliest)
//   --to      : Last day of the selection, DD/MM/YYYY (default: latest)
//   --status  : Status to include, repeatable (default: configured statuses)
//   --format  : text, markdown, json, xml or xlsx (default: report_format)
//   --output  : Write the report to this path instead of stdout
//   --render  : Render markdown for the terminal
//
// =============================================================================

package cmd

import (
	"bytes"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
	"github.com/ginjaninja78/eventledger/internal/ledger"
	"github.com/ginjaninja78/eventledger/internal/logger"
	"github.com/ginjaninja78/eventledger/internal/report"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	analyzeFile     string
	analyzeFrom     string
	analyzeTo       string
	analyzeStatuses []string
	analyzeFormat   string
	analyzeOutput   string
	analyzeRender   bool
	analyzeStyle    string
	analyzeWidth    int
)

// =============================================================================
// ANALYZE COMMAND DEFINITION
// =============================================================================

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one ledger and print or write the report",
	Long: `The analyze command loads a ledger, applies the date and status selection,
and reports event margins, overhead apportionment, corporate costs, daily
liquidity and possible duplicate costs.

Without --status the configured default statuses are used; when none of them
occur in the ledger, every status is selected.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Ledger file to analyze (CSV or XLSX)")
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "First day of the selection (DD/MM/YYYY)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "Last day of the selection (DD/MM/YYYY)")
	analyzeCmd.Flags().StringSliceVar(&analyzeStatuses, "status", nil, "Status to include (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "Report format: text, markdown, json, xml, xlsx")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the report to this path")
	analyzeCmd.Flags().BoolVar(&analyzeRender, "render", false, "Render a markdown report for the terminal")
	analyzeCmd.Flags().StringVar(&analyzeStyle, "style", "auto", "Terminal style for --render (auto, dark, light, notty)")
	analyzeCmd.Flags().IntVar(&analyzeWidth, "width", 100, "Word wrap width for --render")

	analyzeCmd.MarkFlagRequired("file")
}

// =============================================================================
// MAIN ANALYSIS FUNCTION
// =============================================================================

func runAnalyze(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	sel, err := selectionFromFlags(cmd)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(firstNonEmpty(analyzeFormat, cfg.ReportFormat))
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && analyzeOutput == "" {
		return fmt.Errorf("the xlsx format needs --output")
	}

	a, err := analyzer.New(cfg)
	if err != nil {
		return err
	}

	b, err := a.RunFile(ctx, analyzeFile, sel)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", analyzeFile, err)
	}

	// =========================================================================
	// OUTPUT
	// =========================================================================

	if analyzeOutput != "" {
		if err := report.WriteFile(analyzeOutput, b, format, cfg.Currency); err != nil {
			return err
		}
		log.Info().Str("path", analyzeOutput).Str("format", string(format)).Msg("report written")
		return nil
	}

	out := cmd.OutOrStdout()
	if format == report.FormatMarkdown && analyzeRender {
		var buf bytes.Buffer
		if err := report.WriteMarkdown(&buf, b, cfg.Currency); err != nil {
			return err
		}
		rendered, err := report.Render(buf.String(), analyzeStyle, analyzeWidth)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	}

	return report.Write(out, b, format, cfg.Currency)
}

// selectionFromFlags builds the selection. Flags left unset keep the zero
// value so the analyzer applies its defaults.
func selectionFromFlags(cmd *cobra.Command) (analyzer.Selection, error) {
	var sel analyzer.Selection

	parse := func(flag, value string) (civil.Date, error) {
		if value == "" {
			return civil.Date{}, nil
		}
		d, ok := ledger.ParseDate(value)
		if !ok {
			return civil.Date{}, fmt.Errorf("invalid --%s date %q (expected DD/MM/YYYY)", flag, value)
		}
		return d, nil
	}

	var err error
	if sel.From, err = parse("from", analyzeFrom); err != nil {
		return sel, err
	}
	if sel.To, err = parse("to", analyzeTo); err != nil {
		return sel, err
	}
	if sel.From != (civil.Date{}) && sel.To != (civil.Date{}) && sel.To.Before(sel.From) {
		return sel, fmt.Errorf("--to %s is before --from %s", analyzeTo, analyzeFrom)
	}

	if cmd.Flags().Changed("status") {
		sel.Statuses = append([]string{}, analyzeStatuses...)
	}
	return sel, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// Event Ledger - Validation Engine
// =============================================================================
//
// This module checks a configuration, and optionally a loaded ledger, before
// any analysis runs. It validates:
//   - Target events (present, non-blank, unique) and the audited event
//   - Categorization patterns (each must compile)
//   - CSV settings, report format, currency and log level
//   - Column names (no two required columns may share a header)
//   - Ledger health: dropped rows, events and statuses actually present
//
// ERROR HANDLING:
//   - Findings are collected, not returned one by one
//   - Each finding names the field (config key or ledger aspect) and value
//   - Findings are errors (analysis would fail or be wrong) or warnings
//     (analysis runs but the output may surprise)
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/ginjaninja78/eventledger/internal/categorizer"
	"github.com/ginjaninja78/eventledger/internal/config"
	"github.com/ginjaninja78/eventledger/internal/ledger"
	"github.com/ginjaninja78/eventledger/internal/report"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the configuration key or ledger aspect concerned,
	// e.g. "target_events" or "categories.personnel[3]".
	Field string

	// Value is the offending value, if any.
	Value string

	// Rule is the short name of the violated rule.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

// Merge appends the findings of other.
func (r *ValidationResult) Merge(other *ValidationResult) {
	for _, e := range other.Errors {
		r.add(e, false)
	}
	if !other.IsValid {
		r.IsValid = false
	}
}

func (r *ValidationResult) add(e *ValidationError, warningsAsErrors bool) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
	if warningsAsErrors {
		r.IsValid = false
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes any warning invalidate the result.
	TreatWarningsAsErrors bool
}

// Validator checks configurations and ledgers.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a Validator with default options.
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// ValidateConfig checks every setting of cfg.
func (v *Validator) ValidateConfig(cfg *config.Config) *ValidationResult {
	result := newResult()
	add := func(severity, field, value, rule, msg string) {
		result.add(&ValidationError{
			Severity: severity,
			Field:    field,
			Value:    value,
			Rule:     rule,
			Message:  msg,
		}, v.options.TreatWarningsAsErrors)
	}

	// =========================================================================
	// TARGET EVENTS
	// =========================================================================

	if len(cfg.TargetEvents) == 0 {
		add(SeverityError, "target_events", "", "required", "at least one target event is required")
	}
	seen := make(map[string]bool, len(cfg.TargetEvents))
	for i, ev := range cfg.TargetEvents {
		field := fmt.Sprintf("target_events[%d]", i)
		switch {
		case strings.TrimSpace(ev) == "":
			add(SeverityError, field, ev, "required", "event name is blank")
		case ev != strings.TrimSpace(ev):
			add(SeverityWarning, field, ev, "whitespace", "event name has surrounding whitespace and will never match a trimmed classification")
		}
		if seen[ev] {
			add(SeverityError, field, ev, "unique", "event is listed more than once")
		}
		seen[ev] = true
	}

	if cfg.AuditedEvent != "" && !cfg.IsTargetEvent(cfg.AuditedEvent) {
		add(SeverityError, "audited_event", cfg.AuditedEvent, "membership", "audited event is not one of the target events")
	}

	if cfg.DefaultStatuses != nil && len(cfg.DefaultStatuses) == 0 {
		add(SeverityWarning, "default_statuses", "", "empty", "no default statuses; every status will be used")
	}

	// =========================================================================
	// CATEGORIZATION PATTERNS
	// =========================================================================

	lists := []struct {
		key      string
		patterns []string
	}{
		{"personnel", cfg.Categories.Personnel},
		{"taxes_gov", cfg.Categories.TaxesGov},
		{"overhead", cfg.Categories.Overhead},
	}
	for _, l := range lists {
		for i, p := range l.patterns {
			field := fmt.Sprintf("categories.%s[%d]", l.key, i)
			if strings.TrimSpace(p) == "" {
				add(SeverityError, field, p, "pattern", "empty pattern matches every transaction")
				continue
			}
			if _, err := categorizer.Compile(p); err != nil {
				add(SeverityError, field, p, "pattern", err.Error())
			}
		}
	}

	// =========================================================================
	// FORMAT SETTINGS
	// =========================================================================

	if err := ledger.CheckSettings(cfg.CSVSettings); err != nil {
		add(SeverityError, "csv_settings", cfg.CSVSettings.Delimiter+" / "+cfg.CSVSettings.Encoding, "csv", err.Error())
	}

	cols := make(map[string]bool)
	for _, col := range cfg.Columns.Required() {
		if cols[col] {
			add(SeverityError, "columns", col, "unique", "two required columns share the same header")
		}
		cols[col] = true
	}

	if _, err := report.ParseFormat(cfg.ReportFormat); err != nil {
		add(SeverityError, "report_format", cfg.ReportFormat, "format", err.Error())
	}

	if money.GetCurrency(cfg.Currency) == nil {
		add(SeverityError, "currency", cfg.Currency, "currency", "unknown ISO 4217 currency code")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add(SeverityWarning, "log_level", cfg.LogLevel, "level", "unknown log level; info will be used")
	}

	if !strings.Contains(cfg.OutputNameFormat, "{uuid}") && !strings.Contains(cfg.OutputNameFormat, "{timestamp}") {
		add(SeverityWarning, "output_name_format", cfg.OutputNameFormat, "collision", "without {uuid} or {timestamp} reports may overwrite each other")
	}

	return result
}

// ValidateLedger reports ledger content that would make an analysis
// misleading. A ledger that loaded is never invalid on its own; the findings
// here are warnings.
func (v *Validator) ValidateLedger(l *ledger.Ledger, cfg *config.Config) *ValidationResult {
	result := newResult()
	warn := func(field, value, rule, msg string) {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Field:    field,
			Value:    value,
			Rule:     rule,
			Message:  msg,
		}, v.options.TreatWarningsAsErrors)
	}

	if len(l.Transactions) == 0 {
		warn("ledger", l.Source, "empty", "no usable transactions")
	}
	if l.Dropped.InvalidDate > 0 {
		warn("ledger.date", fmt.Sprint(l.Dropped.InvalidDate), "dropped", "rows dropped because the date could not be parsed")
	}
	if l.Dropped.InvalidAmount > 0 {
		warn("ledger.amount", fmt.Sprint(l.Dropped.InvalidAmount), "dropped", "rows dropped because the amount could not be parsed")
	}

	present := make(map[string]bool)
	for _, tx := range l.Transactions {
		present[tx.Classification] = true
	}
	for _, ev := range cfg.TargetEvents {
		if !present[ev] {
			warn("ledger.events", ev, "missing", "target event has no transactions")
		}
	}

	statuses := l.Statuses()
	if len(statuses) > 0 && len(cfg.DefaultStatuses) > 0 {
		if !containsAny(statuses, cfg.DefaultStatuses) {
			warn("ledger.statuses", strings.Join(statuses, ", "), "fallback", "none of the default statuses occur; every status will be used")
		}
	}

	return result
}

func containsAny(haystack, needles []string) bool {
	set := make(map[string]bool, len(haystack))
	for _, s := range haystack {
		set[s] = true
	}
	for _, n := range needles {
		if set[n] {
			return true
		}
	}
	return false
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation findings to a log file.
//
// PARAMETERS:
//   - errors: The validation errors to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create validation log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Validation log - %s\n\n", time.Now().Format(time.RFC3339))
	writer.WriteString(FormatErrors(errors))
	return writer.Flush()
}

// =============================================================================
// Event Ledger - Analyzer
// =============================================================================
//
// The analyzer orchestrates one analysis of one ledger, from raw bytes to the
// output bundle consumed by the report writers.
//
// ANALYSIS PIPELINE:
//   1. Parse the ledger (memoized by content)
//   2. Resolve the selection: default statuses and date bounds
//   3. Filter the transactions
//   4. Run the allocation engine
//   5. Build the cash KPIs and the daily liquidity series
//   6. Audit the audited event for duplicate costs
//
// Load errors (*ledger.SchemaError, *ledger.ParseError) halt the pipeline and
// are returned unchanged. Every later stage is total and cannot fail.
//
// =============================================================================

package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/ginjaninja78/eventledger/internal/allocation"
	"github.com/ginjaninja78/eventledger/internal/audit"
	"github.com/ginjaninja78/eventledger/internal/categorizer"
	"github.com/ginjaninja78/eventledger/internal/config"
	"github.com/ginjaninja78/eventledger/internal/ledger"
	"github.com/ginjaninja78/eventledger/internal/liquidity"
	"github.com/ginjaninja78/eventledger/internal/logger"
)

// =============================================================================
// SELECTION AND BUNDLE
// =============================================================================

// Selection is the caller's filter. Zero values mean "use the default".
type Selection struct {
	// From and To bound the date range, inclusive. A zero date defaults to
	// the ledger's earliest (From) or latest (To) transaction.
	From civil.Date
	To   civil.Date

	// Statuses nil selects the configured default statuses, falling back to
	// every status when none of them occur. An empty non-nil slice selects
	// nothing.
	Statuses []string
}

// Stats describes the ledger and the filtered subset.
type Stats struct {
	RowsRead     int
	Dropped      ledger.DropStats
	Loaded       int
	Selected     int
	CacheHit     bool
	Delimiter    string
	AllStatuses  []string
	LedgerFrom   civil.Date
	LedgerTo     civil.Date
	ParseElapsed time.Duration
}

// Bundle is everything one analysis produces.
type Bundle struct {
	RunID       string
	Source      string
	LedgerHash  string
	GeneratedAt time.Time
	Elapsed     time.Duration

	// Events are the configured target events, in order.
	Events []string

	// AuditedEvent is the event scanned for duplicates.
	AuditedEvent string

	// Selection is the resolved filter actually applied.
	Selection Selection

	Stats Stats

	Cash       liquidity.CashSummary
	Allocation *allocation.Result
	Liquidity  *liquidity.Series
	Audit      *audit.Report
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer runs analyses for one configuration. It is safe for sequential
// reuse; the parse cache is shared across runs.
type Analyzer struct {
	cfg    *config.Config
	engine *allocation.Engine
	cache  *ledger.Cache
	now    func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache shares a parse cache between analyzers.
func WithCache(c *ledger.Cache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New builds the categorizer and allocation engine for cfg.
//
// RETURNS:
//   - An error if a categorization pattern does not compile.
func New(cfg *config.Config, opts ...Option) (*Analyzer, error) {
	c, err := categorizer.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build categorizer: %w", err)
	}

	a := &Analyzer{
		cfg:    cfg,
		engine: allocation.New(cfg.TargetEvents, c),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = ledger.NewCache()
	}
	return a, nil
}

// Cache returns the parse cache.
func (a *Analyzer) Cache() *ledger.Cache { return a.cache }

// RunFile reads path and analyzes it.
func (a *Analyzer) RunFile(ctx context.Context, path string, sel Selection) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return a.Run(ctx, data, filepath.Base(path), sel)
}

// Run executes the analysis pipeline over raw ledger content.
//
// PARAMETERS:
//   - ctx: Carries the logger (see logger.WithContext).
//   - data: The raw ledger bytes.
//   - source: A label for the ledger, usually the file name.
//   - sel: The caller's filter.
//
// RETURNS:
//   - The analysis bundle.
//   - A *ledger.SchemaError or *ledger.ParseError if the ledger cannot load.
func (a *Analyzer) Run(ctx context.Context, data []byte, source string, sel Selection) (*Bundle, error) {
	start := a.now()
	runID := uuid.New().String()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Str("source", source).Logger()

	// =========================================================================
	// STEP 1: PARSE LEDGER
	// =========================================================================

	parseStart := time.Now()
	l, hit, err := a.cache.Parse(data, ledger.OptionsFromConfig(a.cfg, source))
	if err != nil {
		log.Error().Err(err).Msg("ledger failed to load")
		return nil, err
	}
	parseElapsed := time.Since(parseStart)

	log.Debug().
		Bool("cache_hit", hit).
		Int("rows", l.RowsRead).
		Int("dropped_date", l.Dropped.InvalidDate).
		Int("dropped_amount", l.Dropped.InvalidAmount).
		Str("delimiter", delimiterName(l.Delimiter)).
		Msg("ledger loaded")

	// =========================================================================
	// STEP 2: RESOLVE SELECTION
	// =========================================================================

	available := l.Statuses()
	resolved := sel
	if resolved.Statuses == nil {
		resolved.Statuses = ledger.DefaultStatuses(available, a.cfg.DefaultStatuses)
	}
	minDate, maxDate, ok := l.Bounds()
	if ok {
		if resolved.From == (civil.Date{}) {
			resolved.From = minDate
		}
		if resolved.To == (civil.Date{}) {
			resolved.To = maxDate
		}
	}

	// =========================================================================
	// STEP 3: FILTER
	// =========================================================================

	txs := l.Apply(ledger.Filter{
		From:     resolved.From,
		To:       resolved.To,
		Statuses: resolved.Statuses,
	})

	log.Debug().
		Strs("statuses", resolved.Statuses).
		Str("from", resolved.From.String()).
		Str("to", resolved.To.String()).
		Int("selected", len(txs)).
		Msg("selection applied")

	// =========================================================================
	// STEPS 4-6: COMPUTE
	// =========================================================================

	alloc := a.engine.Compute(txs)
	cash := liquidity.Summarize(txs)
	series := liquidity.Aggregate(txs)
	report := audit.Audit(txs, a.cfg.AuditedEvent)

	if !alloc.Apportioned && len(alloc.Overhead) > 0 {
		log.Warn().Str("total_revenue", alloc.TotalRevenue.String()).Msg("overhead not apportioned: no positive event revenue")
	}
	if report.HasDuplicates() {
		log.Warn().
			Str("event", report.Event).
			Int("flagged", len(report.Flagged)).
			Str("impact", report.Impact.String()).
			Msg("possible duplicate costs")
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	b := &Bundle{
		RunID:        runID,
		Source:       source,
		LedgerHash:   l.Hash,
		GeneratedAt:  start,
		Events:       a.engine.Events(),
		AuditedEvent: a.cfg.AuditedEvent,
		Selection:    resolved,
		Stats: Stats{
			RowsRead:     l.RowsRead,
			Dropped:      l.Dropped,
			Loaded:       len(l.Transactions),
			Selected:     len(txs),
			CacheHit:     hit,
			Delimiter:    delimiterName(l.Delimiter),
			AllStatuses:  available,
			LedgerFrom:   minDate,
			LedgerTo:     maxDate,
			ParseElapsed: parseElapsed,
		},
		Cash:       cash,
		Allocation: alloc,
		Liquidity:  series,
		Audit:      report,
	}
	b.Elapsed = a.now().Sub(start)

	log.Info().
		Int("transactions", len(txs)).
		Str("net", cash.Net.String()).
		Bool("apportioned", alloc.Apportioned).
		Dur("elapsed", b.Elapsed).
		Msg("analysis complete")

	return b, nil
}

func delimiterName(r rune) string {
	switch r {
	case 0:
		return "xlsx"
	case '\t':
		return "tab"
	}
	return string(r)
}

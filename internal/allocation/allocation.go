// =============================================================================
// Event Ledger - Allocation Engine
// =============================================================================
//
// The allocation engine turns a filtered set of transactions into the
// per-event profitability and cost views:
//
//   1. Categorize every transaction
//   2. Summarize revenue, expense and margin per target event
//   3. Split the remaining rows: Personnel and TaxesGov are corporate
//      (reported, never apportioned); Overhead is apportioned
//   4. Sum direct costs per event
//   5. Apportion overhead by each event's share of total event revenue
//
// All amounts keep their ledger sign: costs are negative.
//
// Weights are recomputed on every call. The per-event allocated total is
// computed directly as totalOverhead * share; the transaction x event memo
// is still produced for presentation.
//
// =============================================================================

package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/eventledger/internal/categorizer"
	"github.com/ginjaninja78/eventledger/internal/types"
)

var hundred = decimal.NewFromInt(100)

// =============================================================================
// RESULT TYPES
// =============================================================================

// EventSummary is the contribution margin of one target event.
type EventSummary struct {
	Event string

	// Revenue is the sum of positive amounts, always >= 0.
	Revenue decimal.Decimal

	// Expense is the sum of negative amounts, always <= 0.
	Expense decimal.Decimal

	// Margin is Revenue + Expense.
	Margin decimal.Decimal

	// MarginPct is Margin / Revenue * 100, or 0 when Revenue <= 0.
	MarginPct decimal.Decimal
}

// EventCostTotal is the full cost of one target event.
type EventCostTotal struct {
	Event             string
	DirectCost        decimal.Decimal
	AllocatedOverhead decimal.Decimal
	TotalCost         decimal.Decimal
}

// EventShare is an event's apportionment weight.
type EventShare struct {
	Event    string
	Revenue  decimal.Decimal
	PctShare decimal.Decimal
}

// AllocationRecord is one overhead transaction apportioned to one event.
type AllocationRecord struct {
	Transaction     types.Transaction
	Event           string
	PctShare        decimal.Decimal
	AllocatedAmount decimal.Decimal
}

// CategoryTotal sums the corporate transactions of one category.
type CategoryTotal struct {
	Category types.Category
	Total    decimal.Decimal
	Count    int
}

// Result is the output of one Compute call.
type Result struct {
	// Categorized holds every input transaction with its category.
	Categorized []types.CategorizedTransaction

	// Summaries covers the target events present in the input, in
	// configured order.
	Summaries []EventSummary

	// Costs covers every configured target event, zero-filled.
	Costs []EventCostTotal

	// Corporate holds Personnel and TaxesGov transactions.
	Corporate []types.CategorizedTransaction

	// CorporateTotals sums Corporate per category.
	CorporateTotals []CategoryTotal

	// Overhead holds the transactions subject to apportionment.
	Overhead []types.CategorizedTransaction

	// Shares are the apportionment weights; empty when not apportioned.
	Shares []EventShare

	// Allocations is the apportionment memo, sorted by event then date.
	Allocations []AllocationRecord

	TotalRevenue  decimal.Decimal
	TotalOverhead decimal.Decimal

	// Apportioned is false when apportionment was skipped: no events,
	// total event revenue <= 0, or no overhead.
	Apportioned bool
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes cost allocation for a fixed set of target events.
type Engine struct {
	events      []string
	categorizer *categorizer.Categorizer
}

// New creates an engine. events fixes the order of every per-event output.
func New(events []string, c *categorizer.Categorizer) *Engine {
	return &Engine{events: append([]string{}, events...), categorizer: c}
}

// Events returns the configured target events.
func (e *Engine) Events() []string { return append([]string{}, e.events...) }

// Compute runs the allocation over txs. It never fails: empty and degenerate
// inputs produce zero-valued outputs.
func (e *Engine) Compute(txs []types.Transaction) *Result {
	res := &Result{
		Categorized:   e.categorizer.CategorizeAll(txs),
		TotalRevenue:  decimal.Zero,
		TotalOverhead: decimal.Zero,
	}

	isEvent := make(map[string]bool, len(e.events))
	for _, ev := range e.events {
		isEvent[ev] = true
	}

	// Group event rows and partition the others.
	byEvent := make(map[string][]types.Transaction)
	for _, ct := range res.Categorized {
		switch {
		case isEvent[ct.Classification]:
			byEvent[ct.Classification] = append(byEvent[ct.Classification], ct.Transaction)
		case ct.Category.IsCorporate():
			res.Corporate = append(res.Corporate, ct)
		case ct.Category == types.Overhead:
			res.Overhead = append(res.Overhead, ct)
			res.TotalOverhead = res.TotalOverhead.Add(ct.Amount)
		}
	}

	for _, ev := range e.events {
		rows, ok := byEvent[ev]
		if !ok {
			continue
		}
		s := Summarize(ev, rows)
		res.Summaries = append(res.Summaries, s)
		res.TotalRevenue = res.TotalRevenue.Add(s.Revenue)
	}

	res.CorporateTotals = corporateTotals(res.Corporate)

	skip := len(res.Summaries) == 0 ||
		!res.TotalRevenue.IsPositive() ||
		len(res.Overhead) == 0

	allocated := make(map[string]decimal.Decimal, len(e.events))
	if !skip {
		res.Apportioned = true
		res.Shares = Shares(res.Summaries, res.TotalRevenue)
		for _, sh := range res.Shares {
			allocated[sh.Event] = res.TotalOverhead.Mul(sh.PctShare)
		}
		res.Allocations = expand(res.Overhead, res.Shares)
	}

	for _, ev := range e.events {
		direct := decimal.Zero
		for _, tx := range byEvent[ev] {
			if tx.IsOutflow() {
				direct = direct.Add(tx.Amount)
			}
		}
		alloc, ok := allocated[ev]
		if !ok {
			alloc = decimal.Zero
		}
		res.Costs = append(res.Costs, EventCostTotal{
			Event:             ev,
			DirectCost:        direct,
			AllocatedOverhead: alloc,
			TotalCost:         direct.Add(alloc),
		})
	}

	return res
}

// =============================================================================
// HELPERS
// =============================================================================

// Summarize computes the margin summary of one event's transactions.
func Summarize(event string, txs []types.Transaction) EventSummary {
	s := EventSummary{
		Event:     event,
		Revenue:   decimal.Zero,
		Expense:   decimal.Zero,
		MarginPct: decimal.Zero,
	}
	for _, tx := range txs {
		switch {
		case tx.IsInflow():
			s.Revenue = s.Revenue.Add(tx.Amount)
		case tx.IsOutflow():
			s.Expense = s.Expense.Add(tx.Amount)
		}
	}
	s.Margin = s.Revenue.Add(s.Expense)
	if s.Revenue.IsPositive() {
		s.MarginPct = s.Margin.Div(s.Revenue).Mul(hundred)
	}
	return s
}

// Shares returns each event's revenue share of total. total must be positive.
func Shares(summaries []EventSummary, total decimal.Decimal) []EventShare {
	out := make([]EventShare, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, EventShare{
			Event:    s.Event,
			Revenue:  s.Revenue,
			PctShare: s.Revenue.Div(total),
		})
	}
	return out
}

// expand builds the overhead x event memo, ordered by event (share order)
// and then by date.
func expand(overhead []types.CategorizedTransaction, shares []EventShare) []AllocationRecord {
	records := make([]AllocationRecord, 0, len(overhead)*len(shares))
	for _, sh := range shares {
		start := len(records)
		for _, ct := range overhead {
			records = append(records, AllocationRecord{
				Transaction:     ct.Transaction,
				Event:           sh.Event,
				PctShare:        sh.PctShare,
				AllocatedAmount: ct.Amount.Mul(sh.PctShare),
			})
		}
		block := records[start:]
		sort.SliceStable(block, func(i, j int) bool {
			return block[i].Transaction.Date.Before(block[j].Transaction.Date)
		})
	}
	return records
}

// corporateTotals sums corporate rows per category, Personnel first.
func corporateTotals(corporate []types.CategorizedTransaction) []CategoryTotal {
	var out []CategoryTotal
	for _, cat := range []types.Category{types.Personnel, types.TaxesGov} {
		total := CategoryTotal{Category: cat, Total: decimal.Zero}
		for _, ct := range corporate {
			if ct.Category == cat {
				total.Total = total.Total.Add(ct.Amount)
				total.Count++
			}
		}
		if total.Count > 0 {
			out = append(out, total)
		}
	}
	return out
}

package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
	"github.com/ginjaninja78/eventledger/internal/types"
)

// =============================================================================
// TABLE MODEL
// =============================================================================
//
// Every writer renders the same tables; only cell formatting differs.

// ColumnKind tells writers how to format a cell.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindMoney
	KindPercent
	KindDate
	KindInt
)

// Column describes one table column.
type Column struct {
	// Key is the machine name used for JSON keys and XML tags.
	Key string

	// Title is the human-readable header.
	Title string

	Kind ColumnKind
}

// Table is one section of a report.
//
// Cell types by kind: KindText string, KindMoney and KindPercent
// decimal.Decimal (percent already scaled to 0..100), KindDate civil.Date,
// KindInt int.
type Table struct {
	Key     string
	Title   string
	Columns []Column
	Rows    [][]any
}

// MetaField is one line of run metadata.
type MetaField struct {
	Key   string
	Label string
	Value string
}

var hundred = decimal.NewFromInt(100)

// Meta returns the run metadata of b.
func Meta(b *analyzer.Bundle) []MetaField {
	sel := b.Selection
	fields := []MetaField{
		{"run_id", "Run ID", b.RunID},
		{"source", "Ledger", b.Source},
		{"ledger_hash", "SHA-256", b.LedgerHash},
		{"generated_at", "Generated", b.GeneratedAt.Format(time.RFC3339)},
		{"from", "From", dayFirst(sel.From)},
		{"to", "To", dayFirst(sel.To)},
		{"statuses", "Statuses", strings.Join(sel.Statuses, ", ")},
		{"rows_read", "Rows read", strconv.Itoa(b.Stats.RowsRead)},
		{"dropped_invalid_date", "Dropped (date)", strconv.Itoa(b.Stats.Dropped.InvalidDate)},
		{"dropped_invalid_amount", "Dropped (amount)", strconv.Itoa(b.Stats.Dropped.InvalidAmount)},
		{"selected", "Selected", strconv.Itoa(b.Stats.Selected)},
		{"apportioned", "Overhead apportioned", strconv.FormatBool(b.Allocation.Apportioned)},
		{"audited_event", "Audited event", b.AuditedEvent},
	}
	if tr := b.Liquidity.Trough; tr != nil {
		fields = append(fields,
			MetaField{"trough_date", "Lowest balance on", dayFirst(tr.Date)},
			MetaField{"trough_balance", "Lowest balance", tr.Balance.StringFixed(2)},
		)
	}
	return fields
}

// Tables builds every report table from b, in presentation order.
func Tables(b *analyzer.Bundle) []Table {
	alloc := b.Allocation

	overview := Table{
		Key:   "overview",
		Title: "Overview",
		Columns: []Column{
			{"metric", "Metric", KindText},
			{"amount", "Amount", KindMoney},
		},
		Rows: [][]any{
			{"Inflows", b.Cash.Inflows},
			{"Outflows", b.Cash.Outflows},
			{"Net balance", b.Cash.Net},
			{"Event revenue", alloc.TotalRevenue},
			{"Overhead", alloc.TotalOverhead},
			{"Possible duplicates", b.Audit.Impact},
		},
	}

	events := Table{
		Key:   "events",
		Title: "Event profitability",
		Columns: []Column{
			{"event", "Event", KindText},
			{"revenue", "Revenue", KindMoney},
			{"expense", "Expense", KindMoney},
			{"margin", "Margin", KindMoney},
			{"margin_pct", "Margin %", KindPercent},
		},
	}
	for _, s := range alloc.Summaries {
		events.Rows = append(events.Rows, []any{s.Event, s.Revenue, s.Expense, s.Margin, s.MarginPct})
	}

	costs := Table{
		Key:   "costs",
		Title: "Event costs",
		Columns: []Column{
			{"event", "Event", KindText},
			{"direct_cost", "Direct cost", KindMoney},
			{"allocated_overhead", "Allocated overhead", KindMoney},
			{"total_cost", "Total cost", KindMoney},
		},
	}
	for _, c := range alloc.Costs {
		costs.Rows = append(costs.Rows, []any{c.Event, c.DirectCost, c.AllocatedOverhead, c.TotalCost})
	}

	shares := Table{
		Key:   "shares",
		Title: "Apportionment weights",
		Columns: []Column{
			{"event", "Event", KindText},
			{"revenue", "Revenue", KindMoney},
			{"share_pct", "Share %", KindPercent},
		},
	}
	for _, s := range alloc.Shares {
		shares.Rows = append(shares.Rows, []any{s.Event, s.Revenue, s.PctShare.Mul(hundred)})
	}

	corporateTotals := Table{
		Key:   "corporate_totals",
		Title: "Corporate costs",
		Columns: []Column{
			{"category", "Category", KindText},
			{"total", "Total", KindMoney},
			{"count", "Entries", KindInt},
		},
	}
	for _, ct := range alloc.CorporateTotals {
		corporateTotals.Rows = append(corporateTotals.Rows, []any{ct.Category.Label(), ct.Total, ct.Count})
	}

	corporate := Table{
		Key:   "corporate",
		Title: "Corporate transactions",
		Columns: []Column{
			{"date", "Date", KindDate},
			{"description", "Description", KindText},
			{"counterparty", "Counterparty", KindText},
			{"category", "Category", KindText},
			{"amount", "Amount", KindMoney},
		},
	}
	for _, ct := range alloc.Corporate {
		corporate.Rows = append(corporate.Rows, []any{ct.Date, ct.Description, ct.Counterparty, ct.Category.Label(), ct.Amount})
	}

	allocations := Table{
		Key:   "allocations",
		Title: "Overhead apportionment",
		Columns: []Column{
			{"event", "Event", KindText},
			{"date", "Date", KindDate},
			{"description", "Description", KindText},
			{"counterparty", "Counterparty", KindText},
			{"amount", "Amount", KindMoney},
			{"share_pct", "Share %", KindPercent},
			{"allocated", "Allocated", KindMoney},
		},
	}
	for _, r := range alloc.Allocations {
		allocations.Rows = append(allocations.Rows, []any{
			r.Event, r.Transaction.Date, r.Transaction.Description, r.Transaction.Counterparty,
			r.Transaction.Amount, r.PctShare.Mul(hundred), r.AllocatedAmount,
		})
	}

	daily := Table{
		Key:   "daily",
		Title: "Daily cash flow",
		Columns: []Column{
			{"date", "Date", KindDate},
			{"flow", "Flow", KindMoney},
			{"balance", "Balance", KindMoney},
		},
	}
	for _, p := range b.Liquidity.Days {
		daily.Rows = append(daily.Rows, []any{p.Date, p.Flow, p.Balance})
	}

	duplicates := Table{
		Key:     "duplicates",
		Title:   "Possible duplicates: " + b.AuditedEvent,
		Columns: txColumns(),
	}
	for _, tx := range b.Audit.Flagged {
		duplicates.Rows = append(duplicates.Rows, txRow(tx))
	}

	audited := Table{
		Key:     "audited_costs",
		Title:   "All costs: " + b.AuditedEvent,
		Columns: txColumns(),
	}
	for _, tx := range b.Audit.Costs {
		audited.Rows = append(audited.Rows, txRow(tx))
	}

	return []Table{
		overview, events, costs, shares, corporateTotals, corporate,
		allocations, daily, duplicates, audited,
	}
}

func txColumns() []Column {
	return []Column{
		{"date", "Date", KindDate},
		{"counterparty", "Counterparty", KindText},
		{"description", "Description", KindText},
		{"status", "Status", KindText},
		{"kind", "Kind", KindText},
		{"amount", "Amount", KindMoney},
	}
}

func txRow(tx types.Transaction) []any {
	return []any{tx.Date, tx.Counterparty, tx.Description, tx.Status, tx.Kind, tx.Amount}
}

// =============================================================================
// CELL FORMATTING
// =============================================================================

// plainCell formats a cell for machine-readable output: two-decimal numbers
// and ISO dates.
func plainCell(v any, kind ColumnKind) string {
	switch kind {
	case KindMoney, KindPercent:
		if d, ok := v.(decimal.Decimal); ok {
			return d.StringFixed(2)
		}
	case KindDate:
		if d, ok := v.(civil.Date); ok {
			return d.String()
		}
	case KindInt:
		if n, ok := v.(int); ok {
			return strconv.Itoa(n)
		}
	}
	return fmt.Sprint(v)
}

// displayCell formats a cell for people: currency amounts, one-decimal
// percentages and day-first dates.
func displayCell(v any, kind ColumnKind, currency string) string {
	switch kind {
	case KindMoney:
		if d, ok := v.(decimal.Decimal); ok {
			return FormatMoney(d, currency)
		}
	case KindPercent:
		if d, ok := v.(decimal.Decimal); ok {
			return d.StringFixed(1) + "%"
		}
	case KindDate:
		if d, ok := v.(civil.Date); ok {
			return dayFirst(d)
		}
	}
	return plainCell(v, kind)
}

// FormatMoney renders amount in the given ISO 4217 currency. Unknown codes
// fall back to a two-decimal number followed by the code.
func FormatMoney(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Mul(decimal.New(1, int32(cur.Fraction))).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

func dayFirst(d civil.Date) string {
	if d == (civil.Date{}) {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

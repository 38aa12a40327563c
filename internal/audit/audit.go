// =============================================================================
// Event Ledger - Duplicate Auditor
// =============================================================================
//
// Heuristic scan for double-entered costs within one audited event.
//
// Scope: outflows whose classification equals the audited event.
// Two or more of them sharing the same (date, counterparty, absolute amount)
// form a duplicate group. Every member of every group is flagged; none is
// treated as the original. Coincidental matches are expected and reported
// the same way.
//
// =============================================================================

package audit

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/eventledger/internal/types"
)

// DuplicateGroup is a set of two or more costs sharing the same key.
type DuplicateGroup struct {
	Date         civil.Date
	Counterparty string
	AbsAmount    decimal.Decimal
	Members      []types.Transaction
}

// Impact returns the sum of the absolute amounts of the group's members.
func (g DuplicateGroup) Impact() decimal.Decimal {
	return g.AbsAmount.Mul(decimal.NewFromInt(int64(len(g.Members))))
}

// Report is the outcome of one audit.
type Report struct {
	Event string

	// Groups are ordered by date, then counterparty, then amount.
	Groups []DuplicateGroup

	// Flagged lists every member of every group, sorted by date.
	Flagged []types.Transaction

	// Impact is the sum of the absolute amounts of Flagged.
	Impact decimal.Decimal

	// Costs lists every cost in scope, most negative first.
	Costs []types.Transaction
}

// HasDuplicates reports whether any group was found.
func (r *Report) HasDuplicates() bool { return len(r.Groups) > 0 }

type groupKey struct {
	date         civil.Date
	counterparty string
	abs          string
}

// Audit scans the outflows of event in txs. It never fails: no costs or no
// duplicates yield an empty report with zero impact.
func Audit(txs []types.Transaction, event string) *Report {
	r := &Report{Event: event, Impact: decimal.Zero}

	groups := make(map[groupKey]*DuplicateGroup)
	var order []groupKey
	for _, tx := range txs {
		if tx.Classification != event || !tx.IsOutflow() {
			continue
		}
		r.Costs = append(r.Costs, tx)

		abs := tx.Amount.Abs()
		// String drops trailing zeros so 200 and 200.00 share a key.
		key := groupKey{date: tx.Date, counterparty: tx.Counterparty, abs: abs.String()}
		g, ok := groups[key]
		if !ok {
			g = &DuplicateGroup{Date: tx.Date, Counterparty: tx.Counterparty, AbsAmount: abs}
			groups[key] = g
			order = append(order, key)
		}
		g.Members = append(g.Members, tx)
	}

	for _, key := range order {
		g := groups[key]
		if len(g.Members) < 2 {
			continue
		}
		r.Groups = append(r.Groups, *g)
		r.Flagged = append(r.Flagged, g.Members...)
		r.Impact = r.Impact.Add(g.Impact())
	}

	sort.SliceStable(r.Groups, func(i, j int) bool {
		a, b := r.Groups[i], r.Groups[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Counterparty != b.Counterparty {
			return a.Counterparty < b.Counterparty
		}
		return a.AbsAmount.LessThan(b.AbsAmount)
	})
	sort.SliceStable(r.Flagged, func(i, j int) bool {
		return r.Flagged[i].Date.Before(r.Flagged[j].Date)
	})
	sort.SliceStable(r.Costs, func(i, j int) bool {
		return r.Costs[i].Amount.LessThan(r.Costs[j].Amount)
	})

	return r
}

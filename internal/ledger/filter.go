package ledger

import (
	"cloud.google.com/go/civil"

	"github.com/ginjaninja78/eventledger/internal/types"
)

// Filter selects the transactions under analysis.
type Filter struct {
	// From and To bound the date range, inclusive. A zero date leaves that
	// side open.
	From civil.Date
	To   civil.Date

	// Statuses is the accepted status set. nil accepts every status; an
	// empty non-nil slice accepts none.
	Statuses []string
}

// Match reports whether tx passes the filter.
func (f Filter) Match(tx types.Transaction) bool {
	if f.From != (civil.Date{}) && tx.Date.Before(f.From) {
		return false
	}
	if f.To != (civil.Date{}) && tx.Date.After(f.To) {
		return false
	}
	if f.Statuses == nil {
		return true
	}
	for _, s := range f.Statuses {
		if s == tx.Status {
			return true
		}
	}
	return false
}

// Apply returns the transactions that pass f, in ledger order, as a new
// slice. The ledger itself is never modified.
func (l *Ledger) Apply(f Filter) []types.Transaction {
	out := make([]types.Transaction, 0, len(l.Transactions))
	for _, tx := range l.Transactions {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// DefaultStatuses returns the preferred statuses that occur in available,
// in preferred order. When none occur, every available status is returned.
func DefaultStatuses(available, preferred []string) []string {
	present := make(map[string]bool, len(available))
	for _, s := range available {
		present[s] = true
	}

	var out []string
	for _, s := range preferred {
		if present[s] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = append([]string{}, available...)
	}
	return out
}

// =============================================================================
// Event Ledger - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - ledger
//   - categorizer
//   - allocation
//   - liquidity
//   - audit
//   - report
//
// =============================================================================

package types

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// Transaction represents a single cleaned ledger row.
// Amount and Date are always valid: rows failing either are dropped at load.
type Transaction struct {
	// ID is the ledger's own identifier for the row, kept verbatim.
	ID string

	// Date is the calendar day of the movement.
	Date civil.Date

	// Description is the free-text description of the movement.
	Description string

	// Counterparty is the supplier or client ("Fornecedor/Cliente").
	Counterparty string

	// Classification is either a target event name or any other label.
	Classification string

	// Amount is signed: positive is an inflow, negative an outflow.
	Amount decimal.Decimal

	// Status is the settlement status, e.g. "Pago" or "Agendado".
	Status string

	// Kind is the upper-cased movement kind.
	Kind string

	// Row is the 1-based record number in the source file; the header is 1.
	Row int
}

// IsInflow reports whether the transaction brings money in.
func (t Transaction) IsInflow() bool { return t.Amount.IsPositive() }

// IsOutflow reports whether the transaction takes money out.
func (t Transaction) IsOutflow() bool { return t.Amount.IsNegative() }

// =============================================================================
// CATEGORY TAXONOMY
// =============================================================================

// Category is the closed taxonomy every transaction is assigned to.
type Category int

const (
	// DirectEvent rows are classified under a target event.
	DirectEvent Category = iota

	// Personnel rows are payroll, benefits and HR costs.
	Personnel

	// TaxesGov rows are taxes and government levies.
	TaxesGov

	// Overhead is shared operating expense and the catch-all default.
	Overhead
)

// Categories lists every category in priority order.
var Categories = []Category{DirectEvent, Personnel, TaxesGov, Overhead}

// Label returns the human-readable name used in reports.
func (c Category) Label() string {
	switch c {
	case DirectEvent:
		return "Direto Evento"
	case Personnel:
		return "Pessoas (RH/Folha)"
	case TaxesGov:
		return "Receita Federal / Impostos"
	default:
		return "Overhead Operacional"
	}
}

// Key returns the stable machine name used in configuration and exports.
func (c Category) Key() string {
	switch c {
	case DirectEvent:
		return "direct_event"
	case Personnel:
		return "personnel"
	case TaxesGov:
		return "taxes_gov"
	default:
		return "overhead"
	}
}

// String implements fmt.Stringer.
func (c Category) String() string { return c.Key() }

// IsCorporate reports whether the category is reported but never apportioned.
func (c Category) IsCorporate() bool { return c == Personnel || c == TaxesGov }

// CategorizedTransaction pairs a transaction with its derived category.
type CategorizedTransaction struct {
	Transaction
	Category Category
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// Sum adds up the amounts of the given transactions.
func Sum(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

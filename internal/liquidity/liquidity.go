// =============================================================================
// Event Ledger - Liquidity Aggregator
// =============================================================================
//
// Cash views over a filtered transaction set:
//   - Summarize: total inflows, total outflows and net balance
//   - Aggregate: net flow per calendar day, the running balance and the
//     lowest point the balance reaches (the trough)
//
// The running balance starts at zero on the first day present; days with no
// movement are not emitted.
//
// =============================================================================

package liquidity

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/eventledger/internal/types"
)

// CashSummary holds the headline cash figures.
type CashSummary struct {
	// Inflows is the sum of positive amounts.
	Inflows decimal.Decimal

	// Outflows is the sum of negative amounts (a value <= 0).
	Outflows decimal.Decimal

	// Net is Inflows + Outflows.
	Net decimal.Decimal

	Count int
}

// DailyPoint is the movement of one calendar day.
type DailyPoint struct {
	Date    civil.Date
	Flow    decimal.Decimal
	Balance decimal.Decimal
}

// Trough is the lowest cumulative balance and the day it was first reached.
type Trough struct {
	Date    civil.Date
	Balance decimal.Decimal
}

// Series is the chronological daily cash series.
type Series struct {
	Days []DailyPoint

	// Trough is nil when Days is empty.
	Trough *Trough
}

// Summarize computes the cash KPIs of txs.
func Summarize(txs []types.Transaction) CashSummary {
	s := CashSummary{
		Inflows:  decimal.Zero,
		Outflows: decimal.Zero,
		Count:    len(txs),
	}
	for _, tx := range txs {
		switch {
		case tx.IsInflow():
			s.Inflows = s.Inflows.Add(tx.Amount)
		case tx.IsOutflow():
			s.Outflows = s.Outflows.Add(tx.Amount)
		}
	}
	s.Net = s.Inflows.Add(s.Outflows)
	return s
}

// Aggregate groups txs by day, accumulates the balance in date order and
// locates the trough. Ties keep the earliest day.
func Aggregate(txs []types.Transaction) *Series {
	flows := make(map[civil.Date]decimal.Decimal)
	for _, tx := range txs {
		flows[tx.Date] = flows[tx.Date].Add(tx.Amount)
	}

	dates := make([]civil.Date, 0, len(flows))
	for d := range flows {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := &Series{Days: make([]DailyPoint, 0, len(dates))}
	balance := decimal.Zero
	for _, d := range dates {
		flow := flows[d]
		balance = balance.Add(flow)
		series.Days = append(series.Days, DailyPoint{Date: d, Flow: flow, Balance: balance})

		if series.Trough == nil || balance.LessThan(series.Trough.Balance) {
			series.Trough = &Trough{Date: d, Balance: balance}
		}
	}

	return series
}

// Final returns the closing balance of the series, zero when empty.
func (s *Series) Final() decimal.Decimal {
	if len(s.Days) == 0 {
		return decimal.Zero
	}
	return s.Days[len(s.Days)-1].Balance
}

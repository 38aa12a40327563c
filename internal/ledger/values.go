// =============================================================================
// Event Ledger - Locale Value Parsing
// =============================================================================
//
// Ledger exports use Brazilian conventions: day-first dates and amounts such
// as "R$ 1.234,56". These helpers turn cell text into typed values and report
// failure with a boolean instead of an error: a bad cell drops its row, it
// never fails the load.
//
// =============================================================================

package ledger

import (
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// =============================================================================
// DATES
// =============================================================================

// dateLayouts are tried in order. Day-first layouts come before ISO ones; the
// single-digit verbs also accept zero-padded values.
var dateLayouts = buildDateLayouts()

func buildDateLayouts() []string {
	days := []string{
		"2/1/2006", "2/1/06",
		"2-1-2006", "2-1-06",
		"2.1.2006", "2.1.06",
		"2006-1-2", "2006/1/2",
	}
	times := []string{"", " 15:04", " 15:04:05", "T15:04:05"}

	layouts := make([]string, 0, len(days)*len(times)+1)
	for _, d := range days {
		for _, t := range times {
			layouts = append(layouts, d+t)
		}
	}
	return append(layouts, time.RFC3339)
}

// ParseDate parses a day-first date. Any time component is discarded.
//
// EXAMPLES:
//   "05/03/2024"          -> 2024-03-05
//   "5/3/24"              -> 2024-03-05
//   "2024-03-05"          -> 2024-03-05
//   "05/03/2024 14:30"    -> 2024-03-05
func ParseDate(raw string) (civil.Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return civil.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// =============================================================================
// AMOUNTS
// =============================================================================

// ParseAmount parses a locale-formatted amount.
//
// PARAMETERS:
//   - raw: The cell text.
//   - marker: The currency marker to strip, e.g. "R$". May be empty.
//
// RULES:
//   - The marker and all whitespace (NBSP included) are removed first.
//   - "1.234,56": both separators present, dots group thousands and the
//     comma is the decimal point.
//   - "1234,56": a lone comma is the decimal point.
//   - Anything else is parsed as is ("1234.56", "-200").
func ParseAmount(raw, marker string) (decimal.Decimal, bool) {
	s := raw
	if marker != "" {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, false
	}

	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

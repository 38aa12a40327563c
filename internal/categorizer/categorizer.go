// =============================================================================
// Event Ledger - Categorizer
// =============================================================================
//
// The categorizer assigns every transaction to exactly one category of the
// fixed taxonomy. Rules are evaluated in priority order and the first match
// wins:
//   1. Classification equals a target event     -> DirectEvent
//   2. Any personnel pattern matches             -> Personnel
//   3. Any taxes/government pattern matches      -> TaxesGov
//   4. Any overhead pattern matches              -> Overhead
//   5. Otherwise                                 -> Overhead
//
// Patterns are matched case-insensitively against the concatenation of
// description, counterparty and classification. The target events and the
// pattern lists are both configuration; neither is baked into control flow.
//
// =============================================================================

package categorizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/eventledger/internal/config"
	"github.com/ginjaninja78/eventledger/internal/types"
)

// rule is a compiled pattern list for one category.
type rule struct {
	category types.Category
	patterns []*regexp.Regexp
}

// Categorizer is safe for concurrent use once built.
type Categorizer struct {
	events map[string]bool
	rules  []rule
}

// New compiles the rule set.
//
// RETURNS:
//   - An error naming the category and pattern that failed to compile.
func New(targetEvents []string, rules config.CategoryRules) (*Categorizer, error) {
	c := &Categorizer{events: make(map[string]bool, len(targetEvents))}
	for _, ev := range targetEvents {
		c.events[ev] = true
	}

	ordered := []struct {
		category types.Category
		patterns []string
	}{
		{types.Personnel, rules.Personnel},
		{types.TaxesGov, rules.TaxesGov},
		{types.Overhead, rules.Overhead},
	}

	for _, o := range ordered {
		r := rule{category: o.category}
		for _, p := range o.patterns {
			re, err := Compile(p)
			if err != nil {
				return nil, fmt.Errorf("invalid %s pattern %q: %w", o.category.Key(), p, err)
			}
			r.patterns = append(r.patterns, re)
		}
		c.rules = append(c.rules, r)
	}

	return c, nil
}

// FromConfig builds a categorizer from the application configuration.
func FromConfig(cfg *config.Config) (*Categorizer, error) {
	return New(cfg.TargetEvents, cfg.Categories)
}

// Compile compiles a single case-insensitive pattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// Categorize returns the category for one ledger line. It is a total
// function: every input maps to a category.
func (c *Categorizer) Categorize(description, counterparty, classification string) types.Category {
	if c.events[classification] {
		return types.DirectEvent
	}

	text := strings.ToLower(description + " " + counterparty + " " + classification)
	for _, r := range c.rules {
		for _, re := range r.patterns {
			if re.MatchString(text) {
				return r.category
			}
		}
	}
	return types.Overhead
}

// CategorizeAll pairs every transaction with its category, preserving order.
func (c *Categorizer) CategorizeAll(txs []types.Transaction) []types.CategorizedTransaction {
	out := make([]types.CategorizedTransaction, len(txs))
	for i, tx := range txs {
		out[i] = types.CategorizedTransaction{
			Transaction: tx,
			Category:    c.Categorize(tx.Description, tx.Counterparty, tx.Classification),
		}
	}
	return out
}

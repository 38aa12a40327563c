package categorizer

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/eventledger/internal/config"
	"github.com/ginjaninja78/eventledger/internal/types"
)

func newDefault(t *testing.T) *Categorizer {
	t.Helper()
	c, err := FromConfig(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCategorize(t *testing.T) {
	c := newDefault(t)

	tests := []struct {
		name            string
		desc, cp, class string
		want            types.Category
	}{
		{"target event", "Ingressos", "Cliente", "VIP Deutsch", types.DirectEvent},
		{"event wins over payroll words", "Folha extra", "RH", "Nuevo_sun", types.DirectEvent},
		{"payroll", "Folha de pagamento", "Empresa", "Administrativo", types.Personnel},
		{"salary accent", "Salário março", "Fulano", "Geral", types.Personnel},
		{"rh word boundary", "Consultoria", "RH Parceiros", "Geral", types.Personnel},
		{"upper case", "PLANO DE SAÚDE", "Operadora", "Geral", types.Personnel},
		{"darf", "Pagamento DARF", "Governo", "Geral", types.TaxesGov},
		{"receita federal", "Guia", "Receita Federal", "Geral", types.TaxesGov},
		{"rent", "Aluguel sala", "Imobiliária", "Geral", types.Overhead},
		{"software", "Assinatura software", "Fornecedor", "Geral", types.Overhead},
		{"default", "Diversos", "Alguém", "Outros", types.Overhead},
		{"near miss on event", "Ingressos", "Cliente", "vip deutsch", types.Overhead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Categorize(tt.desc, tt.cp, tt.class); got != tt.want {
				t.Errorf("Categorize(%q, %q, %q) = %s, want %s", tt.desc, tt.cp, tt.class, got, tt.want)
			}
		})
	}
}

func TestPriorityPersonnelBeforeTaxes(t *testing.T) {
	c := newDefault(t)
	// "inss" is payroll vocabulary and "imposto" tax vocabulary.
	if got := c.Categorize("INSS e imposto", "Governo", "Geral"); got != types.Personnel {
		t.Fatalf("expected personnel to win, got %s", got)
	}
}

func TestTargetEventsAreConfiguration(t *testing.T) {
	rules := config.DefaultCategoryRules()
	c, err := New([]string{"Festival"}, rules)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Categorize("Ingressos", "Cliente", "Festival"); got != types.DirectEvent {
		t.Fatalf("configured event not recognized, got %s", got)
	}
	if got := c.Categorize("Ingressos", "Cliente", "VIP Deutsch"); got == types.DirectEvent {
		t.Fatal("unconfigured event must not be direct")
	}
}

func TestCustomRules(t *testing.T) {
	c, err := New(nil, config.CategoryRules{
		Personnel: []string{`payroll`},
		TaxesGov:  []string{`\birs\b`},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Categorize("Monthly PAYROLL", "", ""); got != types.Personnel {
		t.Fatalf("expected personnel, got %s", got)
	}
	if got := c.Categorize("IRS quarterly", "", ""); got != types.TaxesGov {
		t.Fatalf("expected taxes, got %s", got)
	}
	if got := c.Categorize("Firstrs", "", ""); got != types.Overhead {
		t.Fatalf("expected overhead default, got %s", got)
	}
}

func TestInvalidPattern(t *testing.T) {
	_, err := New(nil, config.CategoryRules{TaxesGov: []string{`(unclosed`}})
	if err == nil {
		t.Fatal("expected compile error")
	}
	if !strings.Contains(err.Error(), "taxes_gov") {
		t.Fatalf("error should name the category: %v", err)
	}
}

func TestCategorizeAll(t *testing.T) {
	c := newDefault(t)
	txs := []types.Transaction{
		{ID: "1", Classification: "Winterfall"},
		{ID: "2", Description: "Energia elétrica"},
	}
	out := c.CategorizeAll(txs)
	if len(out) != 2 || out[0].Category != types.DirectEvent || out[1].Category != types.Overhead {
		t.Fatalf("unexpected categorization %+v", out)
	}
	if out[1].ID != "2" {
		t.Fatal("order not preserved")
	}
}

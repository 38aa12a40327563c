package analyzer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/eventledger/internal/config"
	"github.com/ginjaninja78/eventledger/internal/ledger"
	"github.com/ginjaninja78/eventledger/internal/logger"
)

const sample = `ID;Data;Descrição;Fornecedor/Cliente;Classificação;Valor;Status;Tipo
1;01/01/2024;Ingressos;Bilheteria;VIP Deutsch;R$ 1.000,00;Pago;entrada
2;01/01/2024;Buffet;Buffet SA;VIP Deutsch;-200,00;Pago;saida
3;01/01/2024;Buffet;Buffet SA;VIP Deutsch;-200,00;Pago;saida
4;01/01/2024;Ingressos;Bilheteria;Nuevo_sun;500,00;Agendado;entrada
5;02/01/2024;aluguel;Imobiliária;Administrativo;-300,00;Pago;saida
6;03/01/2024;Folha;Empresa;RH;-1.500,00;Pendente;saida
7;xx/01/2024;Linha ruim;Ninguém;Outros;-1,00;Pago;saida
`

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestRunDefaults(t *testing.T) {
	a := newAnalyzer(t)
	b, err := a.Run(context.Background(), []byte(sample), "sample.csv", Selection{})
	if err != nil {
		t.Fatal(err)
	}

	if b.RunID == "" || b.Source != "sample.csv" || b.LedgerHash == "" {
		t.Fatalf("bundle not stamped: %+v", b)
	}
	if b.Stats.RowsRead != 7 || b.Stats.Dropped.InvalidDate != 1 || b.Stats.Loaded != 6 {
		t.Fatalf("unexpected stats %+v", b.Stats)
	}

	// Default statuses exclude "Pendente": the payroll row is filtered out.
	if strings.Join(b.Selection.Statuses, ",") != "Pago,Agendado" {
		t.Fatalf("unexpected statuses %v", b.Selection.Statuses)
	}
	if b.Stats.Selected != 5 {
		t.Fatalf("expected 5 selected, got %d", b.Stats.Selected)
	}
	wantFrom := civil.Date{Year: 2024, Month: 1, Day: 1}
	wantTo := civil.Date{Year: 2024, Month: 1, Day: 3}
	if b.Selection.From != wantFrom || b.Selection.To != wantTo {
		t.Fatalf("bounds not resolved: %s..%s", b.Selection.From, b.Selection.To)
	}

	if !b.Allocation.Apportioned {
		t.Fatal("expected apportionment")
	}
	if len(b.Allocation.Corporate) != 0 {
		t.Fatal("filtered payroll row must not reach the engine")
	}
	if !b.Cash.Net.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("net = %s, want 800", b.Cash.Net)
	}
	if b.Liquidity.Trough == nil || b.Liquidity.Trough.Date.Day != 2 {
		t.Fatalf("unexpected trough %+v", b.Liquidity.Trough)
	}
	if !b.Audit.HasDuplicates() || !b.Audit.Impact.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected duplicate buffet costs, got %+v", b.Audit)
	}
	if b.AuditedEvent != "VIP Deutsch" || len(b.Events) != 3 {
		t.Fatalf("unexpected events %v / %s", b.Events, b.AuditedEvent)
	}
}

func TestRunStatusFallback(t *testing.T) {
	data := strings.ReplaceAll(strings.ReplaceAll(sample, ";Pago;", ";Liquidado;"), ";Agendado;", ";Liquidado;")
	a := newAnalyzer(t)
	b, err := a.Run(context.Background(), []byte(data), "fallback.csv", Selection{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(b.Selection.Statuses, ",") != "Liquidado,Pendente" {
		t.Fatalf("expected every status, got %v", b.Selection.Statuses)
	}
	if b.Stats.Selected != b.Stats.Loaded {
		t.Fatalf("fallback should select everything: %d of %d", b.Stats.Selected, b.Stats.Loaded)
	}
}

func TestRunExplicitSelection(t *testing.T) {
	a := newAnalyzer(t)
	b, err := a.Run(context.Background(), []byte(sample), "sample.csv", Selection{
		From:     civil.Date{Year: 2024, Month: 1, Day: 2},
		Statuses: []string{"Pago", "Pendente"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.Stats.Selected != 2 {
		t.Fatalf("expected 2 rows, got %d", b.Stats.Selected)
	}
	if b.Allocation.Apportioned {
		t.Fatal("no event revenue in range: apportionment must be skipped")
	}
	if len(b.Allocation.CorporateTotals) != 1 {
		t.Fatalf("expected payroll total, got %+v", b.Allocation.CorporateTotals)
	}

	none, err := a.Run(context.Background(), []byte(sample), "sample.csv", Selection{Statuses: []string{}})
	if err != nil {
		t.Fatal(err)
	}
	if none.Stats.Selected != 0 || none.Liquidity.Trough != nil {
		t.Fatalf("empty status set must select nothing: %+v", none.Stats)
	}
}

func TestRunUsesCache(t *testing.T) {
	cache := ledger.NewCache()
	a, err := New(config.DefaultConfig(), WithCache(cache))
	if err != nil {
		t.Fatal(err)
	}
	first, err := a.Run(context.Background(), []byte(sample), "a.csv", Selection{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Run(context.Background(), []byte(sample), "a.csv", Selection{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Stats.CacheHit || !second.Stats.CacheHit {
		t.Fatalf("cache hits = %v, %v", first.Stats.CacheHit, second.Stats.CacheHit)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 cached ledger, got %d", cache.Len())
	}
	if first.RunID == second.RunID {
		t.Fatal("each run needs its own id")
	}
}

func TestRunLoadErrors(t *testing.T) {
	a := newAnalyzer(t)

	_, err := a.Run(context.Background(), []byte("ID;Data\n1;01/01/2024\n"), "bad.csv", Selection{})
	var schemaErr *ledger.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}

	_, err = a.Run(context.Background(), []byte("   \n"), "empty.csv", Selection{})
	var parseErr *ledger.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestRunLogsToContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf))

	a := newAnalyzer(t)
	if _, err := a.Run(ctx, []byte(sample), "sample.csv", Selection{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "analysis complete") || !strings.Contains(out, "possible duplicate costs") {
		t.Fatalf("expected pipeline logs, got %s", out)
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a, err := New(config.DefaultConfig(), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatal(err)
	}
	b, err := a.RunFile(context.Background(), path, Selection{})
	if err != nil {
		t.Fatal(err)
	}
	if b.Source != "ledger.csv" || !b.GeneratedAt.Equal(fixed) {
		t.Fatalf("unexpected source/time %s %s", b.Source, b.GeneratedAt)
	}

	if _, err := a.RunFile(context.Background(), filepath.Join(dir, "missing.csv"), Selection{}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestNewRejectsBadPattern(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Categories.Overhead = []string{"[unclosed"}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected a pattern error")
	}
}

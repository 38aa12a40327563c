package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/eventledger/internal/config"
)

const header = "ID;Data;Descrição;Fornecedor/Cliente;Classificação;Valor;Status;Tipo\n"

func defaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig(), "test.csv")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.234,56", "1234.56", true},
		{"1234,56", "1234.56", true},
		{"R$ 50,00", "50", true},
		{"R$ 1.000,00", "1000", true},
		{"-1.234,56", "-1234.56", true},
		{"R$ -200,00", "-200", true},
		{"1234.56", "1234.56", true},
		{" 300 ", "300", true},
		{"", "", false},
		{"R$", "", false},
		{"abc", "", false},
		{"1,234,56", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in, "R$")
		if ok != tt.ok {
			t.Errorf("ParseAmount(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := civil.Date{Year: 2024, Month: 3, Day: 5}
	for _, in := range []string{"05/03/2024", "5/3/2024", "05/03/24", "05-03-2024", "05.03.2024", "2024-03-05", "05/03/2024 14:30", "05/03/2024 14:30:59", " 05/03/2024 "} {
		got, ok := ParseDate(in)
		if !ok {
			t.Errorf("ParseDate(%q) failed", in)
			continue
		}
		if got != want {
			t.Errorf("ParseDate(%q) = %s, want %s", in, got, want)
		}
	}

	for _, in := range []string{"", "not a date", "31/02/2024", "2024/13/45"} {
		if _, ok := ParseDate(in); ok {
			t.Errorf("ParseDate(%q) should fail", in)
		}
	}
}

func TestParseSemicolon(t *testing.T) {
	data := header +
		"1;01/01/2024;Ingressos;Cliente A;VIP Deutsch;1.000,00;Pago;receita\n" +
		"2;01/01/2024; Buffet ;Fornecedor B;VIP Deutsch;-200,00;Pago; despesa \n" +
		"\n" +
		"3;02/01/2024;Aluguel;Imobiliária;Administrativo;R$ -300,00;Agendado;DESPESA\n"

	l, err := Parse([]byte(data), defaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if l.Delimiter != ';' {
		t.Fatalf("expected ';', got %q", l.Delimiter)
	}
	if len(l.Transactions) != 3 || l.RowsRead != 3 {
		t.Fatalf("expected 3 transactions from 3 rows, got %d from %d", len(l.Transactions), l.RowsRead)
	}

	tx := l.Transactions[1]
	if tx.Description != "Buffet" || tx.Kind != "DESPESA" {
		t.Fatalf("fields not trimmed/normalized: %+v", tx)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("unexpected amount %s", tx.Amount)
	}
	if tx.Row != 3 {
		t.Fatalf("expected row 3, got %d", tx.Row)
	}
	if l.Transactions[2].Date != (civil.Date{Year: 2024, Month: 1, Day: 2}) {
		t.Fatalf("date not parsed day-first: %s", l.Transactions[2].Date)
	}
}

func TestParseComma(t *testing.T) {
	data := "ID, Data ,Descrição,Fornecedor/Cliente,Classificação,Valor,Status,Tipo\n" +
		`1,15/02/2024,Venda,Cliente,Nuevo_sun,"1.500,50",Pago,Receita` + "\n"

	l, err := Parse([]byte(data), defaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if l.Delimiter != ',' {
		t.Fatalf("expected ',', got %q", l.Delimiter)
	}
	if len(l.Transactions) != 1 || !l.Transactions[0].Amount.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("unexpected transactions %+v", l.Transactions)
	}
}

func TestParseDropsInvalidRows(t *testing.T) {
	data := header +
		"1;01/01/2024;A;X;VIP Deutsch;100;Pago;R\n" +
		"2;not-a-date;B;X;VIP Deutsch;100;Pago;R\n" +
		"3;32/01/2024;C;X;VIP Deutsch;100;Pago;R\n" +
		"4;03/01/2024;D;X;VIP Deutsch;abc;Pago;R\n" +
		"5;04/01/2024;E;X;VIP Deutsch;;Pago;R\n"

	l, err := Parse([]byte(data), defaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if l.Dropped.InvalidDate != 2 || l.Dropped.InvalidAmount != 2 {
		t.Fatalf("unexpected drop stats %+v", l.Dropped)
	}
	if len(l.Transactions) != l.RowsRead-l.Dropped.Total() {
		t.Fatalf("dataset size should shrink by exactly the dropped rows: %d vs %d-%d", len(l.Transactions), l.RowsRead, l.Dropped.Total())
	}
	if l.Transactions[0].ID != "1" {
		t.Fatalf("unexpected surviving row %+v", l.Transactions[0])
	}
}

func TestParseMissingColumn(t *testing.T) {
	data := "ID;Data;Descrição;Fornecedor/Cliente;Classificação;Status;Tipo\n1;01/01/2024;A;B;C;Pago;R\n"

	_, err := Parse([]byte(data), defaultOptions())
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "Valor" {
		t.Fatalf("expected missing Valor, got %q", schemaErr.Column)
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse([]byte("  \n"), defaultOptions())
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseUnsupportedEncoding(t *testing.T) {
	opts := defaultOptions()
	opts.Settings.Encoding = "EBCDIC"
	_, err := Parse([]byte(header), opts)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !strings.Contains(parseErr.Error(), "EBCDIC") {
		t.Fatalf("message should name the encoding: %q", parseErr.Error())
	}
}

func TestParseLatin1AndBOM(t *testing.T) {
	utf := header + "1;01/01/2024;Manutenção;Fornecedor;Administrativo;-10,00;Pago;D\n"

	latin, err := charmap.ISO8859_1.NewEncoder().String(utf)
	if err != nil {
		t.Fatal(err)
	}
	opts := defaultOptions()
	opts.Settings.Encoding = "ISO-8859-1"
	l, err := Parse([]byte(latin), opts)
	if err != nil {
		t.Fatal(err)
	}
	if l.Transactions[0].Description != "Manutenção" {
		t.Fatalf("latin1 not decoded: %q", l.Transactions[0].Description)
	}

	l, err = Parse([]byte("\xef\xbb\xbf"+utf), defaultOptions())
	if err != nil {
		t.Fatalf("BOM should be stripped: %v", err)
	}
	if len(l.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(l.Transactions))
	}
}

func TestParseDecomposedHeaders(t *testing.T) {
	// "Descrição" and "Classificação" written with combining marks.
	decomposed := "ID;Data;Descric\u0327a\u0303o;Fornecedor/Cliente;Classificac\u0327a\u0303o;Valor;Status;Tipo\n" +
		"1;01/01/2024;A;B;C;1;Pago;R\n"
	if _, err := Parse([]byte(decomposed), defaultOptions()); err != nil {
		t.Fatalf("decomposed headers should match: %v", err)
	}
}

func TestParseExplicitDelimiter(t *testing.T) {
	data := strings.ReplaceAll(header, ";", "|") + "1|01/01/2024|A|B|C|1,5|Pago|R\n"
	opts := defaultOptions()
	opts.Settings.Delimiter = "pipe"
	l, err := Parse([]byte(data), opts)
	if err != nil {
		t.Fatal(err)
	}
	if l.Delimiter != '|' || !l.Transactions[0].Amount.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("unexpected result %+v", l)
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ledger.csv")
	if err := os.WriteFile(p, []byte(header+"1;01/01/2024;A;B;C;1;Pago;R\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := defaultOptions()
	opts.Source = ""
	l, err := Load(p, opts)
	if err != nil {
		t.Fatal(err)
	}
	if l.Source != p || l.Hash == "" {
		t.Fatalf("unexpected ledger metadata %q %q", l.Source, l.Hash)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv"), opts); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStatusesAndBounds(t *testing.T) {
	data := header +
		"1;03/01/2024;A;B;C;1;Pago;R\n" +
		"2;01/01/2024;A;B;C;1;Agendado;R\n" +
		"3;05/01/2024;A;B;C;1;Pago;R\n"
	l, err := Parse([]byte(data), defaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	st := l.Statuses()
	if len(st) != 2 || st[0] != "Agendado" || st[1] != "Pago" {
		t.Fatalf("unexpected statuses %v", st)
	}
	from, to, ok := l.Bounds()
	if !ok || from.Day != 1 || to.Day != 5 {
		t.Fatalf("unexpected bounds %s %s %v", from, to, ok)
	}

	empty := &Ledger{}
	if _, _, ok := empty.Bounds(); ok {
		t.Fatal("empty ledger should have no bounds")
	}
}

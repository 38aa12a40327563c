package report

// =============================================================================
// XLSX OUTPUT
// =============================================================================
//
// WORKBOOK STRUCTURE:
//   - "Overview": run metadata, then the overview table
//   - one worksheet per remaining table, titled after the table
//
// Amounts and percentages are numeric cells with a two-decimal format so the
// workbook stays usable for further calculation. Dates are real date cells.
//
// =============================================================================

import (
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
)

// maxSheetName is the worksheet name limit imposed by Excel.
const maxSheetName = 31

// Built-in number formats.
const (
	numFmtTwoDecimals = 4  // #,##0.00
	numFmtDate        = 14 // short date
)

// WriteXLSX writes b as a workbook at path.
func WriteXLSX(path string, b *analyzer.Bundle) error {
	f, err := buildWorkbook(b)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeXLSXTo(w io.Writer, b *analyzer.Bundle) error {
	f, err := buildWorkbook(b)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type workbookStyles struct {
	header int
	number int
	date   int
	label  int
}

func buildWorkbook(b *analyzer.Bundle) (*excelize.File, error) {
	f := excelize.NewFile()

	styles, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	tables := Tables(b)

	// =========================================================================
	// OVERVIEW SHEET
	// =========================================================================

	const overview = "Overview"
	if err := f.SetSheetName("Sheet1", overview); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	row := 1
	for _, m := range Meta(b) {
		if err := setRow(f, overview, row, []any{m.Label, m.Value}); err != nil {
			f.Close()
			return nil, err
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellStyle(overview, cell, cell, styles.label)
		row++
	}
	row++
	if err := writeTable(f, overview, row, tables[0], styles); err != nil {
		f.Close()
		return nil, err
	}
	f.SetColWidth(overview, "A", "A", 24)
	f.SetColWidth(overview, "B", "B", 40)

	// =========================================================================
	// ONE SHEET PER TABLE
	// =========================================================================

	for _, t := range tables[1:] {
		name := sheetName(t.Title)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := writeTable(f, name, 1, t, styles); err != nil {
			f.Close()
			return nil, err
		}
		last, _ := excelize.ColumnNumberToName(len(t.Columns))
		f.SetColWidth(name, "A", last, 18)
	}

	f.SetActiveSheet(0)
	return f, nil
}

func newStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.number, err = f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals}); err != nil {
		return s, fmt.Errorf("failed to create number style: %w", err)
	}
	if s.date, err = f.NewStyle(&excelize.Style{NumFmt: numFmtDate}); err != nil {
		return s, fmt.Errorf("failed to create date style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("failed to create label style: %w", err)
	}
	return s, nil
}

// writeTable writes a header row at startRow followed by the table rows.
func writeTable(f *excelize.File, sheet string, startRow int, t Table, styles workbookStyles) error {
	if err := setRow(f, sheet, startRow, toAny(titles(t.Columns))); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, startRow)
	last, _ := excelize.CoordinatesToCellName(len(t.Columns), startRow)
	f.SetCellStyle(sheet, first, last, styles.header)

	for i, row := range t.Rows {
		r := startRow + 1 + i
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = xlsxValue(v, t.Columns[j].Kind)
		}
		if err := setRow(f, sheet, r, cells); err != nil {
			return err
		}
		for j, col := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(j+1, r)
			switch col.Kind {
			case KindMoney, KindPercent:
				f.SetCellStyle(sheet, cell, cell, styles.number)
			case KindDate:
				f.SetCellStyle(sheet, cell, cell, styles.date)
			}
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// xlsxValue converts a cell to a value excelize stores natively.
func xlsxValue(v any, kind ColumnKind) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case civil.Date:
		return x.In(time.UTC)
	case int:
		return x
	}
	return plainCell(v, kind)
}

// sheetName trims a title to a valid worksheet name.
func sheetName(title string) string {
	r := []rune(title)
	for i, c := range r {
		switch c {
		case ':', '\\', '/', '?', '*', '[', ']':
			r[i] = '-'
		}
	}
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

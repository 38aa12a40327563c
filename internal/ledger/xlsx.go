package ledger

// =============================================================================
// XLSX LEDGERS
// =============================================================================
//
// Some ledgers are exported as workbooks instead of CSV. The first worksheet
// is read with the same header and row rules as a CSV export:
//
//   | ID | Data       | Descrição | Fornecedor/Cliente | Classificação | Valor   | ... |
//   |----|------------|-----------|--------------------|---------------|---------|-----|
//   | 1  | 01/01/2024 | Ingressos | Bilheteria         | VIP Deutsch   | 1000,00 | ... |
//
// Cells are read raw: a date cell arrives as a spreadsheet serial number and
// is converted before day-first parsing, so the workbook's display format
// (often month-first) never matters.
//
// =============================================================================

import (
	"bytes"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// xlsxSignature is the ZIP local file header every XLSX file starts with.
var xlsxSignature = []byte("PK\x03\x04")

func isXLSX(data []byte) bool {
	return bytes.HasPrefix(data, xlsxSignature)
}

// parseXLSX reads the first worksheet of a workbook.
func parseXLSX(data []byte, opts Options) (*Ledger, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newParseError(err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, &ParseError{Message: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, newParseError(err)
	}

	return build(data, rows, 0, opts, serialToDate)
}

// serialToDate converts a spreadsheet serial date ("45292") to day-first
// text. Anything else is returned unchanged for the regular date parser.
func serialToDate(raw string) string {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial <= 0 {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format("02/01/2006")
}

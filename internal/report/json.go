package report

import (
	"encoding/json"
	"io"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
)

type jsonTable struct {
	Title string           `json:"title"`
	Rows  []map[string]any `json:"rows"`
}

type jsonDocument struct {
	Meta   map[string]string    `json:"meta"`
	Tables map[string]jsonTable `json:"tables"`
}

// WriteJSON renders b as one JSON document. Amounts and percentages are
// JSON numbers with two decimals; dates are ISO 8601 strings.
func WriteJSON(w io.Writer, b *analyzer.Bundle) error {
	doc := jsonDocument{
		Meta:   make(map[string]string),
		Tables: make(map[string]jsonTable),
	}
	for _, m := range Meta(b) {
		doc.Meta[m.Key] = m.Value
	}

	for _, t := range Tables(b) {
		jt := jsonTable{Title: t.Title, Rows: make([]map[string]any, 0, len(t.Rows))}
		for _, row := range t.Rows {
			obj := make(map[string]any, len(row))
			for i, v := range row {
				col := t.Columns[i]
				switch col.Kind {
				case KindMoney, KindPercent:
					if d, ok := v.(decimal.Decimal); ok {
						obj[col.Key] = json.Number(d.StringFixed(2))
						continue
					}
				case KindInt:
					obj[col.Key] = v
					continue
				}
				obj[col.Key] = plainCell(v, col.Kind)
			}
			jt.Rows = append(jt.Rows, obj)
		}
		doc.Tables[t.Key] = jt
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

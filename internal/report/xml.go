package report

// =============================================================================
// XML OUTPUT
// =============================================================================
//
// XML STRUCTURE:
//
//   <analysis run_id="..." source="ledger.csv">
//     <meta>
//       <run_id>...</run_id>
//       <from>01/01/2024</from>
//     </meta>
//     <table name="events" title="Event profitability">
//       <row n="1">
//         <event>VIP Deutsch</event>
//         <revenue>1000.00</revenue>
//       </row>
//     </table>
//   </analysis>
//
// Row numbering restarts at 1 in every table. Empty values are written as
// self-closing elements.
//
// =============================================================================

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/eventledger/internal/analyzer"
)

const xmlIndent = "  "

// xmlAttr is a name/value attribute pair.
type xmlAttr struct {
	Name  string
	Value string
}

// xmlElement is a generic XML element with either a text value or children.
type xmlElement struct {
	Name       string
	Attributes []xmlAttr
	Value      string
	Children   []xmlElement
}

// WriteXML renders b as an XML document.
func WriteXML(w io.Writer, b *analyzer.Bundle) error {
	root := xmlElement{
		Name: "analysis",
		Attributes: []xmlAttr{
			{"run_id", b.RunID},
			{"source", b.Source},
		},
	}

	meta := xmlElement{Name: "meta"}
	for _, m := range Meta(b) {
		meta.Children = append(meta.Children, xmlElement{Name: m.Key, Value: m.Value})
	}
	root.Children = append(root.Children, meta)

	for _, t := range Tables(b) {
		table := xmlElement{
			Name:       "table",
			Attributes: []xmlAttr{{"name", t.Key}, {"title", t.Title}},
		}
		for i, row := range t.Rows {
			r := xmlElement{Name: "row", Attributes: []xmlAttr{{"n", strconv.Itoa(i + 1)}}}
			for j, v := range row {
				col := t.Columns[j]
				r.Children = append(r.Children, xmlElement{Name: col.Key, Value: plainCell(v, col.Kind)})
			}
			table.Children = append(table.Children, r)
		}
		root.Children = append(root.Children, table)
	}

	var buffer bytes.Buffer
	buffer.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	writeElement(&buffer, root, 0)

	_, err := w.Write(buffer.Bytes())
	return err
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element xmlElement, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(xmlIndent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.Name)
	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name, escapeXML(attr.Value)))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(xmlIndent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

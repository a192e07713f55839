package tabular

import (
	"html/template"
	"math"
	"strconv"
	"strings"
)

const tableClasses = "table table-striped table-bordered table-hover"

// RenderHTML renders a cleaned table as an HTML fragment suitable for
// direct injection into the dashboard. Numbers carry thousands
// separators: integer values with no decimals, everything else with
// exactly two. Missing values render as empty cells.
func RenderHTML(t *Table) template.HTML {
	var b strings.Builder
	b.WriteString(`<table border="1" class="dataframe ` + tableClasses + "\">\n")

	b.WriteString("  <thead>\n    <tr style=\"text-align: right;\">\n")
	for _, col := range t.Columns {
		b.WriteString("      <th>")
		b.WriteString(template.HTMLEscapeString(col.Name))
		b.WriteString("</th>\n")
	}
	b.WriteString("    </tr>\n  </thead>\n")

	b.WriteString("  <tbody>\n")
	for row := 0; row < t.Rows(); row++ {
		b.WriteString("    <tr>\n")
		for _, col := range t.Columns {
			b.WriteString("      <td>")
			b.WriteString(template.HTMLEscapeString(FormatCell(col.Cells[row])))
			b.WriteString("</td>\n")
		}
		b.WriteString("    </tr>\n")
	}
	b.WriteString("  </tbody>\n</table>")

	return template.HTML(b.String())
}

// FormatCell renders one cell per the dashboard formatting rule.
func FormatCell(c Cell) string {
	switch c.Kind {
	case CellNumber:
		return FormatNumber(c.Number)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// FormatNumber formats a float with thousands separators; integer
// values get no decimal places, others exactly two.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return groupThousands(strconv.FormatFloat(v, 'f', 0, 64))
	}
	return groupThousands(strconv.FormatFloat(v, 'f', 2, 64))
}

// groupThousands inserts commas into the integer part of a formatted
// decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + fracPart
}

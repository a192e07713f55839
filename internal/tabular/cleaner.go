package tabular

import (
	"strconv"
	"strings"
)

// Clean normalizes a raw table into its cleaned form. Text columns
// other than code columns get thousands separators and percent signs
// stripped, then the whole column is coerced to numeric when every
// non-missing cell parses; otherwise the column keeps the post-strip
// text. Code columns always stay text, whatever their content. When
// both the answer-category and code columns exist, the code cell of
// aggregate total rows is blanked.
//
// The input table is not mutated. Cleaning an already-cleaned table is
// a no-op.
func Clean(t *Table) *Table {
	if t == nil {
		return nil
	}
	out := &Table{Name: t.Name, Columns: make([]Column, 0, len(t.Columns))}
	for i := range t.Columns {
		out.Columns = append(out.Columns, cleanColumn(&t.Columns[i]))
	}
	blankTotalRowCodes(out)
	return out
}

// cleanColumn applies per-column normalization and coercion.
func cleanColumn(col *Column) Column {
	if col.Kind == ColumnNumeric {
		return col.clone()
	}

	cleaned := Column{Name: col.Name, Kind: ColumnText, Cells: make([]Cell, len(col.Cells))}
	if IsCodeColumn(col.Name) {
		// Opaque identifiers: keep the text form untouched.
		for i, cell := range col.Cells {
			if cell.Kind == CellMissing {
				cleaned.Cells[i] = MissingCell()
				continue
			}
			cleaned.Cells[i] = TextCell(cell.String())
		}
		return cleaned
	}

	numbers := make([]float64, len(col.Cells))
	coercible := true
	for i, cell := range col.Cells {
		if cell.Kind == CellMissing {
			cleaned.Cells[i] = MissingCell()
			continue
		}
		s := stripNumericNoise(cell.String())
		cleaned.Cells[i] = TextCell(s)
		if !coercible {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			// Silent fallback: the column stays text.
			coercible = false
			continue
		}
		numbers[i] = v
	}

	if !coercible || !hasValue(cleaned.Cells) {
		return cleaned
	}

	numeric := Column{Name: col.Name, Kind: ColumnNumeric, Cells: make([]Cell, len(col.Cells))}
	for i, cell := range cleaned.Cells {
		if cell.Kind == CellMissing {
			numeric.Cells[i] = MissingCell()
			continue
		}
		numeric.Cells[i] = NumberCell(numbers[i])
	}
	return numeric
}

// stripNumericNoise removes thousands separators and percent signs.
func stripNumericNoise(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, "%", "")
}

// hasValue reports whether at least one cell is non-missing.
func hasValue(cells []Cell) bool {
	for _, c := range cells {
		if c.Kind != CellMissing {
			return true
		}
	}
	return false
}

// IsTotalLabel reports whether a category label names the synthetic
// aggregate row. One rule everywhere: trimmed, case-insensitive.
func IsTotalLabel(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "total")
}

// blankTotalRowCodes empties the code cell on total rows, in place on
// the freshly built table.
func blankTotalRowCodes(t *Table) {
	categories := t.Column(ColumnAnswerCategories)
	code := t.Column("Code")
	if categories == nil || code == nil {
		return
	}
	for i, cell := range categories.Cells {
		if cell.Kind != CellText || !IsTotalLabel(cell.Text) {
			continue
		}
		if i < len(code.Cells) {
			code.Cells[i] = TextCell("")
		}
	}
}

// Package tabular holds the in-memory table model and the
// transformations applied to survey tables before they are served:
// cleaning, descriptive statistics, chart shaping and HTML rendering.
package tabular

import (
	"fmt"
	"strings"
)

// CellKind discriminates the tagged cell value.
type CellKind int

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
)

// Cell is a single tagged table value. Exactly one of Text/Number is
// meaningful, selected by Kind; a missing cell carries neither.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell creates a text cell.
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// NumberCell creates a numeric cell.
func NumberCell(v float64) Cell {
	return Cell{Kind: CellNumber, Number: v}
}

// MissingCell creates an absent value.
func MissingCell() Cell {
	return Cell{Kind: CellMissing}
}

// ColumnKind is the column-level type decided once during cleaning.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnNumeric
)

// Column is an ordered sequence of cells under a unique name.
type Column struct {
	Name  string
	Kind  ColumnKind
	Cells []Cell
}

// Table is an ordered sequence of equal-length named columns. Column
// names are unique within a table. Stages never mutate a Table in
// place; each produces a new one.
type Table struct {
	Name    string
	Columns []Column
}

// Well-known survey column names.
const (
	ColumnAnswerCategories  = "Answer Categories"
	ColumnWeightedFrequency = "Weighted Frequency"
	codeColumnName          = "code"
)

// IsCodeColumn reports whether a column name designates an opaque code
// column. The match is by name, case-insensitive, never by content.
func IsCodeColumn(name string) bool {
	return strings.EqualFold(name, codeColumnName)
}

// Rows returns the number of rows in the table.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// Empty reports whether the table has no columns or no rows.
func (t *Table) Empty() bool {
	return t.Rows() == 0
}

// Column returns the column with the given name, nil if absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// Validate checks the table invariants: unique column names and equal
// column lengths.
func (t *Table) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		if _, dup := seen[col.Name]; dup {
			return fmt.Errorf("duplicate column name %q in table %q", col.Name, t.Name)
		}
		seen[col.Name] = struct{}{}
		if len(col.Cells) != t.Rows() {
			return fmt.Errorf("column %q has %d rows, table %q has %d",
				col.Name, len(col.Cells), t.Name, t.Rows())
		}
	}
	return nil
}

// clone returns a deep copy of the column.
func (c *Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind, Cells: make([]Cell, len(c.Cells))}
	copy(out.Cells, c.Cells)
	return out
}

// String renders a cell for display: text as-is, numbers via %v,
// missing as the empty string.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return fmt.Sprintf("%v", c.Number)
	default:
		return ""
	}
}

package workbook

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"surveyview/internal/tabular"
)

// writeFixture creates a workbook with one survey-shaped sheet plus an
// empty sheet, and returns its path.
func writeFixture(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "EDU10"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)

	rows := [][]any{
		{"Code", "Answer Categories", "Weighted Frequency"},
		{"1", "Yes", "1,234"},
		{"2", "No", "5,678"},
		{"9", "Total", "6,912"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	_, err = f.NewSheet("Blank")
	require.NoError(t, err)

	// Drop the default sheet so the fixture only has known sheets.
	require.NoError(t, f.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReaderSheetNames(t *testing.T) {
	reader := NewReader(writeFixture(t), slog.Default())

	names, err := reader.SheetNames(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"EDU10", "Blank"}, names)
}

func TestReaderSheetNamesMissingFile(t *testing.T) {
	reader := NewReader(filepath.Join(t.TempDir(), "nope.xlsx"), slog.Default())

	_, err := reader.SheetNames(context.Background())
	assert.Error(t, err)
}

func TestReaderLoadTable(t *testing.T) {
	reader := NewReader(writeFixture(t), slog.Default())
	ctx := context.Background()

	t.Run("loads header and rows", func(t *testing.T) {
		table, err := reader.LoadTable(ctx, "EDU10")
		require.NoError(t, err)

		assert.Equal(t, "EDU10", table.Name)
		assert.Equal(t, 3, table.Rows())
		require.Len(t, table.Columns, 3)
		assert.Equal(t, "Code", table.Columns[0].Name)
		assert.Equal(t, "Answer Categories", table.Columns[1].Name)
		assert.Equal(t, "Weighted Frequency", table.Columns[2].Name)

		// Raw cells arrive as text; cleaning happens downstream.
		freq := table.Column("Weighted Frequency")
		assert.Equal(t, tabular.ColumnText, freq.Kind)
		assert.Equal(t, "1,234", freq.Cells[0].Text)

		require.NoError(t, table.Validate())
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := reader.LoadTable(ctx, "MISSING")
		assert.ErrorIs(t, err, ErrSheetNotFound)
	})

	t.Run("empty sheet", func(t *testing.T) {
		_, err := reader.LoadTable(ctx, "Blank")
		assert.ErrorIs(t, err, ErrSheetEmpty)
	})

	t.Run("missing file", func(t *testing.T) {
		broken := NewReader(filepath.Join(t.TempDir(), "nope.xlsx"), slog.Default())
		_, err := broken.LoadTable(ctx, "EDU10")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSheetNotFound)
	})
}

func TestReaderLoadTableRaggedRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Code", "Answer Categories", "Weighted Frequency"},
		{"1", "Yes"}, // short row: frequency cell absent
		{"2", "", "10"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "ragged.xlsx")
	require.NoError(t, f.SaveAs(path))

	reader := NewReader(path, slog.Default())
	table, err := reader.LoadTable(context.Background(), "Sheet1")
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	freq := table.Column("Weighted Frequency")
	assert.Equal(t, tabular.CellMissing, freq.Cells[0].Kind, "short rows pad with missing cells")

	categories := table.Column("Answer Categories")
	assert.Equal(t, tabular.CellMissing, categories.Cells[1].Kind, "empty strings load as missing")
}

func TestReaderAvailability(t *testing.T) {
	reader := NewReader(writeFixture(t), slog.Default())

	configured := []string{"EDU10", "LMA05", "Blank"}
	av, err := reader.Availability(context.Background(), configured)
	require.NoError(t, err)

	assert.Equal(t, []string{"EDU10", "Blank"}, av.Available)
	assert.Equal(t, []string{"LMA05"}, av.Missing)

	// The partition covers every configured name exactly once.
	assert.Len(t, append(av.Available, av.Missing...), len(configured))
	for _, name := range av.Available {
		assert.NotContains(t, av.Missing, name)
	}
}

func TestDedupeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{"unique names untouched", []string{"A", "B"}, []string{"A", "B"}},
		{"duplicates suffixed", []string{"A", "A", "A"}, []string{"A", "A.1", "A.2"}},
		{"empty names filled", []string{"", "B"}, []string{"column_1", "B"}},
		{"whitespace trimmed", []string{" Code ", "Code"}, []string{"Code", "Code.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dedupeHeader(tt.header))
		})
	}
}

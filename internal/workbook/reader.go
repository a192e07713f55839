// Package workbook reads survey tables out of the source Excel
// workbook. Each read opens the workbook fresh; the file is small and
// nothing is cached between requests.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"surveyview/internal/tabular"
)

// Sentinel errors surfaced to the service layer.
var (
	ErrSheetNotFound = errors.New("sheet not found in workbook")
	ErrSheetEmpty    = errors.New("sheet has no data rows")
)

// Reader extracts tables from a workbook file.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a reader for the workbook at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		path:   path,
		logger: logger.With(slog.String("component", "workbook_reader")),
	}
}

// Path returns the workbook file path.
func (r *Reader) Path() string {
	return r.path
}

// SheetNames lists the sheets present in the workbook.
func (r *Reader) SheetNames(ctx context.Context) ([]string, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	r.logger.DebugContext(ctx, "listed workbook sheets",
		slog.String("path", r.path),
		slog.Int("sheet_count", len(names)))
	return names, nil
}

// LoadTable reads one named sheet into a raw table. The first row is
// the header; remaining rows become text cells, empty cells become
// missing values. Columns are padded to equal length and duplicate
// header names are deduplicated to keep table invariants.
func (r *Reader) LoadTable(ctx context.Context, name string) (*tabular.Table, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(name)
	if err != nil {
		var sheetErr excelize.ErrSheetNotExist
		if errors.As(err, &sheetErr) {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
		}
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrSheetEmpty, name)
	}

	header := dedupeHeader(rows[0])
	dataRows := rows[1:]

	table := &tabular.Table{
		Name:    name,
		Columns: make([]tabular.Column, len(header)),
	}
	for j, colName := range header {
		cells := make([]tabular.Cell, len(dataRows))
		for i, row := range dataRows {
			if j >= len(row) || strings.TrimSpace(row[j]) == "" {
				cells[i] = tabular.MissingCell()
				continue
			}
			cells[i] = tabular.TextCell(row[j])
		}
		table.Columns[j] = tabular.Column{
			Name:  colName,
			Kind:  tabular.ColumnText,
			Cells: cells,
		}
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("sheet %s produced invalid table: %w", name, err)
	}

	r.logger.InfoContext(ctx, "loaded table from workbook",
		slog.String("sheet", name),
		slog.Int("rows", table.Rows()),
		slog.Int("columns", len(table.Columns)))

	return table, nil
}

// Availability partitions configured table names into those present in
// the workbook and those missing from it. The two halves are disjoint
// and together cover every configured name.
type Availability struct {
	Available []string `json:"available"`
	Missing   []string `json:"missing"`
}

// Availability checks which configured tables exist as sheets.
// Configured order is preserved in both partitions.
func (r *Reader) Availability(ctx context.Context, configured []string) (Availability, error) {
	names, err := r.SheetNames(ctx)
	if err != nil {
		return Availability{}, err
	}

	existing := make(map[string]struct{}, len(names))
	for _, n := range names {
		existing[n] = struct{}{}
	}

	av := Availability{
		Available: make([]string, 0, len(configured)),
		Missing:   make([]string, 0),
	}
	for _, name := range configured {
		if _, ok := existing[name]; ok {
			av.Available = append(av.Available, name)
		} else {
			av.Missing = append(av.Missing, name)
		}
	}

	if len(av.Missing) > 0 {
		r.logger.WarnContext(ctx, "configured tables missing from workbook",
			slog.Any("missing", av.Missing))
	}
	return av, nil
}

// dedupeHeader gives every column a unique, non-empty name.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		}
		if _, dup := seen[name]; !dup {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

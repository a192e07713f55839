// Package services contains the application service layer wiring the
// workbook loader to the tabular transformation core.
package services

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"surveyview/internal/config"
	"surveyview/internal/tabular"
	"surveyview/internal/workbook"
)

// TableLoader abstracts the workbook reader for testing.
type TableLoader interface {
	LoadTable(ctx context.Context, name string) (*tabular.Table, error)
	Availability(ctx context.Context, configured []string) (workbook.Availability, error)
}

// TableData is the full response payload for one selected table.
type TableData struct {
	TableHTML        template.HTML      `json:"table_html"`
	Visualizations   tabular.Bundle     `json:"visualizations"`
	Statistics       tabular.Statistics `json:"statistics"`
	TableDescription string             `json:"table_description"`
}

// TableInfo describes one available table for the index listing.
type TableInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CheckResult partitions the configured tables by workbook presence.
type CheckResult struct {
	Available      []string `json:"available"`
	Missing        []string `json:"missing"`
	TotalAvailable int      `json:"total_available"`
	TotalMissing   int      `json:"total_missing"`
}

// TableService loads, cleans and derives presentation data for survey
// tables. Each request loads its own table; the service holds only
// read-only state.
type TableService struct {
	loader       TableLoader
	descriptions *config.Descriptions
	logger       *slog.Logger
}

// NewTableService creates a table service.
func NewTableService(loader TableLoader, descriptions *config.Descriptions, logger *slog.Logger) *TableService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableService{
		loader:       loader,
		descriptions: descriptions,
		logger:       logger.With(slog.String("component", "table_service")),
	}
}

// TableData loads the named table, cleans it, and derives statistics,
// visualizations and the rendered HTML table.
func (s *TableService) TableData(ctx context.Context, name string) (*TableData, error) {
	if !s.descriptions.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	raw, err := s.loader.LoadTable(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, workbook.ErrSheetNotFound):
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		case errors.Is(err, workbook.ErrSheetEmpty):
			return nil, fmt.Errorf("%w: %s", ErrTableEmpty, name)
		default:
			return nil, fmt.Errorf("%w: %v", ErrWorkbookUnavailable, err)
		}
	}
	if raw.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrTableEmpty, name)
	}

	cleaned := tabular.Clean(raw)

	description, _ := s.descriptions.Get(name)

	s.logger.InfoContext(ctx, "table prepared",
		slog.String("table", name),
		slog.Int("rows", cleaned.Rows()),
		slog.Int("columns", len(cleaned.Columns)))

	return &TableData{
		TableHTML:        tabular.RenderHTML(cleaned),
		Visualizations:   tabular.Visualizations(cleaned, s.logger),
		Statistics:       tabular.Summarize(cleaned, s.logger),
		TableDescription: description,
	}, nil
}

// ListTables returns the configured tables that exist in the workbook,
// with their descriptions.
func (s *TableService) ListTables(ctx context.Context) ([]TableInfo, error) {
	av, err := s.loader.Availability(ctx, s.descriptions.Names())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnavailable, err)
	}

	infos := make([]TableInfo, 0, len(av.Available))
	for _, name := range av.Available {
		description, _ := s.descriptions.Get(name)
		infos = append(infos, TableInfo{Name: name, Description: description})
	}
	return infos, nil
}

// CheckTables reports which configured tables are present in the
// workbook and which are missing. The two sets are disjoint and cover
// every configured name.
func (s *TableService) CheckTables(ctx context.Context) (*CheckResult, error) {
	av, err := s.loader.Availability(ctx, s.descriptions.Names())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnavailable, err)
	}

	return &CheckResult{
		Available:      av.Available,
		Missing:        av.Missing,
		TotalAvailable: len(av.Available),
		TotalMissing:   len(av.Missing),
	}, nil
}

// ConfiguredCount returns the number of configured tables.
func (s *TableService) ConfiguredCount() int {
	return s.descriptions.Len()
}

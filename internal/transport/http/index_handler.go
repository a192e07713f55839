package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"surveyview/internal/services"
)

// IndexHandler serves the dashboard page listing available tables.
type IndexHandler struct {
	service TableServiceInterface
	webDir  string
	logger  *slog.Logger
}

// NewIndexHandler creates the index page handler.
func NewIndexHandler(service TableServiceInterface, webDir string, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{
		service: service,
		webDir:  webDir,
		logger:  logger.With(slog.String("component", "index_handler")),
	}
}

// indexData is the template payload for the dashboard page.
type indexData struct {
	Tables         []services.TableInfo
	TotalTables    int
	AvailableCount int
}

// ServeIndex handles GET /.
func (h *IndexHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.ListTables(r.Context())
	if err != nil {
		// The page still renders; the table list is just empty.
		h.logger.ErrorContext(r.Context(), "failed to list tables for index page",
			slog.String("error", err.Error()))
		tables = nil
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl, err := template.ParseFiles(filepath.Join(h.webDir, "index.html"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to parse index template",
			slog.String("error", err.Error()))
		http.Error(w, "Error loading page", http.StatusInternalServerError)
		return
	}

	data := indexData{
		Tables:         tables,
		TotalTables:    h.service.ConfiguredCount(),
		AvailableCount: len(tables),
	}
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render index template",
			slog.String("error", err.Error()))
	}
}

package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler serves liveness and version endpoints.
type HealthHandler struct {
	workbookPath string
	version      string
	logger       *slog.Logger
	started      time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(workbookPath, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		workbookPath: workbookPath,
		version:      version,
		logger:       logger.With(slog.String("component", "health_handler")),
		started:      time.Now(),
	}
}

// HealthCheck handles GET /api/health. Degraded when the workbook file
// is not reachable.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	workbook := "available"
	if _, err := os.Stat(h.workbookPath); err != nil {
		status = "degraded"
		workbook = "missing"
		h.logger.WarnContext(r.Context(), "workbook not reachable",
			slog.String("path", h.workbookPath),
			slog.String("error", err.Error()))
	}

	render.JSON(w, r, map[string]any{
		"status":   status,
		"workbook": workbook,
		"uptime":   time.Since(h.started).String(),
	})
}

// Version handles GET /api/version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"version": h.version,
	})
}

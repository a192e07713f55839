// Package http contains the chi HTTP handlers for the dashboard API.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "surveyview/internal/errors"
	"surveyview/internal/infrastructure"
	"surveyview/internal/services"
)

// TableServiceInterface is the service surface the handler depends on.
type TableServiceInterface interface {
	TableData(ctx context.Context, name string) (*services.TableData, error)
	ListTables(ctx context.Context) ([]services.TableInfo, error)
	CheckTables(ctx context.Context) (*services.CheckResult, error)
	ConfiguredCount() int
}

// TableHandler handles table-data HTTP requests.
type TableHandler struct {
	service      TableServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewTableHandler creates a table handler.
func NewTableHandler(service TableServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TableHandler {
	v := validator.New()
	// Use JSON tag names in validation error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &TableHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "table_handler")),
		errorHandler: errorHandler,
		validate:     v,
	}
}

// Routes returns the table routes.
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/table-data", h.GetTableData)
	r.Get("/tables", h.ListTables)
	r.Get("/tables/check", h.CheckTables)

	return r
}

// tableDataRequest selects which table to clean/summarize/visualize.
type tableDataRequest struct {
	TableName string `json:"table_name" validate:"required,min=1,max=64"`
}

// GetTableData handles POST /api/table-data.
func (h *TableHandler) GetTableData(w http.ResponseWriter, r *http.Request) {
	reqID := infrastructure.GetTraceID(r.Context())

	var req tableDataRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, h.validationError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "fetching table data",
		slog.String("request_id", reqID),
		slog.String("table", req.TableName),
	)

	data, err := h.service.TableData(r.Context(), req.TableName)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get table data",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("table", req.TableName),
		)
		h.handleServiceError(w, r, err, req.TableName)
		return
	}

	render.JSON(w, r, map[string]any{
		"success":           true,
		"table_html":        data.TableHTML,
		"visualizations":    data.Visualizations,
		"statistics":        data.Statistics,
		"table_description": data.TableDescription,
	})
}

// ListTables handles GET /api/tables.
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.ListTables(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list tables",
			slog.String("error", err.Error()),
			slog.String("request_id", infrastructure.GetTraceID(r.Context())),
		)
		h.handleServiceError(w, r, err, "")
		return
	}

	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   tables,
		"count":  len(tables),
		"total":  h.service.ConfiguredCount(),
	})
}

// CheckTables handles GET /api/tables/check.
func (h *TableHandler) CheckTables(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CheckTables(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to check tables",
			slog.String("error", err.Error()),
			slog.String("request_id", infrastructure.GetTraceID(r.Context())),
		)
		h.handleServiceError(w, r, err, "")
		return
	}

	render.JSON(w, r, result)
}

// handleServiceError maps service sentinel errors to API errors.
func (h *TableHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, table string) {
	switch {
	case errors.Is(err, services.ErrTableNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusNotFound,
			"TABLE_NOT_FOUND",
			fmt.Sprintf("Table '%s' not found", table),
			map[string]any{"table_name": table},
		))
	case errors.Is(err, services.ErrTableEmpty):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusUnprocessableEntity,
			"TABLE_EMPTY",
			fmt.Sprintf("Table '%s' is empty", table),
			map[string]any{"table_name": table},
		))
	case errors.Is(err, services.ErrWorkbookUnavailable):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusServiceUnavailable,
			"WORKBOOK_UNAVAILABLE",
			"Survey workbook could not be read",
			err.Error(),
		))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// validationError converts validator errors to an APIError.
func (h *TableHandler) validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return apierrors.NewValidationErrors(fields)
}

// validationMessage renders a human-readable message for one failure.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

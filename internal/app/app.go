// Package app wires configuration, logging, services and the HTTP
// router into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"surveyview/internal/config"
	apierrors "surveyview/internal/errors"
	"surveyview/internal/infrastructure"
	custommiddleware "surveyview/internal/middleware"
	"surveyview/internal/services"
	handlers "surveyview/internal/transport/http"
	"surveyview/internal/workbook"
)

// Version is the application version, overridable at build time.
var Version = "1.0.0"

// AppName identifies the service in startup logs.
const AppName = "surveyview"

// Application is the dependency container for the running service.
type Application struct {
	Config       *config.Config
	Descriptions *config.Descriptions
	Router       *chi.Mux
	Server       *http.Server
	TableService *services.TableService
	Logger       *slog.Logger

	closeLog func() error
}

// NewApplication loads configuration and constructs the full service
// graph. The descriptions mapping is loaded once here and passed by
// reference; nothing mutates it afterwards.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("workbook", cfg.Data.WorkbookPath))

	descriptions, err := config.LoadDescriptions(cfg.Data.DescriptionsPath, cfg.Data.ReservedKey)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to load table descriptions: %w", err)
	}
	logger.Info("table descriptions loaded",
		slog.String("path", cfg.Data.DescriptionsPath),
		slog.Int("tables", descriptions.Len()))

	reader := workbook.NewReader(cfg.Data.WorkbookPath, logger)
	tableService := services.NewTableService(reader, descriptions, logger)

	app := &Application{
		Config:       cfg,
		Descriptions: descriptions,
		TableService: tableService,
		Logger:       logger,
		closeLog:     closeLog,
	}
	app.setupRouter()

	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := custommiddleware.NewHTTPMetrics(registry)

	r.Use(custommiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.StructuredLogger(a.Logger))
	r.Use(custommiddleware.Recoverer(a.Logger))
	r.Use(custommiddleware.SecurityHeaders)
	r.Use(httpMetrics.Handler)

	if a.Config.Security.RateLimit.Enabled {
		limiter := custommiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	tableHandler := handlers.NewTableHandler(a.TableService, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Config.Data.WorkbookPath, Version, a.Logger)
	indexHandler := handlers.NewIndexHandler(a.TableService, a.Config.Data.WebDir, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)
		r.Mount("/", tableHandler.Routes())
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/", indexHandler.ServeIndex)

	a.Router = r
}

// Run starts the HTTP server and blocks until shutdown.
func (a *Application) Run() error {
	defer a.closeLog()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.Logger.Info("server stopped",
		slog.Duration("shutdown_timeout", a.Config.Server.ShutdownTimeout),
		slog.Time("stopped_at", time.Now()))
	return nil
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/boxoffice/internal"
	"github.com/DukeRupert/boxoffice/internal/csrf"
	"github.com/DukeRupert/boxoffice/internal/handler"
	"github.com/DukeRupert/boxoffice/internal/metrics"
	"github.com/DukeRupert/boxoffice/internal/middleware"
	"github.com/DukeRupert/boxoffice/internal/repository"
	"github.com/DukeRupert/boxoffice/internal/service"
	"github.com/DukeRupert/boxoffice/internal/session"
	"github.com/DukeRupert/boxoffice/web"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize template renderer. Development reads from disk so edits
	// show up on reload.
	templates, err := templatesFS(cfg.IsDevelopment())
	if err != nil {
		return err
	}
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     templates,
		Logger: logger,
		IsDev:  cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}

	// Initialize session codec and services
	codec, err := session.NewCodec([]byte(cfg.SessionSecret))
	if err != nil {
		return fmt.Errorf("session codec initialization failed: %w", err)
	}
	userService := service.NewUserService(service.NewCredentialStore(repo), codec, logger)
	ticketingService := service.NewTicketingService(repo, logger)

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()
	authMw := middleware.NewAuthMiddleware(codec, userService, logger, isSecure)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword, logger)
	authLimiter := middleware.NewAuthRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, cfg.TrustProxy, logger)
	go authLimiter.Run(ctx)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, renderer, logger, isSecure)
	pagesHandler := handler.NewPagesHandler(ticketingService, renderer, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	// Health check and metrics
	mux.HandleFunc("GET /health", handler.Health(db, logger))
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	authHandler.RegisterRoutes(mux, authLimiter)
	pagesHandler.RegisterRoutes(mux)

	stack := middleware.Stack(
		loggingMw.Handler,
		metrics.Middleware,
		securityMw.Handler,
		authMw.Gatekeeper,
		csrf.Protect(isSecure, logger),
	)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func templatesFS(dev bool) (fs.FS, error) {
	if dev {
		return os.DirFS("web/templates"), nil
	}
	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("embedded templates: %w", err)
	}
	return sub, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "geostrat/app/db"
	appLogger "geostrat/app/logger"
	"geostrat/app/observability/metrics"
	"geostrat/app/tracer"
	"geostrat/config"
	"geostrat/internal/api/analysis"
	"geostrat/internal/api/auth"
	"geostrat/internal/api/item"
	"geostrat/internal/api/user"
	"geostrat/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metricsHandler, err := tracer.InitTracingAndMetrics()
	if err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Persistence Provider ---
	// One backing per deployment: Postgres or embedded SQLite.
	var (
		itemRepo     item.Repository
		userRepo     user.Repository
		analysisRepo analysis.Repository
	)
	switch cfg.Repositories.Driver {
	case "", "postgres":
		dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
		if err != nil {
			logger.Error("Failed to generate database config", slog.Any("error", err))
			os.Exit(1)
		}
		if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			logger.Error("Failed to run database migrations", slog.Any("error", err))
			os.Exit(1)
		}
		pool, err := database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if !database.WaitForDB(ctx, pool, logger) {
			logger.Error("Database not ready after waiting, exiting.")
			os.Exit(1)
		}
		itemRepo = item.NewPostgresItemRepository(pool, logger)
		userRepo = user.NewPostgresUserRepository(pool, logger)
		analysisRepo = analysis.NewPostgresAnalysisRepository(pool, logger)
	case "sqlite":
		db, err := database.InitSQLite(ctx, cfg.Repositories.SQLite.Path, logger)
		if err != nil {
			logger.Error("Failed to initialize sqlite database", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()
		itemRepo = item.NewSQLiteItemRepository(db, logger)
		userRepo = user.NewSQLiteUserRepository(db, logger)
		analysisRepo = analysis.NewSQLiteAnalysisRepository(db, logger)
	default:
		logger.Error("Unknown repositories driver", slog.String("driver", cfg.Repositories.Driver))
		os.Exit(1)
	}

	// --- Dependency Injection ---
	authService := auth.NewService(cfg.Auth, logger)
	authHandler := auth.NewHandler(authService, cfg.Auth, logger)

	itemService := item.NewService(itemRepo, userRepo, item.CreatorMode(cfg.Items.CreatorMode), metrics.Get(), logger)
	itemHandler := item.NewHandler(itemService, logger)

	analysisService := analysis.NewService(analysisRepo, cfg.Analysis.CacheTTL, logger)
	analysisHandler := analysis.NewHandler(analysisService, logger)

	mainRouter := router.SetupRouter(&router.Config{
		AuthHandler:        authHandler,
		ItemHandler:        itemHandler,
		AnalysisHandler:    analysisHandler,
		IdentityMiddleware: auth.WithIdentity(authService, cfg.Auth.CookieName),
		Metrics:            metrics.Get(),
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
	})

	requestTimeout := cfg.Server.Timeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	r := chi.NewMux()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5, "application/json"))
	r.Mount("/", mainRouter)

	apiSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.MetricsPort),
		Handler: metricsHandler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		logger.Info("Shutdown signal received, starting graceful shutdown...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger(mode string) *slog.Logger {
	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		return slog.New(tint.NewHandler(os.Stdout, tintOpts))
	}
	jsonOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
}

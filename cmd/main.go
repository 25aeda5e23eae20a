package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/meridian/internal/config"
	v1 "github.com/UnknownOlympus/meridian/internal/controller/http/v1"
	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/ingest"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 10 * time.Second

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with the standard collectors.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection.
	dtb, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	// Create a new repository instance using the database connection.
	repo := repository.NewRepository(dtb, logger)

	// Create the geocoding provider using the factory pattern based on
	// configuration. This allows runtime selection between providers.
	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:     geocoding.ProviderType(cfg.ProviderType),
		APIKey:   cfg.APIKey,
		Language: cfg.Language,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}

	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.ProviderType)

	// Ingestion writes uploads to disk and registers them with their tasks.
	ingestor := ingest.NewIngestor(logger, repo, repo, appMetrics, cfg.UploadDir, cfg.BatchSize)

	// The worker pool executes pipeline runs submitted by the dispatcher.
	pool := worker.NewPool(logger, cfg.Workers, cfg.Workers*4)

	distance := service.NewDistancePipeline(
		logger, repo, repo, appMetrics,
		cfg.BatchSize, cfg.Workers, cfg.MaxAttempts, cfg.RetryDelay,
	)
	geocode := service.NewGeocodePipeline(
		logger, repo, repo, geoProvider, cfg.ProviderType, appMetrics,
		cfg.RateLimit, cfg.BatchSize, cfg.MaxAttempts, cfg.RetryDelay,
	)

	dispatcher := service.NewDispatcher(
		logger, repo, ingestor, pool,
		map[models.TaskType]service.Pipeline{
			models.TaskTypeDistance: distance,
			models.TaskTypeReverse:  geocode,
		},
		cfg.Interval, cfg.MaxAttempts, cfg.RetryDelay,
	)

	handler := v1.NewGeoHandler(logger, ingestor, service.NewResultService(logger, repo))
	server := v1.NewServer(logger, cfg.Port, handler, dtb, reg)

	pool.Start(ctx)
	go dispatcher.Run(ctx)

	go func() {
		logger.InfoContext(ctx, "HTTP server started", "port", cfg.Port)
		if errSrv := server.ListenAndServe(); errSrv != nil && !errors.Is(errSrv, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP server failed", "error", errSrv)
			stop()
		}
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.Info("Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to stop HTTP server gracefully", "error", err)
	}

	pool.Wait()

	logger.Info("Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)
	}

	return logger
}

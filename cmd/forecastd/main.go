// Command forecastd serves multi-day rain forecasts over HTTP from a
// previously ingested canonical series.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rainfall-etl/internal/adapter/csvstore"
	"github.com/couchcryptid/rainfall-etl/internal/adapter/httpapi"
	"github.com/couchcryptid/rainfall-etl/internal/adapter/mlclient"
	"github.com/couchcryptid/rainfall-etl/internal/config"
	"github.com/couchcryptid/rainfall-etl/internal/domain"
	"github.com/couchcryptid/rainfall-etl/internal/observability"
	"github.com/couchcryptid/rainfall-etl/internal/pipeline"
)

// loadedReadiness reports ready once the series is in memory, which is a
// precondition for the process starting at all.
type loadedReadiness struct{}

func (loadedReadiness) CheckReadiness(_ context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := csvstore.New(cfg.SeriesPath, cfg.DistrictCodesPath, logger)
	series, err := store.LoadSeries(ctx)
	if err != nil {
		logger.Error("failed to load canonical series", "path", cfg.SeriesPath, "error", err)
		os.Exit(1)
	}
	names, err := store.LoadDistrictCodes(ctx)
	if err != nil {
		logger.Error("failed to load district codes", "path", cfg.DistrictCodesPath, "error", err)
		os.Exit(1)
	}
	logger.Info("canonical series loaded",
		"rows", len(series),
		"stations", len(series.Stations()),
		"districts", len(names),
	)

	encoder := domain.NewDistrictEncoderFromNames(names)
	engine := domain.NewFeatureEngine(series, encoder)

	var classifier pipeline.Classifier
	if cfg.MLServiceURL != "" {
		classifier = mlclient.NewClient(cfg.MLServiceURL, cfg.MLTimeout, logger)
		logger.Info("model service configured", "url", cfg.MLServiceURL, "timeout", cfg.MLTimeout)
	} else {
		logger.Info("no model service configured; serving feature vectors only")
	}

	forecaster := pipeline.NewForecaster(engine, classifier, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, loadedReadiness{}, forecaster, cfg.ForecastMaxHorizon, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

// Command train loads the canonical series CSV, balances the labels, and
// fits the external model service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rainfall-etl/internal/adapter/csvstore"
	"github.com/couchcryptid/rainfall-etl/internal/adapter/mlclient"
	"github.com/couchcryptid/rainfall-etl/internal/config"
	"github.com/couchcryptid/rainfall-etl/internal/domain"
	"github.com/couchcryptid/rainfall-etl/internal/observability"
	"github.com/couchcryptid/rainfall-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.MLServiceURL == "" {
		logger.Error("ML_SERVICE_URL is required for training")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := csvstore.New(cfg.SeriesPath, cfg.DistrictCodesPath, logger)
	series, err := store.LoadSeries(ctx)
	if err != nil {
		logger.Error("failed to load canonical series", "path", cfg.SeriesPath, "error", err)
		os.Exit(1)
	}
	logger.Info("canonical series loaded", "rows", len(series), "stations", len(series.Stations()))

	classifier := mlclient.NewClient(cfg.MLServiceURL, cfg.MLTimeout, logger)
	trainer := pipeline.NewTrainer(classifier, logger, cfg.BalanceSeed)

	if err := trainer.Train(ctx, series); err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}

	// Persist the district encoding alongside the series so serving encodes
	// exactly as training did.
	encoder := domain.NewDistrictEncoder(series)
	if err := store.WriteDistrictCodes(ctx, encoder.Names()); err != nil {
		logger.Error("failed to write district codes", "path", cfg.DistrictCodesPath, "error", err)
		os.Exit(1)
	}

	logger.Info("training complete", "model_service", cfg.MLServiceURL, "districts", len(encoder.Names()))
}

// Command ingest walks a bulletin corpus, builds the canonical daily
// rainfall series, and persists it as CSV (optionally publishing the rows
// to Kafka). Health and metrics endpoints are served for the duration of
// the run.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rainfall-etl/internal/adapter/csvstore"
	"github.com/couchcryptid/rainfall-etl/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/rainfall-etl/internal/adapter/kafka"
	"github.com/couchcryptid/rainfall-etl/internal/adapter/pdfdecoder"
	"github.com/couchcryptid/rainfall-etl/internal/config"
	"github.com/couchcryptid/rainfall-etl/internal/observability"
	"github.com/couchcryptid/rainfall-etl/internal/pipeline"
)

func main() {
	corpusDir := flag.String("corpus", "data/raw", "directory of year-named subdirectories holding bulletin PDFs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store := csvstore.New(cfg.SeriesPath, cfg.DistrictCodesPath, logger)

	var publisher pipeline.RowPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka sink disabled")
	}

	p := pipeline.New(pdfdecoder.Opener{}, store, publisher, logger, metrics, cfg.IngestWorkers)

	srv := httpapi.NewServer(cfg.HTTPAddr, p, nil, cfg.ForecastMaxHorizon, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	series, runErr := p.Run(ctx, *corpusDir)
	if runErr != nil {
		logger.Error("ingest failed", "error", runErr)
	} else {
		logger.Info("ingest complete",
			"rows", len(series),
			"stations", len(series.Stations()),
			"series_path", cfg.SeriesPath,
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

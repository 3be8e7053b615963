package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
// A .env file in the working directory is loaded first when present.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Corpus ingestion.
	SeriesPath        string
	DistrictCodesPath string
	IngestWorkers     int

	// Optional Kafka sink for canonical rows.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Classifier service (optional for forecastd, required for train).
	MLServiceURL string
	MLTimeout    time.Duration

	// Training.
	BalanceSeed int64

	// Forecast serving.
	ForecastMaxHorizon int
}

// Load reads configuration from the environment, applying defaults where
// unset and validating cross-field constraints.
func Load() (*Config, error) {
	_ = godotenv.Load() // best effort; absence of .env is the normal case

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mlTimeout, err := parseDuration("ML_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	workers, err := parsePositiveInt("INGEST_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	maxHorizon, err := parsePositiveInt("FORECAST_MAX_HORIZON", 14)
	if err != nil {
		return nil, err
	}
	seed, err := parseSeed("BALANCE_SEED", 42)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SeriesPath:        envOrDefault("SERIES_PATH", "data/processed/data_training_gabungan.csv"),
		DistrictCodesPath: envOrDefault("DISTRICT_CODES_PATH", "data/processed/district_codes.csv"),
		IngestWorkers:     workers,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "canonical-rainfall-rows"),

		MLServiceURL: os.Getenv("ML_SERVICE_URL"),
		MLTimeout:    mlTimeout,

		BalanceSeed: seed,

		ForecastMaxHorizon: maxHorizon,
	}

	if cfg.SeriesPath == "" {
		return nil, errors.New("SERIES_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseSeed(key string, fallback int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

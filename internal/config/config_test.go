package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data/processed/data_training_gabungan.csv", cfg.SeriesPath)
	assert.Equal(t, "data/processed/district_codes.csv", cfg.DistrictCodesPath)
	assert.Equal(t, 4, cfg.IngestWorkers)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "canonical-rainfall-rows", cfg.KafkaSinkTopic)
	assert.Empty(t, cfg.MLServiceURL)
	assert.Equal(t, 30*time.Second, cfg.MLTimeout)
	assert.Equal(t, int64(42), cfg.BalanceSeed)
	assert.Equal(t, 14, cfg.ForecastMaxHorizon)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SERIES_PATH", "/data/series.csv")
	t.Setenv("DISTRICT_CODES_PATH", "/data/codes.csv")
	t.Setenv("INGEST_WORKERS", "8")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("ML_SERVICE_URL", "http://model:5000")
	t.Setenv("ML_TIMEOUT", "5s")
	t.Setenv("BALANCE_SEED", "7")
	t.Setenv("FORECAST_MAX_HORIZON", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/series.csv", cfg.SeriesPath)
	assert.Equal(t, "/data/codes.csv", cfg.DistrictCodesPath)
	assert.Equal(t, 8, cfg.IngestWorkers)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "http://model:5000", cfg.MLServiceURL)
	assert.Equal(t, 5*time.Second, cfg.MLTimeout)
	assert.Equal(t, int64(7), cfg.BalanceSeed)
	assert.Equal(t, 5, cfg.ForecastMaxHorizon)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-5s"},
		{"bad worker count", "INGEST_WORKERS", "zero"},
		{"zero workers", "INGEST_WORKERS", "0"},
		{"bad horizon", "FORECAST_MAX_HORIZON", "-1"},
		{"bad seed", "BALANCE_SEED", "lucky"},
		{"bad ml timeout", "ML_TIMEOUT", "later"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_KafkaValidation(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

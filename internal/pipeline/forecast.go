package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rainfall-etl/internal/domain"
	"github.com/couchcryptid/rainfall-etl/internal/observability"
)

// DailyForecast is one day of a forecast answer. Label and Probability are
// nil when no classifier is configured; the features are always present.
type DailyForecast struct {
	Date        time.Time            `json:"date"`
	Features    domain.FeatureVector `json:"features"`
	Label       *int                 `json:"label,omitempty"`
	Probability *float64             `json:"probability,omitempty"`
}

// Forecaster answers "predict N days ahead" queries by reproducing the
// training-time feature computation for each day independently. Day N's
// features never depend on predicted labels for earlier days — there is no
// autoregressive feedback of predictions into features.
type Forecaster struct {
	engine     *domain.FeatureEngine
	classifier Classifier // nil serves features without predictions
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewForecaster creates a Forecaster. Pass a nil classifier to serve feature
// vectors only.
func NewForecaster(engine *domain.FeatureEngine, classifier Classifier, logger *slog.Logger, metrics *observability.Metrics) *Forecaster {
	return &Forecaster{
		engine:     engine,
		classifier: classifier,
		logger:     logger,
		metrics:    metrics,
	}
}

// Forecast computes feature vectors for `days` consecutive dates starting at
// `start`, and runs the classifier over them when one is configured. Dates
// beyond the station's recorded history answer from the climatological
// average; that is the expected case for forecast horizons, never an error.
func (f *Forecaster) Forecast(ctx context.Context, station, district string, start time.Time, days int) ([]DailyForecast, error) {
	if days < 1 {
		days = 1
	}
	f.metrics.ForecastRequests.Inc()

	out := make([]DailyForecast, days)
	rows := make([][]float64, days)
	for i := range days {
		day := start.AddDate(0, 0, i)
		if !f.engine.Covers(station, day) {
			f.metrics.ClimatologyFallback.Inc()
		}
		v := f.engine.ForecastFeatures(station, district, day)
		out[i] = DailyForecast{Date: day, Features: v}
		rows[i] = v.Row()
	}

	if f.classifier == nil {
		return out, nil
	}

	labels, err := f.classifier.Predict(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	probs, err := f.classifier.PredictProba(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("predict proba: %w", err)
	}
	if len(labels) != days || len(probs) != days {
		return nil, fmt.Errorf("classifier returned %d labels and %d probabilities for %d days", len(labels), len(probs), days)
	}
	for i := range out {
		out[i].Label = &labels[i]
		out[i].Probability = &probs[i]
	}
	return out, nil
}

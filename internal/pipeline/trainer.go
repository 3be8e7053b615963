package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/rainfall-etl/internal/domain"
)

// Classifier is the external decision-forest collaborator. Implementations
// talk to a model service; the pipeline only prepares its inputs.
type Classifier interface {
	Fit(ctx context.Context, features [][]float64, labels []int) error
	Predict(ctx context.Context, features [][]float64) ([]int, error)
	PredictProba(ctx context.Context, features [][]float64) ([]float64, error)
}

// Trainer builds the balanced training matrix from a canonical series and
// hands it to the classifier.
type Trainer struct {
	classifier Classifier
	logger     *slog.Logger
	seed       int64
}

// NewTrainer creates a Trainer with the given balancing seed.
func NewTrainer(classifier Classifier, logger *slog.Logger, seed int64) *Trainer {
	return &Trainer{classifier: classifier, logger: logger, seed: seed}
}

// Train derives one feature vector per canonical row, balances the labels by
// upsampling the minority, and fits the classifier. An empty series is an
// empty-result condition reported to the caller, not a crash deeper down.
func (t *Trainer) Train(ctx context.Context, series domain.CanonicalSeries) error {
	if len(series) == 0 {
		return errors.New("canonical series is empty; nothing to train on")
	}

	encoder := domain.NewDistrictEncoder(series)
	engine := domain.NewFeatureEngine(series, encoder)

	samples := make([]domain.Sample, 0, len(series))
	for _, obs := range series {
		v := engine.Features(obs.Station, obs.District, obs.Date)
		samples = append(samples, domain.Sample{Features: v.Row(), Label: obs.Label})
	}

	balanced := domain.Balance(samples, t.seed)
	t.logger.Info("training set balanced",
		"rows", len(samples),
		"balanced_rows", len(balanced),
		"districts", len(encoder.Names()),
	)

	features := make([][]float64, len(balanced))
	labels := make([]int, len(balanced))
	for i, s := range balanced {
		features[i] = s.Features
		labels[i] = s.Label
	}

	if err := t.classifier.Fit(ctx, features, labels); err != nil {
		return fmt.Errorf("fit classifier: %w", err)
	}
	return nil
}

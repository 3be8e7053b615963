package mlclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRows() [][]float64 {
	return [][]float64{
		{0, 0.5, 0.87, 0.2, 0.98, 1, 4.5, 3.2, 2.8, 40.1, 85.0},
		{1, 0.5, 0.87, 0.4, 0.92, 1, 0.0, 1.1, 0.9, 12.3, 30.4},
	}
}

func TestFitPostsFeaturesAndLabels(t *testing.T) {
	var got fitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	err := c.Fit(context.Background(), testRows(), []int{1, 0})

	require.NoError(t, err)
	assert.Len(t, got.Features, 2)
	assert.Equal(t, []int{1, 0}, got.Labels)
}

func TestFitRejectsMismatchedLabels(t *testing.T) {
	c := NewClient("http://unused", time.Second, discardLogger())
	err := c.Fit(context.Background(), testRows(), []int{1})
	assert.ErrorContains(t, err, "must match")
}

func TestPredictReturnsLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		json.NewEncoder(w).Encode(predictResponse{Labels: []int{1, 0}}) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	labels, err := c.Predict(context.Background(), testRows())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, labels)
}

func TestPredictProbaReturnsProbabilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict_proba", r.URL.Path)
		json.NewEncoder(w).Encode(predictProbaResponse{Probabilities: []float64{0.91, 0.12}}) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	probs, err := c.PredictProba(context.Background(), testRows())

	require.NoError(t, err)
	assert.Equal(t, []float64{0.91, 0.12}, probs)
}

func TestPredictRejectsShortResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{Labels: []int{1}}) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	_, err := c.Predict(context.Background(), testRows())

	assert.ErrorContains(t, err, "1 labels for 2 rows")
}

func TestServerErrorSurfacesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not fitted", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, discardLogger())
	_, err := c.Predict(context.Background(), testRows())

	require.Error(t, err)
	assert.ErrorContains(t, err, "status 409")
	assert.ErrorContains(t, err, "model not fitted")
}

func TestContextCancellationAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, time.Second, discardLogger())
	err := c.Fit(ctx, testRows(), []int{1, 0})
	assert.Error(t, err)
}

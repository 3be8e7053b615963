// Package mlclient talks to the external decision-forest model service over
// HTTP. The service owns the model; this side only ships feature matrices and
// label vectors as JSON.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client implements pipeline.Classifier against the model service's
// /fit, /predict, and /predict_proba endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a model service client. baseURL is the service root
// without a trailing slash, e.g. "http://ml-service:9000".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Request/response payloads for the model service.

type fitRequest struct {
	Features [][]float64 `json:"features"`
	Labels   []int       `json:"labels"`
}

type predictRequest struct {
	Features [][]float64 `json:"features"`
}

type predictResponse struct {
	Labels []int `json:"labels"`
}

type predictProbaResponse struct {
	// Probability of the positive (rain) class per row.
	Probabilities []float64 `json:"probabilities"`
}

// Fit sends the balanced training matrix to the model service.
func (c *Client) Fit(ctx context.Context, features [][]float64, labels []int) error {
	if len(features) != len(labels) {
		return fmt.Errorf("feature rows (%d) and labels (%d) must match", len(features), len(labels))
	}
	c.logger.Info("fitting model", "rows", len(features))
	return c.doRequest(ctx, "/fit", fitRequest{Features: features, Labels: labels}, nil)
}

// Predict returns the predicted rain label per feature row.
func (c *Client) Predict(ctx context.Context, features [][]float64) ([]int, error) {
	var resp predictResponse
	if err := c.doRequest(ctx, "/predict", predictRequest{Features: features}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Labels) != len(features) {
		return nil, fmt.Errorf("model returned %d labels for %d rows", len(resp.Labels), len(features))
	}
	return resp.Labels, nil
}

// PredictProba returns the positive-class probability per feature row.
func (c *Client) PredictProba(ctx context.Context, features [][]float64) ([]float64, error) {
	var resp predictProbaResponse
	if err := c.doRequest(ctx, "/predict_proba", predictRequest{Features: features}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Probabilities) != len(features) {
		return nil, fmt.Errorf("model returned %d probabilities for %d rows", len(resp.Probabilities), len(features))
	}
	return resp.Probabilities, nil
}

func (c *Client) doRequest(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model service %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model service %s: status %d: %s", path, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

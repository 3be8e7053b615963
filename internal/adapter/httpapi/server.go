// Package httpapi exposes the service's HTTP surface: health, readiness,
// Prometheus metrics, and the forecast endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/rainfall-etl/internal/pipeline"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ForecastService answers multi-day rain forecast queries.
type ForecastService interface {
	Forecast(ctx context.Context, station, district string, start time.Time, days int) ([]pipeline.DailyForecast, error)
}

// Server exposes health, readiness, metrics, and forecast HTTP endpoints.
type Server struct {
	httpServer *http.Server
	forecaster ForecastService
	maxHorizon int
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /forecast routes. Pass a nil forecaster to serve the operational
// endpoints only (the ingest binary does this).
func NewServer(addr string, ready ReadinessChecker, forecaster ForecastService, maxHorizon int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		forecaster: forecaster,
		maxHorizon: maxHorizon,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if forecaster != nil {
		mux.HandleFunc("POST /forecast", s.handleForecast)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// forecastRequest is the POST /forecast body. StartDate uses the series'
// calendar date format; Days defaults to 1.
type forecastRequest struct {
	Station   string `json:"station"`
	District  string `json:"district"`
	StartDate string `json:"start_date"`
	Days      int    `json:"days"`
}

type forecastResponse struct {
	Station  string                   `json:"station"`
	District string                   `json:"district"`
	Days     []pipeline.DailyForecast `json:"days"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Station == "" {
		writeError(w, http.StatusBadRequest, "station is required")
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	days := req.Days
	if days < 1 {
		days = 1
	}
	if days > s.maxHorizon {
		writeError(w, http.StatusBadRequest, "days exceeds maximum horizon")
		return
	}

	forecast, err := s.forecaster.Forecast(r.Context(), req.Station, req.District, start, days)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("forecast failed", "station", req.Station, "error", err)
		writeError(w, http.StatusBadGateway, "forecast failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, forecastResponse{
		Station:  req.Station,
		District: req.District,
		Days:     forecast,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// rainfall extraction pipeline and the forecast service.
type Metrics struct {
	DocumentsProcessed prometheus.Counter
	DocumentsFailed    prometheus.Counter
	RecordsParsed      prometheus.Counter
	RowsEmitted        prometheus.Counter
	RowsDropped        *prometheus.CounterVec // labels: reason={invalid_date,missing_rainfall}
	PipelineRunning    prometheus.Gauge

	DocumentDuration prometheus.Histogram

	// Forecast serving metrics.
	ForecastRequests   prometheus.Counter
	ClimatologyFallback prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DocumentsProcessed,
		m.DocumentsFailed,
		m.RecordsParsed,
		m.RowsEmitted,
		m.RowsDropped,
		m.PipelineRunning,
		m.DocumentDuration,
		m.ForecastRequests,
		m.ClimatologyFallback,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DocumentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "documents_processed_total",
			Help:      "Total bulletin documents successfully assembled.",
		}),
		DocumentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "documents_failed_total",
			Help:      "Total bulletin documents the decoder could not read.",
		}),
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "records_parsed_total",
			Help:      "Total daily rows recognized in page text.",
		}),
		RowsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "rows_emitted_total",
			Help:      "Total canonical series rows produced.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped during reshape by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_etl",
			Name:      "pipeline_running",
			Help:      "1 while an ingest run is active, 0 otherwise.",
		}),
		DocumentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall_etl",
			Name:      "document_duration_seconds",
			Help:      "Duration of one document's decode and assemble pass.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ForecastRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "forecast_requests_total",
			Help:      "Total forecast feature requests served.",
		}),
		ClimatologyFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall_etl",
			Name:      "climatology_fallback_total",
			Help:      "Forecast days answered from the climatological average.",
		}),
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/rainfall-etl/internal/domain"
	"github.com/couchcryptid/rainfall-etl/internal/observability"
)

// DocumentOpener opens one bulletin file as a decoded document.
type DocumentOpener interface {
	Open(path string) (domain.Document, error)
}

// SeriesStore persists the canonical series and its district code table.
type SeriesStore interface {
	WriteSeries(ctx context.Context, series domain.CanonicalSeries) error
	WriteDistrictCodes(ctx context.Context, names []string) error
}

// RowPublisher forwards canonical rows to an optional downstream sink.
type RowPublisher interface {
	PublishRows(ctx context.Context, rows []domain.Observation) error
}

// Pipeline orchestrates the corpus walk: decode and assemble each bulletin,
// reshape the merged output into the canonical series, persist it, and
// optionally publish the rows.
type Pipeline struct {
	opener    DocumentOpener
	store     SeriesStore
	publisher RowPublisher // nil disables publishing
	logger    *slog.Logger
	metrics   *observability.Metrics
	workers   int
	ready     atomic.Bool
}

// New creates a Pipeline. Pass a nil publisher to disable the sink.
func New(opener DocumentOpener, store SeriesStore, publisher RowPublisher, logger *slog.Logger, metrics *observability.Metrics, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		opener:    opener,
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		workers:   workers,
	}
}

// CheckReadiness returns nil once a corpus run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no corpus run has completed yet")
	}
	return nil
}

// Run ingests one corpus directory. The directory holds one subdirectory per
// reporting year, each containing bulletin PDFs; the year is external
// grouping, attached to every row of its documents.
//
// Documents decode and assemble in parallel — each carries its own metadata
// state — but the reshape is a barrier: rolling windows span document
// boundaries within a station, so every document must land before the series
// is built. An empty or entirely malformed corpus produces an empty series,
// not an error.
func (p *Pipeline) Run(ctx context.Context, corpusDir string) (domain.CanonicalSeries, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	sources, err := discoverSources(corpusDir)
	if err != nil {
		return nil, fmt.Errorf("discover corpus: %w", err)
	}
	p.logger.Info("corpus walk starting", "dir", corpusDir, "documents", len(sources), "workers", p.workers)

	docs := p.assembleAll(ctx, sources)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series, stats := domain.BuildCanonicalSeries(docs)
	p.metrics.RowsEmitted.Add(float64(stats.RowsOut))
	p.metrics.RowsDropped.WithLabelValues("invalid_date").Add(float64(stats.InvalidDates))
	p.metrics.RowsDropped.WithLabelValues("missing_rainfall").Add(float64(stats.MissingRainfall))
	p.logger.Info("canonical series built",
		"rows_in", stats.RowsIn,
		"rows_out", stats.RowsOut,
		"invalid_dates", stats.InvalidDates,
		"stations", len(series.Stations()),
	)
	if len(series) == 0 {
		p.logger.Warn("corpus produced no rows", "dir", corpusDir)
	}

	if err := p.store.WriteSeries(ctx, series); err != nil {
		return nil, fmt.Errorf("write series: %w", err)
	}
	encoder := domain.NewDistrictEncoder(series)
	if err := p.store.WriteDistrictCodes(ctx, encoder.Names()); err != nil {
		return nil, fmt.Errorf("write district codes: %w", err)
	}

	if p.publisher != nil {
		if err := p.publisher.PublishRows(ctx, series); err != nil {
			return nil, fmt.Errorf("publish rows: %w", err)
		}
	}

	p.ready.Store(true)
	return series, nil
}

// assembleAll runs decode+assemble for every source under a bounded worker
// pool. A document the decoder cannot read is logged and skipped; a
// malformed input degrades to fewer rows, never a failed run.
func (p *Pipeline) assembleAll(ctx context.Context, sources []documentSource) []domain.DocumentObservations {
	var mu sync.Mutex
	var docs []domain.DocumentObservations

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, src := range sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			start := time.Now()
			rows, err := p.assembleOne(src)
			if err != nil {
				p.metrics.DocumentsFailed.Inc()
				p.logger.Warn("document skipped", "file", src.path, "error", err)
				return nil
			}
			p.metrics.DocumentsProcessed.Inc()
			p.metrics.DocumentDuration.Observe(time.Since(start).Seconds())
			p.metrics.RecordsParsed.Add(float64(len(rows) / domain.MonthsPerYear))

			mu.Lock()
			docs = append(docs, domain.DocumentObservations{
				Year:         src.year,
				SourceFile:   src.path,
				Observations: rows,
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; skips are logged

	return docs
}

func (p *Pipeline) assembleOne(src documentSource) ([]domain.FlatObservation, error) {
	doc, err := p.opener.Open(src.path)
	if err != nil {
		return nil, err
	}
	return domain.AssembleDocument(doc)
}

type documentSource struct {
	path string
	year int
}

// discoverSources lists bulletin files grouped under year-named
// subdirectories. Non-year directories and non-PDF files are ignored; a
// corpus directory that does not exist is an error, an empty one is not.
func discoverSources(corpusDir string) ([]documentSource, error) {
	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return nil, err
	}

	var sources []documentSource
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		year, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		yearDir := filepath.Join(corpusDir, entry.Name())
		files, err := os.ReadDir(yearDir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".pdf") {
				continue
			}
			sources = append(sources, documentSource{
				path: filepath.Join(yearDir, f.Name()),
				year: year,
			})
		}
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].path < sources[j].path })
	return sources, nil
}

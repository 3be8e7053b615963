// Package csvstore persists the canonical rainfall series as the flat
// tabular file shared between the offline pipeline, training, and serving.
// The column set and Indonesian header names are a fixed contract; nothing
// else durable exists between the three.
package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/rainfall-etl/internal/domain"
)

// seriesHeader is the persisted schema, in order.
var seriesHeader = []string{"Date", "Tahun", "Bulan", "Tanggal", "Nama Pos", "Kabupaten", "Curah_Hujan", "Label"}

var codesHeader = []string{"Kabupaten", "Code"}

const dateLayout = "2006-01-02"

// Store reads and writes the canonical series and the district code table.
type Store struct {
	seriesPath string
	codesPath  string
	logger     *slog.Logger
}

// New creates a Store rooted at the two file paths.
func New(seriesPath, codesPath string, logger *slog.Logger) *Store {
	return &Store{seriesPath: seriesPath, codesPath: codesPath, logger: logger}
}

// WriteSeries writes the whole series, creating parent directories as
// needed. An empty series still writes the header so downstream readers
// see an empty result rather than a missing artifact.
func (s *Store) WriteSeries(ctx context.Context, series domain.CanonicalSeries) error {
	rows := make([][]string, 0, len(series)+1)
	rows = append(rows, seriesHeader)
	for _, obs := range series {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows = append(rows, []string{
			obs.Date.Format(dateLayout),
			strconv.Itoa(obs.Year),
			strconv.Itoa(obs.Month),
			strconv.Itoa(obs.Day),
			obs.Station,
			obs.District,
			strconv.FormatFloat(obs.Rainfall, 'f', -1, 64),
			strconv.Itoa(obs.Label),
		})
	}
	return writeAll(s.seriesPath, rows)
}

// LoadSeries reads the persisted series. Rows that fail to parse are
// skipped with a warning; a malformed line in a multi-year corpus file is
// noise, not a reason to refuse to serve.
func (s *Store) LoadSeries(ctx context.Context) (domain.CanonicalSeries, error) {
	records, err := readAll(s.seriesPath)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}

	var series domain.CanonicalSeries
	skipped := 0
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obs, ok := parseSeriesRow(rec)
		if !ok {
			skipped++
			continue
		}
		series = append(series, obs)
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed series rows", "path", s.seriesPath, "count", skipped)
	}
	return series, nil
}

// WriteDistrictCodes persists the sorted district list; the row index is
// the code.
func (s *Store) WriteDistrictCodes(_ context.Context, names []string) error {
	rows := make([][]string, 0, len(names)+1)
	rows = append(rows, codesHeader)
	for code, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(code)})
	}
	return writeAll(s.codesPath, rows)
}

// LoadDistrictCodes restores the district list in code order.
func (s *Store) LoadDistrictCodes(_ context.Context) ([]string, error) {
	records, err := readAll(s.codesPath)
	if err != nil {
		return nil, fmt.Errorf("load district codes: %w", err)
	}
	var names []string
	for i, rec := range records {
		if i == 0 || len(rec) < 1 {
			continue
		}
		names = append(names, rec[0])
	}
	return names, nil
}

func parseSeriesRow(rec []string) (domain.Observation, bool) {
	if len(rec) < len(seriesHeader) {
		return domain.Observation{}, false
	}
	date, err := time.Parse(dateLayout, rec[0])
	if err != nil {
		return domain.Observation{}, false
	}
	year, err1 := strconv.Atoi(rec[1])
	month, err2 := strconv.Atoi(rec[2])
	day, err3 := strconv.Atoi(rec[3])
	rainfall, err4 := strconv.ParseFloat(rec[6], 64)
	label, err5 := strconv.Atoi(rec[7])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return domain.Observation{}, false
	}
	return domain.Observation{
		Date:     date,
		Year:     year,
		Month:    month,
		Day:      day,
		Station:  rec[4],
		District: rec[5],
		Rainfall: rainfall,
		Label:    label,
	}, true
}

func writeAll(path string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows; parse decides validity
	return r.ReadAll()
}

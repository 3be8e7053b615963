package domain

import (
	"math"
	"sort"
	"time"
)

// ReshapeStats counts what the reshaper dropped. Drops are expected for
// every corpus (day 31 rows in 30-day months) and are never fatal.
type ReshapeStats struct {
	RowsIn          int
	RowsOut         int
	InvalidDates    int
	MissingRainfall int
}

// BuildCanonicalSeries merges per-document observation sets into one
// long-form daily series. The reporting year of each document attaches to
// its rows, impossible calendar dates and missing rainfall values drop out,
// the rain/no-rain label is derived, and the result is sorted by
// (station, date). The sort order is a precondition for rolling feature
// windows, which span document boundaries within a station's series.
//
// The output is deterministic for a given input set regardless of document
// processing order. Duplicate (station, date) rows survive: an upstream
// page counted twice should be visible downstream, not silently merged.
func BuildCanonicalSeries(docs []DocumentObservations) (CanonicalSeries, ReshapeStats) {
	var series CanonicalSeries
	var stats ReshapeStats
	now := clock.Now()

	for _, doc := range docs {
		for _, row := range doc.Observations {
			stats.RowsIn++
			date, ok := validDate(doc.Year, row.Month, row.Day)
			if !ok {
				stats.InvalidDates++
				continue
			}
			if math.IsNaN(row.Rainfall) {
				stats.MissingRainfall++
				continue
			}
			series = append(series, Observation{
				Date:        date,
				Year:        doc.Year,
				Month:       int(row.Month),
				Day:         row.Day,
				Station:     row.Station,
				District:    row.District,
				Rainfall:    row.Rainfall,
				Label:       rainLabel(row.Rainfall),
				ProcessedAt: now,
			})
		}
	}

	sortSeries(series)
	stats.RowsOut = len(series)
	return series, stats
}

// sortSeries orders by (station, date) with a full tiebreak so the result
// does not depend on input order even when duplicates disagree on value.
func sortSeries(series CanonicalSeries) {
	sort.SliceStable(series, func(i, j int) bool {
		a, b := series[i], series[j]
		if a.Station != b.Station {
			return a.Station < b.Station
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Rainfall != b.Rainfall {
			return a.Rainfall < b.Rainfall
		}
		return a.District < b.District
	})
}

func rainLabel(rainfall float64) int {
	if rainfall >= RainDayThresholdMM {
		return 1
	}
	return 0
}

// validDate reports whether (year, month, day) names a real calendar day.
// time.Date normalizes overflow (Feb 30 → Mar 2), so construct and compare.
func validDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

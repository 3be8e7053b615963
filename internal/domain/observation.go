package domain

import "time"

// RainDayThresholdMM labels a day rainy when at least this much rain fell.
const RainDayThresholdMM = 1.0

// FlatObservation is the join of the page-time metadata snapshot with one
// (day, month) cell of a daily record. The reporting year is not known at
// assembly time; it attaches during reshape.
type FlatObservation struct {
	Station     string
	District    string
	Subdistrict string
	Day         int
	Month       time.Month
	Rainfall    float64
}

// DocumentObservations is one document's assembled output plus the external
// grouping the corpus walk discovered for it.
type DocumentObservations struct {
	Year         int
	SourceFile   string
	Observations []FlatObservation
}

// Observation is one canonical per-station daily rainfall row.
type Observation struct {
	Date        time.Time `json:"date"`
	Year        int       `json:"tahun"`
	Month       int       `json:"bulan"`
	Day         int       `json:"tanggal"`
	Station     string    `json:"nama_pos"`
	District    string    `json:"kabupaten"`
	Rainfall    float64   `json:"curah_hujan"`
	Label       int       `json:"label"`
	ProcessedAt time.Time `json:"processed_at"`
}

// CanonicalSeries is the chronologically sorted per-station daily record set.
// It is the single source of truth for training and forecast feature
// derivation; both read it, neither mutates it. Duplicate (station, date)
// rows from overlapping report pages are preserved, not merged.
type CanonicalSeries []Observation

// Stations returns the distinct station names in series order of first
// appearance.
func (s CanonicalSeries) Stations() []string {
	seen := make(map[string]bool)
	var names []string
	for _, obs := range s {
		if !seen[obs.Station] {
			seen[obs.Station] = true
			names = append(names, obs.Station)
		}
	}
	return names
}

// Station returns the sub-series for one station, preserving order. The
// returned slice aliases the series and must not be modified.
func (s CanonicalSeries) Station(name string) []Observation {
	var lo, hi = -1, -1
	for i, obs := range s {
		if obs.Station != name {
			if lo >= 0 {
				break
			}
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i + 1
	}
	if lo < 0 {
		return nil
	}
	return s[lo:hi]
}

package domain

import (
	"math"
	"sort"
	"time"
)

// UnknownDistrictCode is emitted for districts never seen during training.
const UnknownDistrictCode = -1

// wetSeason marks the months of the Indonesian rainy season (October-March).
var wetSeason = map[int]bool{10: true, 11: true, 12: true, 1: true, 2: true, 3: true}

// FeatureColumns is the fixed column order of the training and inference
// feature matrix. Names follow the persisted Indonesian schema.
var FeatureColumns = []string{
	"Kabupaten_Code",
	"sin_bulan", "cos_bulan",
	"sin_tgl", "cos_tgl",
	"Musim",
	"rain_prev_1", "rain_prev_3", "rain_prev_7",
	"rain_prev_14", "rain_prev_30",
}

// FeatureVector is one model input row. Derived on demand, never persisted
// apart from the training matrix handed to the classifier.
type FeatureVector struct {
	DistrictCode float64 `json:"kabupaten_code"`
	SinMonth     float64 `json:"sin_bulan"`
	CosMonth     float64 `json:"cos_bulan"`
	SinDay       float64 `json:"sin_tgl"`
	CosDay       float64 `json:"cos_tgl"`
	Season       float64 `json:"musim"`
	RainPrev1    float64 `json:"rain_prev_1"`
	RainPrev3    float64 `json:"rain_prev_3"`
	RainPrev7    float64 `json:"rain_prev_7"`
	RainPrev14   float64 `json:"rain_prev_14"`
	RainPrev30   float64 `json:"rain_prev_30"`
}

// Row flattens the vector in FeatureColumns order.
func (v FeatureVector) Row() []float64 {
	return []float64{
		v.DistrictCode,
		v.SinMonth, v.CosMonth,
		v.SinDay, v.CosDay,
		v.Season,
		v.RainPrev1, v.RainPrev3, v.RainPrev7,
		v.RainPrev14, v.RainPrev30,
	}
}

// DistrictEncoder assigns each district seen during training a stable
// integer code: its index in the sorted distinct district list. Unknown
// districts at inference map to UnknownDistrictCode, never an error.
type DistrictEncoder struct {
	names []string
	codes map[string]int
}

// NewDistrictEncoder builds the code table from the training series.
func NewDistrictEncoder(series CanonicalSeries) *DistrictEncoder {
	seen := make(map[string]bool)
	for _, obs := range series {
		seen[obs.District] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return NewDistrictEncoderFromNames(names)
}

// NewDistrictEncoderFromNames restores an encoder from a persisted, already
// sorted code table.
func NewDistrictEncoderFromNames(names []string) *DistrictEncoder {
	codes := make(map[string]int, len(names))
	for i, name := range names {
		codes[name] = i
	}
	return &DistrictEncoder{names: names, codes: codes}
}

// Code returns the district's training-time code, or UnknownDistrictCode.
func (e *DistrictEncoder) Code(district string) int {
	if code, ok := e.codes[district]; ok {
		return code
	}
	return UnknownDistrictCode
}

// Names returns the sorted district list backing the code table.
func (e *DistrictEncoder) Names() []string {
	return e.names
}

// FeatureEngine derives feature vectors from a canonical series. The series
// is read-only once the engine is built; engines are safe for concurrent use.
type FeatureEngine struct {
	byStation map[string][]Observation
	encoder   *DistrictEncoder
}

// NewFeatureEngine indexes the series per station. The series must already
// be in canonical (station, date) order.
func NewFeatureEngine(series CanonicalSeries, encoder *DistrictEncoder) *FeatureEngine {
	byStation := make(map[string][]Observation)
	for _, name := range series.Stations() {
		byStation[name] = series.Station(name)
	}
	return &FeatureEngine{byStation: byStation, encoder: encoder}
}

// Features computes the model input for one station and target date.
//
// Calendar terms are cyclical encodings of month and day of month. The day
// divisor is fixed at 31 for every month; models were trained against that
// encoding and inference must reproduce it exactly.
//
// Historical terms only ever read rows dated strictly before the target.
// Rolling windows over the most recent prior rows apply whenever at least
// one prior row exists, truncating to however many there are. A station
// with no history before the target takes the climatological fallback.
func (e *FeatureEngine) Features(station, district string, target time.Time) FeatureVector {
	target = midnightUTC(target)
	v := calendarFeatures(target)
	v.DistrictCode = float64(e.encoder.Code(district))

	history := e.byStation[station]
	prior := priorRows(history, target)

	if len(prior) > 0 {
		applyRollingWindows(&v, prior)
	} else {
		applyClimatology(&v, monthlyAverage(history, int(target.Month())))
	}
	return v
}

// ForecastFeatures is the serving-time variant. The rolling windows are only
// trusted when the target date itself was observed for the station; a gap
// inside the covered range or a date beyond the last observation falls back
// to the climatological monthly average, matching how the model's features
// were produced for dates it was never trained on.
func (e *FeatureEngine) ForecastFeatures(station, district string, target time.Time) FeatureVector {
	target = midnightUTC(target)
	history := e.byStation[station]
	if hasExactDate(history, target) {
		return e.Features(station, district, target)
	}

	v := calendarFeatures(target)
	v.DistrictCode = float64(e.encoder.Code(district))
	applyClimatology(&v, monthlyAverage(history, int(target.Month())))
	return v
}

// Covers reports whether the station's series has an observation dated
// exactly target.
func (e *FeatureEngine) Covers(station string, target time.Time) bool {
	return hasExactDate(e.byStation[station], midnightUTC(target))
}

func calendarFeatures(target time.Time) FeatureVector {
	month := float64(target.Month())
	day := float64(target.Day())
	v := FeatureVector{
		SinMonth: math.Sin(2 * math.Pi * month / 12),
		CosMonth: math.Cos(2 * math.Pi * month / 12),
		SinDay:   math.Sin(2 * math.Pi * day / 31),
		CosDay:   math.Cos(2 * math.Pi * day / 31),
	}
	if wetSeason[int(target.Month())] {
		v.Season = 1
	}
	return v
}

// priorRows returns the up-to-30 most recent rows strictly before target,
// oldest first. Thirty is the widest window any feature reads.
func priorRows(history []Observation, target time.Time) []Observation {
	n := 0
	for n < len(history) && history[n].Date.Before(target) {
		n++
	}
	if n > 30 {
		return history[n-30 : n]
	}
	return history[:n]
}

func hasExactDate(history []Observation, target time.Time) bool {
	for _, obs := range history {
		if obs.Date.Equal(target) {
			return true
		}
		if obs.Date.After(target) {
			break
		}
	}
	return false
}

// applyRollingWindows fills the historical terms from the tail of prior,
// most recent last. Every window truncates to the rows that exist rather
// than demanding a full span; train and inference share this contract.
func applyRollingWindows(v *FeatureVector, prior []Observation) {
	v.RainPrev1 = prior[len(prior)-1].Rainfall
	v.RainPrev3 = tailMean(prior, 3)
	v.RainPrev7 = tailMean(prior, 7)
	v.RainPrev14 = tailSum(prior, 14)
	v.RainPrev30 = tailSum(prior, 30)
}

// applyClimatology substitutes the long-run monthly average: the single-day
// terms take the average itself, the 14- and 30-day sums scale it.
func applyClimatology(v *FeatureVector, avg float64) {
	v.RainPrev1 = avg
	v.RainPrev3 = avg
	v.RainPrev7 = avg
	v.RainPrev14 = avg * 14
	v.RainPrev30 = avg * 30
}

// monthlyAverage is the station's mean rainfall for one calendar month
// across all years of history, or 0 when the station has no such rows.
func monthlyAverage(history []Observation, month int) float64 {
	sum, count := 0.0, 0
	for _, obs := range history {
		if obs.Month == month {
			sum += obs.Rainfall
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func tailMean(rows []Observation, n int) float64 {
	if len(rows) < n {
		n = len(rows)
	}
	return tailSum(rows, n) / float64(n)
}

func tailSum(rows []Observation, n int) float64 {
	if len(rows) < n {
		n = len(rows)
	}
	sum := 0.0
	for _, obs := range rows[len(rows)-n:] {
		sum += obs.Rainfall
	}
	return sum
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

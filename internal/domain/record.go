package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// MonthsPerYear is the number of value columns in a bulletin day row.
const MonthsPerYear = 12

// nonNumericRe strips everything that is not a digit or decimal point after
// comma normalization, discarding stray characters PDF extraction bleeds
// into value cells.
var nonNumericRe = regexp.MustCompile(`[^\d.]`)

// dayTokenRe recognizes a pure-digit day token. strconv.Atoi is too lenient
// here: it accepts signs, which a bulletin day column never carries.
var dayTokenRe = regexp.MustCompile(`^\d+$`)

// DailyRecord is one parsed bulletin table row: a day of month and its
// twelve monthly rainfall values, January first. Immutable once created.
type DailyRecord struct {
	Day    int
	Values [MonthsPerYear]float64
}

// CleanNumber coerces a raw bulletin cell into a rainfall amount.
// Empty cells, "-", and "." mean no measurement and map to 0.0; commas are
// decimal separators; anything unparseable after cleanup maps to 0.0.
// Never fails and never returns a negative value.
func CleanNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-", ".":
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	raw = nonNumericRe.ReplaceAllString(raw, "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseRecordLine attempts to read one line of page text as a daily rainfall
// row. It returns ok=false for structural non-matches: fewer than 13
// whitespace-separated tokens, a leading token that is not a pure-digit day
// number, or a day outside [1,31]. A structural non-match is not an error;
// most page lines are headers, footers, or prose.
func ParseRecordLine(line string) (DailyRecord, bool) {
	parts := strings.Fields(line)
	if len(parts) < 1+MonthsPerYear {
		return DailyRecord{}, false
	}
	if !dayTokenRe.MatchString(parts[0]) {
		return DailyRecord{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return DailyRecord{}, false
	}

	rec := DailyRecord{Day: day}
	for i := 0; i < MonthsPerYear; i++ {
		rec.Values[i] = CleanNumber(parts[1+i])
	}
	return rec, true
}

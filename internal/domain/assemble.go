package domain

import (
	"strings"
	"time"
)

// AssembleDocument walks a bulletin page by page, carrying the last known
// station metadata forward, and joins it to every daily record parsed from
// page text. Propagation is forward-only: each record is joined with the
// snapshot as of its own page, so metadata discovered on a later page never
// rewrites rows already emitted.
//
// A document with no recognizable rows yields an empty slice, not an error;
// only an unreadable document surfaces the decoder's failure.
func AssembleDocument(doc Document) ([]FlatObservation, error) {
	pages, err := doc.Pages()
	if err != nil {
		return nil, err
	}

	var rows []FlatObservation
	var lastKnown StationMetadata
	for _, page := range pages {
		text := page.Text()
		overlay := ExtractMetadata(text, page.Tables())
		if !overlay.IsEmpty() {
			lastKnown = lastKnown.Merge(overlay)
		}
		rows = append(rows, explodeRecords(text, lastKnown)...)
	}
	return rows, nil
}

// explodeRecords parses every line of page text and emits one observation
// per month column of each matched record, joined with the current snapshot.
func explodeRecords(text string, meta StationMetadata) []FlatObservation {
	var rows []FlatObservation
	for _, line := range strings.Split(text, "\n") {
		rec, ok := ParseRecordLine(line)
		if !ok {
			continue
		}
		for i, value := range rec.Values {
			rows = append(rows, FlatObservation{
				Station:     orUnknown(meta.Station),
				District:    orUnknown(meta.District),
				Subdistrict: orUnknown(meta.Subdistrict),
				Day:         rec.Day,
				Month:       time.Month(i + 1),
				Rainfall:    value,
			})
		}
	}
	return rows
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownField
	}
	return s
}

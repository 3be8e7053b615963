package domain

import (
	"regexp"
	"strings"
)

// UnknownField is the sentinel emitted for metadata fields never discovered
// in a document. Rows keep their full shape so downstream joins stay flat.
const UnknownField = "Unknown"

// StationMetadata identifies the observation point a bulletin page belongs to.
// Fields stay empty until first discovered and are only ever changed by
// overlay merge; a document's assembler carries the last known snapshot
// forward across pages that omit the header block.
type StationMetadata struct {
	Station     string
	District    string
	Subdistrict string
}

// IsEmpty reports whether no field has been discovered.
func (m StationMetadata) IsEmpty() bool {
	return m.Station == "" && m.District == "" && m.Subdistrict == ""
}

// Merge returns a new snapshot where every non-empty overlay field replaces
// the receiver's value. Merging an empty overlay returns the receiver
// unchanged.
func (m StationMetadata) Merge(overlay StationMetadata) StationMetadata {
	if overlay.Station != "" {
		m.Station = overlay.Station
	}
	if overlay.District != "" {
		m.District = overlay.District
	}
	if overlay.Subdistrict != "" {
		m.Subdistrict = overlay.Subdistrict
	}
	return m
}

// metadataField tags which StationMetadata field a matching rule fills.
type metadataField int

const (
	fieldStation metadataField = iota
	fieldDistrict
	fieldSubdistrict
)

func (m *StationMetadata) set(field metadataField, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch field {
	case fieldStation:
		m.Station = value
	case fieldDistrict:
		m.District = value
	case fieldSubdistrict:
		m.Subdistrict = value
	}
}

// textRules match labelled header lines in page free text. Each pattern
// captures everything after the first colon/space delimiter up to line end.
// Evaluated in order; the first match per field wins within the text pass.
var textRules = []struct {
	field   metadataField
	pattern *regexp.Regexp
}{
	{fieldStation, regexp.MustCompile(`(?i)(?:Nama Pos|Pos)\s*[: ]+\s*(.+)`)},
	{fieldDistrict, regexp.MustCompile(`(?i)(?:Kabupaten|Kota/Kabupaten)\s*[: ]+\s*(.+)`)},
	{fieldSubdistrict, regexp.MustCompile(`(?i)(?:Kecamatan)\s*[: ]+\s*(.+)`)},
}

// tableRules match the lower-cased first cell of a table row by substring.
// Evaluated in order; the first rule whose keyword matches claims the row.
var tableRules = []struct {
	field    metadataField
	keywords []string
}{
	{fieldStation, []string{"nama stasiun", "nama pos", "stasiun"}},
	{fieldDistrict, []string{"kabupaten", "kota"}},
	{fieldSubdistrict, []string{"kecamatan"}},
}

// ExtractMetadata recovers a partial metadata overlay from one page. Two
// independent passes run in a fixed priority order: the text pass first,
// then the table pass, which wins on conflict. No matches yield an empty
// overlay; extraction never fails.
func ExtractMetadata(text string, tables []Table) StationMetadata {
	overlay := extractFromText(text)
	return overlay.Merge(extractFromTables(tables))
}

func extractFromText(text string) StationMetadata {
	var overlay StationMetadata
	for _, rule := range textRules {
		m := rule.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		overlay.set(rule.field, m[1])
	}
	return overlay
}

func extractFromTables(tables []Table) StationMetadata {
	var overlay StationMetadata
	for _, table := range tables {
		for _, row := range table {
			cells := cleanCells(row)
			if len(cells) < 2 {
				continue
			}
			key := strings.ToLower(cells[0])
			if key == "" {
				continue
			}
			applyTableRow(&overlay, key, cells)
		}
	}
	return overlay
}

func applyTableRow(overlay *StationMetadata, key string, cells []string) {
	for _, rule := range tableRules {
		if !matchesAny(key, rule.keywords) {
			continue
		}
		value := cells[1]
		// Header tables sometimes carry an empty spacer column between
		// label and value.
		if rule.field == fieldStation && value == "" && len(cells) > 2 {
			value = cells[2]
		}
		overlay.set(rule.field, value)
		return
	}
}

func matchesAny(key string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// cleanCells trims whitespace and replaces absent cells with "".
func cleanCells(row []*string) []string {
	cells := make([]string, len(row))
	for i, cell := range row {
		if cell == nil {
			continue
		}
		cells[i] = strings.TrimSpace(*cell)
	}
	return cells
}

// Package domain models Indonesian daily rainfall bulletins (laporan curah
// hujan harian) and the feature computations derived from them.
//
// # Data Source
//
// Bulletins are PDF documents published per station per year by regional
// water offices. Each page carries a header block identifying the station
// and a fixed-width table of daily values: one row per day of month (1-31),
// twelve columns of rainfall amounts in millimetres (January through
// December).
//
// # Bulletin Conventions
//
// Header fields (free text or small header tables, Indonesian labels):
//
//	"Nama Pos" / "Pos"              → station name
//	"Kabupaten" / "Kota/Kabupaten"  → district
//	"Kecamatan"                     → sub-district
//
// Header fields do not repeat on every page. The last seen value carries
// forward within a document; fields never discovered emit the "Unknown"
// sentinel so row shape is preserved for downstream joins.
//
// Daily rows:
//
//	"<day> <Jan> <Feb> ... <Des>"  →  13+ whitespace-separated tokens.
//	The leading day number (1-31) is the only stable recognition signal;
//	PDF text extraction gives no reliable column boundaries.
//
// Value encoding:
//
//	Comma is the decimal separator: "12,5" = 12.5 mm.
//	"-", ".", and empty cells are recorded as 0.0 (no rain measured).
//	Stray non-numeric characters from PDF extraction are stripped.
//	Nothing in a value cell is ever a parse error; unreadable values
//	coerce to 0.0. See [CleanNumber].
//
// Calendar handling:
//
//	Bulletins print 31 rows regardless of month length, so day 31 in a
//	30-day month (and day 29/30/31 in February) produces impossible
//	dates. Those rows are dropped during reshape, never zero-filled.
//
// # Labels and Features
//
// A day is labelled rainy when rainfall >= 1.0 mm, the WMO "rain day"
// threshold. Feature vectors combine cyclical calendar encodings with
// rolling windows over the most recent prior observations; windows
// truncate at series start rather than requiring a full span, and only
// rows strictly before the target date may contribute. When no usable
// history exists the engine substitutes the station's long-run monthly
// average (climatological fallback). See [FeatureEngine].
package domain

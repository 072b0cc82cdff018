// Package appletime converts the raw numeric timestamps found in iMessage
// chat.db archives into absolute time.
//
// Apple has shipped three encodings of the message date column over the
// years: seconds since 2001-01-01, nanoseconds since 2001-01-01, and (in
// some third-party exports) plain Unix seconds. The raw value alone does
// not say which one it is, so classification is by magnitude.
package appletime

import "time"

// Epoch is 2001-01-01 00:00:00 UTC, the reference date for Cocoa timestamps.
var Epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// EpochOffsetSeconds is the number of seconds between the Unix epoch and Epoch.
const EpochOffsetSeconds = 978307200

// Encoding identifies how a raw timestamp value was encoded.
type Encoding int

const (
	// EncodingNanoseconds is nanoseconds since Epoch (modern chat.db).
	EncodingNanoseconds Encoding = iota
	// EncodingSeconds is seconds since Epoch (pre-High Sierra chat.db).
	EncodingSeconds
	// EncodingUnixSeconds is seconds since the Unix epoch.
	EncodingUnixSeconds
)

// Classify determines the encoding of a raw timestamp value.
// The nanosecond check must run before the seconds check: a nanosecond
// value is always > 1e12, while a seconds-since-2001 value stays below
// 2e9 for several centuries. Values between the two bounds are treated
// as already-absolute Unix seconds.
func Classify(raw float64) Encoding {
	if raw > 1e12 {
		return EncodingNanoseconds
	}
	if raw < 2e9 {
		return EncodingSeconds
	}
	return EncodingUnixSeconds
}

// ToUnixSeconds converts a raw timestamp to seconds since the Unix epoch.
func ToUnixSeconds(raw float64) float64 {
	switch Classify(raw) {
	case EncodingNanoseconds:
		return raw/1e9 + EpochOffsetSeconds
	case EncodingSeconds:
		return raw + EpochOffsetSeconds
	default:
		return raw
	}
}

// ToTime converts a raw timestamp to a time.Time in the given location.
// A nil location means time.Local, matching how chat exports render dates.
func ToTime(raw float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	unix := ToUnixSeconds(raw)
	sec := int64(unix)
	nsec := int64((unix - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).In(loc)
}

// SortableFormat is the canonical sent_at rendering stored in the database.
// Lexicographic order on this format matches chronological order, and the
// prefix compares cleanly against plain "2006-01-02" date boundary strings.
const SortableFormat = "2006-01-02 15:04:05"

// FormatSortable renders a raw timestamp as a sortable datetime string.
func FormatSortable(raw float64, loc *time.Location) string {
	return ToTime(raw, loc).Format(SortableFormat)
}

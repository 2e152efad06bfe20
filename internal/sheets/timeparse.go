package sheets

import (
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the canonical on-write timestamp format.
const TimestampLayout = "2006-01-02 15:04"

// timestampLayouts are the formats tolerated when reading rows back. The
// sheets accumulated several formats over time, from manual edits and from
// spreadsheet locale settings rewriting cells.
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2006/01/02 15:04",
	"02-01-2006 15:04",
	"2.1.2006 15:04",
	"2006-01-02",
}

// ParseTimestamp reads a cell value in any tolerated timestamp format,
// interpreting zone-less formats in loc. It returns false for values that
// match no format; callers skip such rows.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, s); err == nil {
				return t.In(loc), true
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClockMinutes reads a wall-clock value like "13:10" or "7:05" as
// minutes since midnight.
func ParseClockMinutes(s string) (int, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// ParseDurationMinutes reads a duration cell. New rows hold a plain integer
// minute count; older rows used "H:MM", which is accepted read-only.
func ParseDurationMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if h, m, ok := strings.Cut(s, ":"); ok {
		hours, err1 := strconv.Atoi(h)
		minutes, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil || hours < 0 || minutes < 0 {
			return 0, false
		}
		return hours*60 + minutes, true
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	// Spreadsheet backends sometimes render whole numbers as floats.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

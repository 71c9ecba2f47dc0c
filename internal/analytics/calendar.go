package analytics

import (
	"time"
)

// Date layouts accepted by CoerceDate, tried in order. Store clients written
// in other languages have historically written both full timestamps and bare
// calendar dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CoerceDate turns a raw stored date value into a usable time.Time. It
// accepts native timestamps, pointers to them, and ISO-style strings; every
// other shape (nil, numbers, malformed strings) is reported invalid.
//
// Invalid dates are never rejected at ingestion. The caller keeps the record
// and each downstream computation skips it only where a date is actually
// needed.
func CoerceDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, false
		}
		return d, true
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, false
		}
		return *d, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// SameMonth reports whether a and b fall in the same calendar month of the
// same year.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthKey identifies one calendar month unambiguously. Display code groups
// by month name, but keys carry the year so that windows longer than twelve
// months can never collide.
type MonthKey struct {
	Year  int
	Month time.Month
}

// KeyOf returns the MonthKey for t.
func KeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Label is the short display name of the month ("Jan", "Feb", ...).
func (k MonthKey) Label() string {
	return k.Month.String()[:3]
}

// MonthWindow returns the n calendar months ending at the month containing
// ref, oldest first and ref's month last.
func MonthWindow(ref time.Time, n int) []MonthKey {
	keys := make([]MonthKey, 0, n)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	for i := n - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		keys = append(keys, KeyOf(m))
	}
	return keys
}

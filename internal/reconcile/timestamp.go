package reconcile

import "time"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses the ISO-8601 forms found in the catalogs. Values
// without an offset are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// earlier orders timestamps ascending; unparseable values sort after all
// parseable ones and compare equal to each other.
func earlier(a, b string) bool {
	ta, okA := ParseTimestamp(a)
	tb, okB := ParseTimestamp(b)
	switch {
	case okA && okB:
		return ta.Before(tb)
	case okA:
		return true
	default:
		return false
	}
}

// later orders timestamps descending, again with unparseable values last.
func later(a, b string) bool {
	ta, okA := ParseTimestamp(a)
	tb, okB := ParseTimestamp(b)
	switch {
	case okA && okB:
		return ta.After(tb)
	case okA:
		return true
	default:
		return false
	}
}

package coerce

import (
	"math"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

// ToDate converts strings (RFC3339, date-time and date-only layouts) and unix
// milliseconds into time.Time. Unreadable input is returned unchanged.
func ToDate(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
		return v
	case string:
		if tm, ok := parseDate(t); ok {
			return tm
		}
		return v
	case bool, nil:
		return v
	}
	f, ok := number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	return time.UnixMilli(int64(f)).UTC()
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, true
		}
	}
	return time.Time{}, false
}

package domain

import (
	"regexp"
	"time"
)

// HourFunc maps an absolute instant to an hour of day (0-23) in some
// civil timezone.
type HourFunc func(time.Time) int

// HourStrategy is one tier of the timezone resolution chain. It
// reports whether it could resolve the hour; a false result hands the
// instant to the next tier.
type HourStrategy func(time.Time) (int, bool)

var offsetPattern = regexp.MustCompile(`([+-])(\d{2}):(\d{2})$`)

// HourInZone resolves the civil hour through the runtime's timezone
// database. Fails for an empty or unknown zone name.
func HourInZone(zone string) HourStrategy {
	return func(t time.Time) (int, bool) {
		if zone == "" {
			return 0, false
		}
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return 0, false
		}
		return t.In(loc).Hour(), true
	}
}

// HourAtOffset extracts a fixed +-HH:MM offset from the tail of the
// window's from boundary and applies it to the UTC hour. Fails when
// the boundary carries no such suffix.
func HourAtOffset(boundary string) HourStrategy {
	return func(t time.Time) (int, bool) {
		m := offsetPattern.FindStringSubmatch(boundary)
		if m == nil {
			return 0, false
		}
		hh := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
		mm := int(m[3][0]-'0')*10 + int(m[3][1]-'0')
		shift := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
		if m[1] == "-" {
			shift = -shift
		}
		return t.UTC().Add(shift).Hour(), true
	}
}

// HourLocal is the terminal tier: the hour in the process's local
// timezone. Never fails.
func HourLocal(t time.Time) (int, bool) {
	return t.In(time.Local).Hour(), true
}

// NewHourFunc builds the full fallback chain: named zone, then fixed
// offset parsed from the window's from boundary, then local time. The
// returned function never fails; an unresolvable zone degrades through
// the chain.
func NewHourFunc(zone, fromBoundary string) HourFunc {
	chain := []HourStrategy{HourInZone(zone), HourAtOffset(fromBoundary), HourLocal}
	return func(t time.Time) int {
		for _, tier := range chain {
			if h, ok := tier(t); ok {
				return h
			}
		}
		return t.Hour()
	}
}

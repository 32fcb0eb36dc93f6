package domain

import (
	"regexp"
	"time"
)

// DefaultDuration is the window applied when no duration and no
// explicit bounds are supplied, or when the duration does not parse.
const DefaultDuration = 24 * time.Hour

var durationPattern = regexp.MustCompile(`^(\d+)([hd])$`)

// WindowSpec is the user-supplied description of a reporting window:
// either a relative duration ("12h", "7d") or an explicit RFC3339
// from/to pair. All fields are optional; anything malformed falls back
// to the default duration rather than failing.
type WindowSpec struct {
	Duration string
	From     string
	To       string
}

// Window is a resolved reporting window: concrete bounds plus the
// bucketing scheme derived from the span.
type Window struct {
	From         time.Time
	To           time.Time
	IntervalSize time.Duration
	Intervals    int
}

// ResolveWindow turns a WindowSpec into concrete bounds relative to
// now. Explicit from/to bounds win when both parse; otherwise the
// duration (default 24h) is anchored at now. The result always
// satisfies From <= To and IntervalSize*Intervals >= To-From.
func ResolveWindow(spec WindowSpec, now time.Time) Window {
	from, fromErr := time.Parse(time.RFC3339, spec.From)
	to, toErr := time.Parse(time.RFC3339, spec.To)
	if fromErr != nil || toErr != nil {
		d := ParseDuration(spec.Duration)
		to = now
		from = now.Add(-d)
	}
	if from.After(to) {
		from, to = to, from
	}

	size := intervalSize(to.Sub(from))
	count := int((to.Sub(from) + size - 1) / size)
	if count < 1 {
		count = 1
	}
	return Window{From: from, To: to, IntervalSize: size, Intervals: count}
}

// ParseDuration parses the \d+[hd] duration form. Anything else,
// including the empty string, resolves to DefaultDuration.
func ParseDuration(s string) time.Duration {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return DefaultDuration
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
		if n > 1<<20 {
			return DefaultDuration
		}
	}
	if n == 0 {
		return DefaultDuration
	}
	if m[2] == "d" {
		return time.Duration(n) * 24 * time.Hour
	}
	return time.Duration(n) * time.Hour
}

// intervalSize picks a bucket width that keeps the bucket count near
// 24 regardless of span: 1h up to a day, then 2h/3h for two- and
// three-day spans, then one bucket per 24h of span.
func intervalSize(span time.Duration) time.Duration {
	hours := int((span + time.Hour - 1) / time.Hour)
	switch {
	case hours <= 24:
		return time.Hour
	case hours <= 48:
		return 2 * time.Hour
	case hours <= 72:
		return 3 * time.Hour
	default:
		return time.Duration((hours+23)/24) * time.Hour
	}
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcHour(t time.Time) int { return t.UTC().Hour() }

func hourlyWindow() Window {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return Window{From: from, To: from.Add(24 * time.Hour), IntervalSize: time.Hour, Intervals: 24}
}

func TestHistogram_HourOfDayBuckets(t *testing.T) {
	win := hourlyWindow()
	timestamps := []time.Time{
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC),
	}

	counts := Histogram(win, utcHour, timestamps)

	require.Len(t, counts, 24)
	assert.Equal(t, 2, counts[9])
	assert.Equal(t, 1, counts[14])
	sum := 0
	for _, c := range counts {
		sum += c
	}
	assert.Equal(t, 3, sum)
}

// Feeding the same timestamps in any permutation must yield identical
// buckets and an identical peak.
func TestHistogram_OrderIndependent(t *testing.T) {
	win := hourlyWindow()
	timestamps := []time.Time{
		time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	forward := Histogram(win, utcHour, timestamps)

	reversed := make([]time.Time, len(timestamps))
	for i, ts := range timestamps {
		reversed[len(timestamps)-1-i] = ts
	}
	backward := Histogram(win, utcHour, reversed)

	assert.Equal(t, forward, backward)
	assert.Equal(t, PeakInterval(forward), PeakInterval(backward))
}

func TestHistogram_DiscardsOutOfWindow(t *testing.T) {
	win := hourlyWindow()
	timestamps := []time.Time{
		win.From.Add(-time.Minute),
		win.To.Add(time.Minute),
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	counts := Histogram(win, utcHour, timestamps)

	sum := 0
	for _, c := range counts {
		sum += c
	}
	assert.Equal(t, 1, sum)
}

func TestHistogram_DiscardsOutOfRangeIndex(t *testing.T) {
	// A 12-bucket hourly window: in-window afternoon commits map to
	// hour-of-day indices beyond the last bucket and are dropped.
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	win := Window{From: from, To: from.Add(12 * time.Hour), IntervalSize: time.Hour, Intervals: 12}

	counts := Histogram(win, func(time.Time) int { return 15 }, []time.Time{from.Add(time.Hour)})

	require.Len(t, counts, 12)
	for _, c := range counts {
		assert.Zero(t, c)
	}
}

func TestHistogram_WideBucketsIndexFromWindowStart(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	win := Window{From: from, To: from.Add(72 * time.Hour), IntervalSize: 3 * time.Hour, Intervals: 24}
	timestamps := []time.Time{
		from,                     // bucket 0
		from.Add(7 * time.Hour),  // bucket 2
		from.Add(8 * time.Hour),  // bucket 2
		from.Add(71 * time.Hour), // bucket 23
	}

	counts := Histogram(win, utcHour, timestamps)

	require.Len(t, counts, 24)
	assert.Equal(t, 1, counts[0])
	assert.Equal(t, 2, counts[2])
	assert.Equal(t, 1, counts[23])
}

func TestPeakInterval(t *testing.T) {
	testCases := []struct {
		name     string
		counts   []int
		expected *int
	}{
		{name: "single peak", counts: []int{0, 0, 5, 1}, expected: intPtr(2)},
		{name: "tie breaks toward earliest index", counts: []int{3, 3, 0, 0}, expected: intPtr(0)},
		{name: "peak at index zero is a real peak", counts: []int{2, 1, 0}, expected: intPtr(0)},
		{name: "all zero means no peak", counts: []int{0, 0, 0, 0}, expected: nil},
		{name: "empty means no peak", counts: nil, expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PeakInterval(tc.counts))
		})
	}
}

func TestSummarizeIntervals(t *testing.T) {
	t.Run("basic distribution", func(t *testing.T) {
		summary := SummarizeIntervals([]int{1, 2, 3})

		assert.InDelta(t, 2.0, summary.Mean, 1e-9)
		assert.InDelta(t, 2.0, summary.Median, 1e-9)
		assert.InDelta(t, 3.0, summary.Max, 1e-9)
	})

	t.Run("empty histogram", func(t *testing.T) {
		assert.Equal(t, IntervalSummary{}, SummarizeIntervals(nil))
	})
}

func intPtr(v int) *int { return &v }

package domain

import (
	"time"

	"github.com/montanaflynn/stats"
)

// Histogram folds commit timestamps into the window's interval
// buckets. 1-hour buckets index by civil hour of day through the
// supplied HourFunc, so the index doubles as an hour-of-day; wider
// buckets index by offset from the window start. Timestamps outside
// the window and indices outside [0, Intervals) are discarded, so the
// bucket sum may undercount the input.
func Histogram(win Window, hour HourFunc, timestamps []time.Time) []int {
	counts := make([]int, win.Intervals)
	for _, t := range timestamps {
		if t.Before(win.From) || t.After(win.To) {
			continue
		}
		var idx int
		if win.IntervalSize == time.Hour {
			idx = hour(t)
		} else {
			idx = int(t.Sub(win.From) / win.IntervalSize)
		}
		if idx < 0 || idx >= len(counts) {
			continue
		}
		counts[idx]++
	}
	return counts
}

// PeakInterval returns the index of the bucket with the strictly
// greatest count. Ties break toward the earliest index. When every
// bucket is zero there is no peak and the result is nil; index 0 is a
// valid peak and must not stand in for "no activity".
func PeakInterval(counts []int) *int {
	best := -1
	bestCount := 0
	for i, c := range counts {
		if c > bestCount {
			best = i
			bestCount = c
		}
	}
	if best < 0 {
		return nil
	}
	return &best
}

// IntervalSummary describes the shape of the activity distribution
// across buckets.
type IntervalSummary struct {
	Mean   float64
	Median float64
	Max    float64
}

// SummarizeIntervals computes mean, median and max commits per
// interval. An empty histogram summarizes to all zeros.
func SummarizeIntervals(counts []int) IntervalSummary {
	if len(counts) == 0 {
		return IntervalSummary{}
	}
	data := stats.LoadRawData(counts)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	max, _ := stats.Max(data)
	return IntervalSummary{Mean: mean, Median: median, Max: max}
}

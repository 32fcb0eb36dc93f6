// Package domain contains the core data structures and temporal logic
// for activity aggregation.
package domain

import "time"

// RepoSummary describes one repository the user contributed to within
// the reporting window. Identity is (Owner, Name).
type RepoSummary struct {
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Private     bool   `json:"is_private"`
	Stars       int    `json:"stargazers,omitempty"`
	Language    string `json:"language,omitempty"`
	Commits     int    `json:"commits"`
}

// FullName returns the owner/name form used by the GitHub search API.
func (r RepoSummary) FullName() string {
	return r.Owner + "/" + r.Name
}

// Commit is a single commit attributed to the user. It only lives for
// the duration of one aggregation run.
type Commit struct {
	Owner     string
	Repo      string
	SHA       string
	Timestamp time.Time
}

// Metrics is the complete result of one aggregation run. It is always a
// total value: soft failures upstream surface as lower counts, never as
// a partial or error variant.
//
// MostActiveInterval is the peak bucket index reduced modulo 24. For
// 1-hour buckets this is an exact hour of day in the target timezone;
// for wider buckets it is only an approximation of one.
type Metrics struct {
	Commits            int           `json:"commits_count"`
	LinesChanged       int           `json:"lines_changed"`
	PullRequests       int           `json:"prs_count"`
	Issues             int           `json:"issues_count"`
	Reviews            int           `json:"reviews_count"`
	Repos              []RepoSummary `json:"repos"`
	MostActiveInterval *int          `json:"most_active_hour"`
	IntervalCounts     []int         `json:"hourly_counts"`
	IntervalHours      int           `json:"interval_size"`
}

// EmptyMetrics returns the zero-value result for a window: all counts
// zero, no repositories, and no most-active signal. A user that does
// not exist upstream is reported this way rather than as an error.
func EmptyMetrics(win Window) *Metrics {
	return &Metrics{
		Repos:          []RepoSummary{},
		IntervalCounts: make([]int, win.Intervals),
		IntervalHours:  int(win.IntervalSize / time.Hour),
	}
}

// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naoyak/gh-pulse/internal/domain"
	"github.com/naoyak/gh-pulse/internal/gateway"
)

// Hard caps on fetched items. The engine is allowed to undercount
// under these limits; a degraded-but-present metric beats an aborted
// run.
const (
	maxRepos          = 10
	maxCommitsPerRepo = 100
	maxCommits        = 200
)

// Worker pool widths for the two fan-out stages.
const (
	repoWorkers = 3
	statWorkers = 5
)

// Aggregator is the use case that turns a user, a window and a
// timezone into a single Metrics value. It orchestrates the aggregate
// contributions query, the bounded per-repository commit collection,
// the per-commit line-change collection and the interval bucketing.
type Aggregator struct {
	fetcher   gateway.Fetcher
	logger    *log.Logger
	dateField string
}

// NewAggregator creates a new Aggregator instance. dateField selects
// which commit date anchors search and bucketing; anything other than
// gateway.CommitterDate means author date.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger, dateField string) *Aggregator {
	if dateField != gateway.CommitterDate {
		dateField = gateway.AuthorDate
	}
	return &Aggregator{
		fetcher:   fetcher,
		logger:    logger,
		dateField: dateField,
	}
}

// Aggregate performs the main business logic. Only a failed
// contributions query is fatal; an unknown user short-circuits to the
// zero-value result, and every per-repository or per-commit failure is
// logged and absorbed as a lower total.
func (a *Aggregator) Aggregate(ctx context.Context, user string, win domain.Window, hour domain.HourFunc) (*domain.Metrics, error) {
	a.logger.Printf("Usecase: aggregating activity for %s between %s and %s...",
		user, win.From.Format(time.RFC3339), win.To.Format(time.RFC3339))

	summary, err := a.fetcher.FetchContributions(ctx, user, win.From, win.To, maxRepos)
	if errors.Is(err, gateway.ErrUserNotFound) {
		a.logger.Printf("Usecase: user %s not found upstream, reporting empty metrics.", user)
		return domain.EmptyMetrics(win), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contributions: %w", err)
	}

	commits := a.collectCommits(ctx, user, win, summary.Repos)
	lines := a.sumLineChanges(ctx, commits)

	timestamps := make([]time.Time, 0, len(commits))
	for _, c := range commits {
		timestamps = append(timestamps, c.Timestamp)
	}
	counts := domain.Histogram(win, hour, timestamps)

	var mostActive *int
	if peak := domain.PeakInterval(counts); peak != nil {
		h := *peak % 24
		mostActive = &h
	}

	repos := append([]domain.RepoSummary(nil), summary.Repos...)
	sort.Slice(repos, func(i, j int) bool {
		return repos[i].FullName() < repos[j].FullName()
	})
	if repos == nil {
		repos = []domain.RepoSummary{}
	}

	a.logger.Printf("Usecase: aggregation complete (%d commits examined, %d lines changed).",
		len(commits), lines)
	return &domain.Metrics{
		Commits:            summary.Commits,
		LinesChanged:       lines,
		PullRequests:       summary.PullRequests,
		Issues:             summary.Issues,
		Reviews:            summary.Reviews,
		Repos:              repos,
		MostActiveInterval: mostActive,
		IntervalCounts:     counts,
		IntervalHours:      int(win.IntervalSize / time.Hour),
	}, nil
}

// collectCommits fans out over the contributing repositories with a
// bounded worker pool, draining a shared commit budget. A repository
// whose fetch fails on both the search and the listing path
// contributes zero commits; once the global budget is spent, remaining
// repositories are not queried at all.
func (a *Aggregator) collectCommits(ctx context.Context, user string, win domain.Window, repos []domain.RepoSummary) []domain.Commit {
	var (
		mu        sync.Mutex
		collected []domain.Commit
		budget    = maxCommits
	)

	g := new(errgroup.Group)
	g.SetLimit(repoWorkers)
	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			mu.Lock()
			remaining := budget
			mu.Unlock()
			if remaining <= 0 {
				return nil
			}
			limit := maxCommitsPerRepo
			if remaining < limit {
				limit = remaining
			}

			commits, err := a.fetchRepoCommits(ctx, user, win, repo, limit)
			if err != nil {
				a.logger.Printf("skipping %s: %v", repo.FullName(), err)
				return nil
			}

			mu.Lock()
			if len(commits) > budget {
				commits = commits[:budget]
			}
			budget -= len(commits)
			collected = append(collected, commits...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return collected
}

// fetchRepoCommits tries the commit sources for one repository in
// order: search first, then the listing fallback. Timestamps that
// upstream erroneously reports outside the window are dropped here.
func (a *Aggregator) fetchRepoCommits(ctx context.Context, user string, win domain.Window, repo domain.RepoSummary, limit int) ([]domain.Commit, error) {
	sources := []func(context.Context) ([]domain.Commit, error){
		func(ctx context.Context) ([]domain.Commit, error) {
			return a.fetcher.SearchCommits(ctx, repo.Owner, repo.Name, user, win.From, win.To, a.dateField, limit)
		},
		func(ctx context.Context) ([]domain.Commit, error) {
			return a.fetcher.ListCommits(ctx, repo.Owner, repo.Name, user, win.From, win.To, limit)
		},
	}

	var lastErr error
	for i, source := range sources {
		commits, err := source(ctx)
		if err != nil {
			lastErr = err
			if i < len(sources)-1 {
				a.logger.Printf("commit search degraded for %s, falling back to listing: %v", repo.FullName(), err)
			}
			continue
		}
		inWindow := commits[:0]
		for _, c := range commits {
			if c.Timestamp.Before(win.From) || c.Timestamp.After(win.To) {
				continue
			}
			inWindow = append(inWindow, c)
		}
		return inWindow, nil
	}
	return nil, lastErr
}

// sumLineChanges fans out over the collected commits and sums
// additions plus deletions. A commit whose stats fetch fails is
// skipped, so the sum is a lower bound.
func (a *Aggregator) sumLineChanges(ctx context.Context, commits []domain.Commit) int {
	var total atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(statWorkers)
	for _, c := range commits {
		c := c
		g.Go(func() error {
			additions, deletions, err := a.fetcher.CommitStats(ctx, c.Owner, c.Repo, c.SHA)
			if err != nil {
				a.logger.Printf("skipping stats for commit %s: %v", c.SHA, err)
				return nil
			}
			total.Add(int64(additions + deletions))
			return nil
		})
	}
	g.Wait()
	return int(total.Load())
}

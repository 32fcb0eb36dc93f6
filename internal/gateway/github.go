// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naoyak/gh-pulse/internal/domain"
)

// ErrUserNotFound reports that the target user does not exist
// upstream. Callers treat it as a valid empty result, not a failure.
var ErrUserNotFound = errors.New("github user not found")

// Date field qualifiers accepted by the commit search API.
const (
	AuthorDate    = "author-date"
	CommitterDate = "committer-date"
)

// ContributionSummary is the decoded result of the aggregate
// contributions query: window totals plus the contributing
// repositories.
type ContributionSummary struct {
	Commits      int
	Issues       int
	PullRequests int
	Reviews      int
	Repos        []domain.RepoSummary
}

// Fetcher defines the behavior of a gateway for fetching information
// from GitHub. SearchCommits is the primary commit source; ListCommits
// is the degraded-mode fallback when search is unavailable.
type Fetcher interface {
	FetchContributions(ctx context.Context, user string, from, to time.Time, maxRepos int) (*ContributionSummary, error)
	SearchCommits(ctx context.Context, owner, repo, user string, from, to time.Time, dateField string, limit int) ([]domain.Commit, error)
	ListCommits(ctx context.Context, owner, repo, user string, from, to time.Time, limit int) ([]domain.Commit, error)
	CommitStats(ctx context.Context, owner, repo, sha string) (additions, deletions int, err error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// contributionsQuery fetches window totals and per-repository commit
// contributions in a single request.
type contributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			TotalCommitContributions            int
			TotalIssueContributions             int
			TotalPullRequestContributions       int
			TotalPullRequestReviewContributions int
			CommitContributionsByRepository     []struct {
				Contributions struct {
					TotalCount int
				}
				Repository struct {
					Name  string
					Owner struct {
						Login string
					}
					Description     string
					URL             githubv4.URI
					IsPrivate       bool
					StargazerCount  int
					PrimaryLanguage struct {
						Name string
					}
				}
			} `graphql:"commitContributionsByRepository(maxRepositories: $maxRepos)"`
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	if token == "" {
		return nil, errors.New("github token is required")
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchContributions runs the aggregate GraphQL query. A response that
// carries both data and errors is logged and used as-is; only a fully
// absent user record maps to ErrUserNotFound.
func (g *GitHubGateway) FetchContributions(ctx context.Context, user string, from, to time.Time, maxRepos int) (*ContributionSummary, error) {
	g.logger.Println("Fetching contribution totals via GraphQL...")
	var q contributionsQuery
	variables := map[string]interface{}{
		"login":    githubv4.String(user),
		"from":     githubv4.DateTime{Time: from},
		"to":       githubv4.DateTime{Time: to},
		"maxRepos": githubv4.Int(maxRepos),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		if strings.Contains(err.Error(), "Could not resolve to a User") {
			return nil, ErrUserNotFound
		}
		cc := q.User.ContributionsCollection
		if cc.TotalCommitContributions == 0 && len(cc.CommitContributionsByRepository) == 0 {
			return nil, fmt.Errorf("failed to execute contributions query: %w", err)
		}
		g.logger.Printf("contributions query returned partial errors, continuing: %v", err)
	}

	cc := q.User.ContributionsCollection
	summary := &ContributionSummary{
		Commits:      cc.TotalCommitContributions,
		Issues:       cc.TotalIssueContributions,
		PullRequests: cc.TotalPullRequestContributions,
		Reviews:      cc.TotalPullRequestReviewContributions,
		Repos:        make([]domain.RepoSummary, 0, len(cc.CommitContributionsByRepository)),
	}
	for _, byRepo := range cc.CommitContributionsByRepository {
		summary.Repos = append(summary.Repos, domain.RepoSummary{
			Owner:       byRepo.Repository.Owner.Login,
			Name:        byRepo.Repository.Name,
			Description: byRepo.Repository.Description,
			URL:         byRepo.Repository.URL.String(),
			Private:     byRepo.Repository.IsPrivate,
			Stars:       byRepo.Repository.StargazerCount,
			Language:    byRepo.Repository.PrimaryLanguage.Name,
			Commits:     byRepo.Contributions.TotalCount,
		})
	}
	g.logger.Printf("Completed contributions query: %d contributing repositories.", len(summary.Repos))
	return summary, nil
}

// SearchCommits fetches the user's commits in one repository through
// the commit search API, scoped by the given date field
// ("author-date" or "committer-date").
func (g *GitHubGateway) SearchCommits(ctx context.Context, owner, repo, user string, from, to time.Time, dateField string, limit int) ([]domain.Commit, error) {
	query := fmt.Sprintf("repo:%s/%s author:%s %s:%s..%s",
		owner, repo, user, dateField, searchTime(from), searchTime(to))
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var commits []domain.Commit
	for {
		result, resp, err := g.restClient.Search.Commits(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search commits in %s/%s: %w", owner, repo, err)
		}
		for _, item := range result.Commits {
			ts := item.GetCommit().GetAuthor().GetDate().Time
			if dateField == CommitterDate {
				ts = item.GetCommit().GetCommitter().GetDate().Time
			}
			commits = append(commits, domain.Commit{
				Owner:     owner,
				Repo:      repo,
				SHA:       item.GetSHA(),
				Timestamp: ts,
			})
			if len(commits) >= limit {
				return commits, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Printf("  Fetching next page of commits for %s/%s...", owner, repo)
	}
	return commits, nil
}

// ListCommits is the fallback commit source: the repository commit
// listing filtered by author and date range. An empty repository (409)
// yields zero commits rather than an error.
func (g *GitHubGateway) ListCommits(ctx context.Context, owner, repo, user string, from, to time.Time, limit int) ([]domain.Commit, error) {
	opts := &github.CommitsListOptions{
		Author:      user,
		Since:       from,
		Until:       to,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var commits []domain.Commit
	for {
		listed, resp, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusConflict {
				return commits, nil
			}
			return nil, fmt.Errorf("failed to list commits for %s/%s: %w", owner, repo, err)
		}
		for _, item := range listed {
			commits = append(commits, domain.Commit{
				Owner:     owner,
				Repo:      repo,
				SHA:       item.GetSHA(),
				Timestamp: item.GetCommit().GetAuthor().GetDate().Time,
			})
			if len(commits) >= limit {
				return commits, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return commits, nil
}

// CommitStats fetches the addition and deletion counts of one commit.
func (g *GitHubGateway) CommitStats(ctx context.Context, owner, repo, sha string) (int, int, error) {
	commit, _, err := g.restClient.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get commit %s in %s/%s: %w", sha, owner, repo, err)
	}
	stats := commit.GetStats()
	return stats.GetAdditions(), stats.GetDeletions(), nil
}

func searchTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

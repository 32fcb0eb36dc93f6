// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/naoyak/gh-pulse/internal/domain"
	"github.com/naoyak/gh-pulse/internal/gateway"
	"github.com/naoyak/gh-pulse/internal/usecase"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregates a user's recent GitHub activity and outputs it",
	Long: `Aggregates activity (commits, lines changed, issues, PRs, reviews) for a
specified GitHub user over a reporting window, buckets commits into time
intervals in the target timezone, and outputs the result as JSON or as a
table.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		user, _ := cmd.Flags().GetString("user")
		duration, _ := cmd.Flags().GetString("duration")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		timezone, _ := cmd.Flags().GetString("timezone")
		dateField, _ := cmd.Flags().GetString("date-field")
		asTable, _ := cmd.Flags().GetBool("table")

		// Load .env if present, then require the token. A missing
		// credential is the one fatal precondition.
		_ = godotenv.Load()
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		spec := domain.WindowSpec{Duration: duration, From: fromStr, To: toStr}
		win := domain.ResolveWindow(spec, time.Now())
		hour := domain.NewHourFunc(timezone, spec.From)

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(githubGateway, logger, dateField)

		metrics, err := aggregator.Aggregate(ctx, user, win, hour)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate activity: %v\n", err)
			os.Exit(1)
		}

		if asTable {
			renderTables(os.Stdout, metrics)
			return
		}

		jsonData, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

// renderTables prints the metrics as two human-readable tables: the
// overall totals and the contributing repositories.
func renderTables(w io.Writer, metrics *domain.Metrics) {
	dist := domain.SummarizeIntervals(metrics.IntervalCounts)

	mostActive := "n/a"
	if metrics.MostActiveInterval != nil {
		mostActive = fmt.Sprintf("%02d:00", *metrics.MostActiveInterval)
	}

	totals := tablewriter.NewWriter(w)
	totals.SetHeader([]string{"Metric", "Value"})
	totals.Append([]string{"Commits", strconv.Itoa(metrics.Commits)})
	totals.Append([]string{"Lines changed", strconv.Itoa(metrics.LinesChanged)})
	totals.Append([]string{"Pull requests", strconv.Itoa(metrics.PullRequests)})
	totals.Append([]string{"Issues", strconv.Itoa(metrics.Issues)})
	totals.Append([]string{"Reviews", strconv.Itoa(metrics.Reviews)})
	totals.Append([]string{"Most active interval", mostActive})
	totals.Append([]string{"Interval size (hours)", strconv.Itoa(metrics.IntervalHours)})
	totals.Append([]string{"Commits/interval (mean)", fmt.Sprintf("%.2f", dist.Mean)})
	totals.Append([]string{"Commits/interval (median)", fmt.Sprintf("%.1f", dist.Median)})
	totals.Append([]string{"Commits/interval (max)", fmt.Sprintf("%.0f", dist.Max)})
	totals.Render()

	if len(metrics.Repos) == 0 {
		return
	}
	repos := tablewriter.NewWriter(w)
	repos.SetHeader([]string{"Repository", "Commits", "Stars", "Language"})
	for _, repo := range metrics.Repos {
		repos.Append([]string{
			repo.FullName(),
			strconv.Itoa(repo.Commits),
			strconv.Itoa(repo.Stars),
			repo.Language,
		})
	}
	repos.Render()
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringP("user", "u", "", "Target GitHub user name (required)")
	summaryCmd.MarkFlagRequired("user")
	summaryCmd.Flags().StringP("duration", "d", "24h", "Reporting window as <N>h or <N>d, anchored at now")
	summaryCmd.Flags().String("from", "", "Explicit window start (RFC3339); overrides --duration with --to")
	summaryCmd.Flags().String("to", "", "Explicit window end (RFC3339); overrides --duration with --from")
	summaryCmd.Flags().StringP("timezone", "z", "UTC", "IANA timezone for hour-of-day bucketing")
	summaryCmd.Flags().String("date-field", "author-date", "Commit date anchoring bucketing: author-date or committer-date")
	summaryCmd.Flags().Bool("table", false, "Render tables instead of JSON")
}

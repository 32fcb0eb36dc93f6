// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gh-pulse",
	Short: "A CLI tool to summarize a GitHub user's recent activity.",
	Long: `gh-pulse aggregates a GitHub user's recent activity (commits, lines
changed, issues, pull requests, reviews) over a reporting window and
derives a per-interval activity histogram with a most-active-hour
signal, suitable for visualization.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

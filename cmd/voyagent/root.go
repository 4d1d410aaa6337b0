package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "voyagent",
	Short: "Multi-provider trip planner",
	Long: `Voyagent plans trips from a natural-language request.

A supervisor fans out to flight, activity, weather, and budget providers,
allocates the budget across spending categories, ranks the options against
your preferences, and schedules a day-by-day itinerary under weather,
geography, and budget constraints.

Run "voyagent plan" with a request, or "voyagent eval" to exercise the
built-in scenario suite.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Sazadakthar786/Software-failure-detection/internal/console"
	"github.com/Sazadakthar786/Software-failure-detection/internal/storage"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show recovery statistics",
	Long:  `Show the number of recovery actions, the success rate and the mean time to recovery.`,
	Run: func(cmd *cobra.Command, args []string) {
		summary, err := application.Store.GetSummary(cmd.Context())
		if err != nil {
			fail("failed to get summary", err)
		}

		if jsonOutput {
			printJSON(summary)
			return
		}
		console.RenderSummary(os.Stdout, summary)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show recent metric samples",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		samples, err := application.Store.RecentMetrics(cmd.Context(), limit)
		if err != nil {
			fail("failed to get metrics", err)
		}

		if jsonOutput {
			printJSON(samples)
			return
		}
		console.RenderMetrics(os.Stdout, samples)
	},
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Show recent recovery actions",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		records, err := application.Store.RecentActions(cmd.Context(), limit)
		if err != nil {
			fail("failed to get actions", err)
		}

		if jsonOutput {
			printJSON(records)
			return
		}
		console.RenderActions(os.Stdout, records)
	},
}

func init() {
	metricsCmd.Flags().IntP("limit", "n", storage.RecentLimit, "Number of samples to show")
	actionsCmd.Flags().IntP("limit", "n", storage.RecentLimit, "Number of actions to show")
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(actionsCmd)
}

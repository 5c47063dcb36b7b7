package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sazadakthar786/Software-failure-detection/internal/storage"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old metric samples",
	Long: `Delete metric samples according to the retention policy.

Executes the cleanup strategies in sequence:
  1. Time-based: Delete samples older than the retention period
     (failed samples are kept for the longer failed retention period)
  2. Global: Enforce the global sample count limit

Recovery action records are never deleted.

Examples:
  sfd cleanup            # Run cleanup with configured retention
  sfd cleanup --vacuum   # Run cleanup and reclaim disk space`,
	Run: func(cmd *cobra.Command, args []string) {
		retention := cfg.Retention
		if cmd.Flags().Changed("vacuum") {
			retention.CleanupVacuum, _ = cmd.Flags().GetBool("vacuum")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
		defer cancel()

		fmt.Printf("Metric Retention Configuration:\n")
		fmt.Printf("  Samples: %d days\n", retention.RetentionDays)
		fmt.Printf("  Failed samples: %d days\n", retention.RetentionFailedDays)
		fmt.Printf("  Global limit: %d samples\n", retention.GlobalLimitSamples)
		fmt.Printf("  Batch size: %d samples/statement\n", retention.CleanupBatchSize)
		fmt.Println()

		before, err := application.Store.GetMetricCounts(ctx)
		if err != nil {
			fail("failed to get metric counts", err)
		}
		fmt.Printf("Current state:\n")
		fmt.Printf("  Total samples: %d\n", before.TotalSamples)
		for status, n := range before.SamplesByStatus {
			fmt.Printf("    %s: %d\n", status, n)
		}
		fmt.Printf("  Action records: %d\n", before.TotalActions)
		if before.OldestSample != nil {
			fmt.Printf("  Oldest sample: %s\n", before.OldestSample.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Println()

		cleaner, err := storage.NewCleaner(application.Store, retention)
		if err != nil {
			fail("invalid retention configuration", err)
		}
		result, err := cleaner.RunOnce(ctx)
		if err != nil {
			fail("cleanup failed", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Deleted %d sample(s) in %v\n", green("✓"), result.Deleted(), result.Duration.Round(time.Millisecond))
		fmt.Printf("  By age: %d\n", result.AgeDeleted)
		fmt.Printf("  By global limit: %d\n", result.LimitDeleted)
		if result.Vacuumed {
			fmt.Printf("  Database vacuumed\n")
		}
	},
}

func init() {
	cleanupCmd.Flags().Bool("vacuum", false, "Run VACUUM after cleanup to reclaim disk space")
	rootCmd.AddCommand(cleanupCmd)
}

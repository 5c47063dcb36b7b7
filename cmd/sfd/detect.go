package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Sazadakthar786/Software-failure-detection/internal/console"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Classify a reading and record it",
	Long: `Classify cpu and memory usage as Healthy or Failed and record the sample.

When --cpu and --memory are both given they are classified directly;
otherwise a live reading is taken from the host.

Examples:
  sfd detect                       # Classify a live reading
  sfd detect --cpu 95 --memory 40  # Classify explicit values`,
	Run: func(cmd *cobra.Command, args []string) {
		var cpu, memory *float64
		if cmd.Flags().Changed("cpu") && cmd.Flags().Changed("memory") {
			c, _ := cmd.Flags().GetFloat64("cpu")
			m, _ := cmd.Flags().GetFloat64("memory")
			cpu, memory = &c, &m
		}

		detection, err := application.Detect(cmd.Context(), cpu, memory)
		if err != nil {
			fail("detection failed", err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{
				"detected": detection.Detected,
				"status":   detection.Sample.Status,
				"stale":    detection.Stale,
			})
			return
		}
		console.RenderDetection(os.Stdout, detection)
	},
}

var simulateFailureCmd = &cobra.Command{
	Use:   "simulate-failure",
	Short: "Record a synthetic failed sample",
	Long: `Record a Failed sample with cpu, memory and disk usage drawn from [90, 100].

Useful for exercising recover without stressing the host.`,
	Run: func(cmd *cobra.Command, args []string) {
		sample, err := application.SimulateFailure(cmd.Context())
		if err != nil {
			fail("failed to simulate failure", err)
		}

		if jsonOutput {
			printJSON(sample)
			return
		}
		console.RenderSample(os.Stdout, sample)
	},
}

func init() {
	detectCmd.Flags().Float64("cpu", 0, "CPU usage percent to classify")
	detectCmd.Flags().Float64("memory", 0, "Memory usage percent to classify")
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(simulateFailureCmd)
}

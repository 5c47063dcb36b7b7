package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Sazadakthar786/Software-failure-detection/internal/console"
	"github.com/Sazadakthar786/Software-failure-detection/internal/training"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Run one recovery cycle",
	Long: `Run a recovery cycle from the most recent recorded sample.

The policy picks an action from the sample and the number of failed past
recoveries, the validator waits for the system to return to health, and the
outcome is recorded with its shaped reward.`,
	Run: func(cmd *cobra.Command, args []string) {
		result, err := application.Recover(cmd.Context())
		if err != nil && result == nil {
			fail("recovery failed", err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{
				"action":        result.Record.Action,
				"result":        result.Record.Result,
				"reward":        result.Record.Reward,
				"recovery_time": result.Record.RecoveryTime,
			})
		} else {
			console.RenderRecovery(os.Stdout, result)
		}

		// The cycle ran but its record could not be stored
		if err != nil {
			fail("failed to record action", err)
		}
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the recovery policy",
	Long: `Train the policy on the synthetic failure environment and save the model.

Each episode is a fixed number of single-step recovery decisions. The trained
model replaces the heuristic on the next run.`,
	Run: func(cmd *cobra.Command, args []string) {
		episodes, _ := cmd.Flags().GetInt("episodes")
		if !cmd.Flags().Changed("episodes") {
			episodes = cfg.Training.Episodes
		}

		report, err := application.Train(cmd.Context(), episodes)
		if err != nil && report == nil {
			fail("training failed", err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{
				"status":   report.Status,
				"episodes": report.Episodes,
			})
		} else {
			console.RenderTraining(os.Stdout, report)
		}

		if err != nil {
			fail("training incomplete", err)
		}
	},
}

func init() {
	trainCmd.Flags().IntP("episodes", "e", training.DefaultEpisodes, "Number of training episodes")
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(trainCmd)
}

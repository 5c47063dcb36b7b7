package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background sampler and retention cleanup",
	Long: `Sample host metrics on an interval, record every sample and enforce the
metric retention policy until interrupted.

With --auto-recover a recovery cycle is started whenever a sample is
classified as Failed. Failures seen while a cycle is running are coalesced.`,
	Run: func(cmd *cobra.Command, args []string) {
		autoRecover, _ := cmd.Flags().GetBool("auto-recover")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		failures := make(chan *types.MetricSample, 1)
		var onFailure func(*types.MetricSample)
		if autoRecover {
			onFailure = func(s *types.MetricSample) {
				select {
				case failures <- s:
				default:
				}
			}
		}

		sampler, err := application.NewSampler(onFailure)
		if err != nil {
			fail("failed to create sampler", err)
		}
		cleaner, err := application.NewCleaner()
		if err != nil {
			fail("failed to create cleaner", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s sfd serving (policy: %s)\n", green("✓"), application.Engine.PolicyName())
		fmt.Printf("  Sampling every %v\n", cfg.Watchdog.SampleInterval)
		if autoRecover {
			fmt.Printf("  Auto-recovery: %s\n", green("enabled"))
		}
		fmt.Printf("  Press Ctrl+C to stop\n\n")

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return sampler.Run(gctx) })
		g.Go(func() error { return cleaner.Run(gctx) })
		if autoRecover {
			g.Go(func() error { return recoverLoop(gctx, failures) })
		}

		if err := g.Wait(); err != nil {
			fail("serve stopped", err)
		}

		stats := sampler.Stats()
		fmt.Printf("\n%s Stopped after %d samples (%d failed, %d errors)\n",
			green("✓"), stats.Samples, stats.Failures, stats.Errors)
	},
}

// recoverLoop runs one recovery cycle per failure signal until ctx is done
func recoverLoop(ctx context.Context, failures <-chan *types.MetricSample) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sample := <-failures:
			result, err := application.Recover(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logrus.WithError(err).Warn("serve: recovery cycle failed")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"cycle_id": result.CycleID,
				"cpu":      sample.CPU,
				"memory":   sample.Memory,
				"action":   result.Record.Action,
				"result":   result.Record.Result,
				"reward":   result.Record.Reward,
			}).Info("serve: recovery cycle finished")
		}
	}
}

func init() {
	serveCmd.Flags().Bool("auto-recover", false, "Run a recovery cycle when a failure is detected")
	rootCmd.AddCommand(serveCmd)
}

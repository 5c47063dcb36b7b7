package console

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/Sazadakthar786/Software-failure-detection/internal/training"
	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
	"github.com/Sazadakthar786/Software-failure-detection/internal/watchdog"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func statusColor(s types.Status) func(a ...interface{}) string {
	switch s {
	case types.StatusHealthy:
		return green
	case types.StatusFailed:
		return red
	default:
		return yellow
	}
}

func resultColor(r types.Result) func(a ...interface{}) string {
	if r == types.ResultRecovered {
		return green
	}
	return red
}

func formatPercent(v *float64) string {
	if v == nil {
		return gray("n/a")
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func formatSeconds(v *float64) string {
	if v == nil {
		return gray("n/a")
	}
	return fmt.Sprintf("%.3fs", *v)
}

// RenderDetection prints the outcome of a detection request
func RenderDetection(w io.Writer, d *watchdog.Detection) {
	s := d.Sample
	paint := statusColor(s.Status)
	if d.Stale {
		fmt.Fprintf(w, "%s Metric source unavailable, showing last reading (not recorded)\n", yellow("⚠"))
	} else if d.Detected {
		fmt.Fprintf(w, "%s Failure detected\n", red("✗"))
	} else {
		fmt.Fprintf(w, "%s No failure detected\n", green("✓"))
	}
	fmt.Fprintf(w, "  Status: %s\n", paint(s.Status))
	fmt.Fprintf(w, "  CPU:    %.1f%%\n", s.CPU)
	fmt.Fprintf(w, "  Memory: %.1f%%\n", s.Memory)
	if s.FailureType != "" {
		fmt.Fprintf(w, "  Cause:  %s (%s), remedy: %s\n", s.FailureType, s.AffectedComponent, s.SuggestedRemedy)
	}
}

// RenderSample prints a single recorded sample
func RenderSample(w io.Writer, s *types.MetricSample) {
	fmt.Fprintf(w, "%s Recorded sample #%d\n", yellow("⚡"), s.ID)
	fmt.Fprintf(w, "  Status: %s\n", statusColor(s.Status)(s.Status))
	fmt.Fprintf(w, "  CPU:    %.1f%%\n", s.CPU)
	fmt.Fprintf(w, "  Memory: %.1f%%\n", s.Memory)
	fmt.Fprintf(w, "  Disk:   %s\n", formatPercent(s.Disk))
}

// RenderRecovery prints the outcome of a recovery cycle
func RenderRecovery(w io.Writer, r *watchdog.RecoveryResult) {
	rec := r.Record
	icon := green("✓")
	if rec.Result != types.ResultRecovered {
		icon = red("✗")
	}
	fmt.Fprintf(w, "%s Recovery cycle %s\n", icon, gray(r.CycleID))
	fmt.Fprintf(w, "  Action:        %s (%s policy)\n", cyan(rec.Action), r.Policy)
	fmt.Fprintf(w, "  Result:        %s\n", resultColor(rec.Result)(rec.Result))
	fmt.Fprintf(w, "  Reward:        %.3f\n", rec.Reward)
	fmt.Fprintf(w, "  Recovery time: %s\n", formatSeconds(rec.RecoveryTime))
	fmt.Fprintf(w, "  Samples:       %d\n", r.Outcome.Samples)
}

// RenderTraining prints a training report
func RenderTraining(w io.Writer, r *training.Report) {
	if r.Status == training.StatusSkipped {
		fmt.Fprintf(w, "%s Training skipped: %s\n", yellow("⚠"), r.Reason)
		return
	}
	fmt.Fprintf(w, "%s Trained %d episode(s) in %v\n", green("✓"), r.Episodes, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Run:               %s\n", gray(r.RunID))
	fmt.Fprintf(w, "  Steps:             %d\n", r.Steps)
	fmt.Fprintf(w, "  Expected recovery: %.1f%%\n", r.ExpectedRecovery*100)
}

// RenderSummary prints action log statistics
func RenderSummary(w io.Writer, s *types.Summary) {
	fmt.Fprintf(w, "\n%s\n\n", cyan("Recovery Summary"))
	fmt.Fprintf(w, "  Total actions: %d\n", s.TotalActions)
	fmt.Fprintf(w, "  %s  %d\n", green("✓ Recovered"), s.Successes)
	fmt.Fprintf(w, "  %s     %d\n", red("✗ Failed"), s.Failures)
	fmt.Fprintf(w, "  Success rate:  %s\n", formatPercent(s.SuccessRate))
	fmt.Fprintf(w, "  Avg MTTR:      %s\n\n", formatSeconds(s.AvgMTTR))
}

// RenderMetrics prints samples oldest first
func RenderMetrics(w io.Writer, samples []*types.MetricSample) {
	if len(samples) == 0 {
		fmt.Fprintf(w, "%s\n", gray("No metric samples recorded"))
		return
	}
	for _, s := range samples {
		line := fmt.Sprintf("#%-6d %s  cpu %5.1f%%  mem %5.1f%%  %s",
			s.ID, s.Timestamp.Local().Format("2006-01-02 15:04:05"), s.CPU, s.Memory,
			statusColor(s.Status)(s.Status))
		if s.FailureType != "" {
			line += gray(fmt.Sprintf("  %s/%s", s.FailureType, s.AffectedComponent))
		}
		fmt.Fprintln(w, line)
	}
}

// RenderActions prints action records oldest first
func RenderActions(w io.Writer, records []*types.ActionRecord) {
	if len(records) == 0 {
		fmt.Fprintf(w, "%s\n", gray("No actions recorded"))
		return
	}
	for _, r := range records {
		fmt.Fprintf(w, "#%-6d %s  %-10s %s  reward %7.3f  mttr %s\n",
			r.ID, r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Action,
			resultColor(r.Result)(fmt.Sprintf("%-9s", r.Result)), r.Reward, formatSeconds(r.RecoveryTime))
	}
}

// RenderHistory prints the recovery cycles run by this process, oldest first
func RenderHistory(w io.Writer, results []watchdog.RecoveryResult) {
	if len(results) == 0 {
		fmt.Fprintf(w, "%s\n", gray("No recovery cycles this session"))
		return
	}
	for _, r := range results {
		var took time.Duration
		if n := len(r.Transitions); n > 1 {
			took = r.Transitions[n-1].Timestamp.Sub(r.Transitions[0].Timestamp)
		}
		rec := r.Record
		fmt.Fprintf(w, "%s  %-10s %-9s %s  reward %7.3f  cycle %v\n",
			gray(r.CycleID), rec.Action, r.Policy,
			resultColor(rec.Result)(fmt.Sprintf("%-9s", rec.Result)), rec.Reward, took.Round(time.Millisecond))
	}
}

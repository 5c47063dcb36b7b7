package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Sazadakthar786/Software-failure-detection/internal/app"
	"github.com/Sazadakthar786/Software-failure-detection/internal/config"
)

var (
	configPath string
	dbPath     string
	modelPath  string
	logLevel   string
	jsonOutput bool

	cfg         *config.Config
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "sfd",
	Short: "Software failure detection and autonomic recovery",
	Long: `sfd watches cpu and memory usage, flags failures with an adaptive
threshold detector, picks a remediation action with a learned or heuristic
policy, validates that the system recovered and records the outcome.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		flags := cmd.Flags()
		if flags.Changed("db") {
			loaded.DBPath = dbPath
		}
		if flags.Changed("model") {
			loaded.ModelPath = modelPath
		}
		if flags.Changed("log-level") {
			loaded.LogLevel = logLevel
		}

		level, err := logrus.ParseLevel(loaded.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		logrus.SetLevel(level)
		cfg = loaded

		a, err := app.New(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		application = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: .sfd/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath, "Database path")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", config.DefaultModelPath, "Trained policy model path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// printJSON writes v to stdout as indented JSON
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail("failed to encode output", err)
	}
}

// closeApp releases the store; safe to call more than once
func closeApp() {
	if application == nil {
		return
	}
	if err := application.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
	application = nil
}

// fail prints err, closes the store and exits. os.Exit skips
// PersistentPostRun, so the store is closed here.
func fail(format string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", format, err)
	closeApp()
	os.Exit(1)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeApp()
		os.Exit(1)
	}
}

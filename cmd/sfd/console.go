package main

import (
	"github.com/spf13/cobra"

	"github.com/Sazadakthar786/Software-failure-detection/internal/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive console",
	Long: `Start an interactive shell that issues detect, recover, train and
reporting requests against the same store and policy.

Type 'help' in the console for available commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := console.New(&console.Config{App: application})
		if err != nil {
			fail("failed to create console", err)
		}
		if err := c.Run(cmd.Context()); err != nil {
			fail("console", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

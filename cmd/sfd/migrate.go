package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Inspect or revert the database schema",
	Long: `Inspect or revert the database schema.

The schema is brought up to date every time sfd opens the database, so
'migrate down' is only useful right before running an older sfd binary
against the same file.`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied schema version",
	Run: func(cmd *cobra.Command, args []string) {
		current, latest, err := application.Store.SchemaVersion(cmd.Context())
		if err != nil {
			fail("failed to get schema version", err)
		}

		if jsonOutput {
			printJSON(map[string]int{"current": current, "latest": latest})
			return
		}
		fmt.Printf("Schema version: %d (latest %d)\n", current, latest)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent schema migration",
	Long: `Revert the most recent schema migration.

Reverting the first migration drops every table and needs --force.`,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		ctx := cmd.Context()

		current, _, err := application.Store.SchemaVersion(ctx)
		if err != nil {
			fail("failed to get schema version", err)
		}
		if current <= 1 && !force {
			fail("refusing to revert", fmt.Errorf("version %d holds all recorded data, use --force", current))
		}

		if err := application.Store.RollbackSchema(ctx); err != nil {
			fail("migration rollback failed", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Reverted schema version %d\n", green("✓"), current)
	},
}

func init() {
	migrateDownCmd.Flags().Bool("force", false, "Allow reverting the first migration (drops all data)")
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "planning-api",
	Short: "Project Planning Cloud API - collaborative task management for ONGs",
	Long: `planning-api serves the collaborative task API used by the Bonita project
processes: tasks, ONG commitments, observations and KPIs.

Without a subcommand it starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default ./config.yaml when present)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

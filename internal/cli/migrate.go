package cli

import (
	"fmt"

	"github.com/projectplanning/planning-cloud-api/internal/services"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and insert the default task types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		result, err := services.NewTaskTypeService(a.store).EnsureDefaultTaskTypes(cmd.Context())
		if err != nil {
			return fmt.Errorf("inserting default task types: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task types created: %d, already present: %d\n", len(result.Created), len(result.Existing))
		for _, t := range result.Types {
			fmt.Fprintf(out, "  %d: %s\n", t.ID, t.Title)
		}
		return nil
	},
}

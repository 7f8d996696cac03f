package cli

import (
	"fmt"
	"os"

	"github.com/projectplanning/planning-cloud-api/internal/seed"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data",
	Long: `Load demo tasks and commitments. The embedded fixture is used unless
--file points at another YAML document of the same shape. Nothing is written
when the database already holds tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := loadFixture()
		if err != nil {
			return err
		}

		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		result, err := seed.NewSeeder(a.store, a.log).Run(cmd.Context(), fixture)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.Skipped {
			fmt.Fprintln(out, "Tasks already present, nothing seeded.")
			return nil
		}
		fmt.Fprintf(out, "Seeded %d tasks and %d commitments.\n", result.Tasks, result.Commitments)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture to load instead of the embedded one")
}

func loadFixture() (*seed.Fixture, error) {
	if seedFile == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", seedFile, err)
	}
	return seed.Parse(data)
}

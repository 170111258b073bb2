package commands

import (
	"fmt"

	"github.com/sitebrand/internal/seed"
	"github.com/spf13/cobra"
)

func seedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register sites, logos and page trees from a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := seed.NewSeeder(a.db, a.logger).ApplyFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sites (%d skipped), %d pages, %d users\n",
				report.Sites, report.SkippedSites, report.Pages, report.Users)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "sites.yaml", "seed file (yaml, toml or json)")
	return cmd
}

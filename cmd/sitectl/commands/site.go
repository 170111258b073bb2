package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/sitebrand/internal/service"
	"github.com/spf13/cobra"
)

func siteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Register and list sites",
	}
	cmd.AddCommand(siteAddCmd(a), siteListCmd(a), siteRootCmd(a))
	return cmd
}

func siteAddCmd(a *app) *cobra.Command {
	var (
		port int
		name string
		root uint
	)
	cmd := &cobra.Command{
		Use:   "add [hostname]",
		Short: "Register a site for a hostname and port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := a.sites.Create(cmd.Context(), service.SiteInput{
				Hostname:   args[0],
				Port:       port,
				SiteName:   name,
				RootPageID: optionalID(root),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered site %d at %s\n", site.ID, site.Address())
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 80, "port the site answers on")
	cmd.Flags().StringVar(&name, "name", "", "human readable site name (default hostname)")
	cmd.Flags().UintVar(&root, "root", 0, "id of an existing home page")
	return cmd
}

func siteListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sites, err := a.sites.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tADDRESS\tNAME\tROOT")
			for _, site := range sites {
				root := "-"
				if site.RootPageID != nil {
					root = fmt.Sprint(*site.RootPageID)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", site.ID, site.Address(), site.SiteName, root)
			}
			return w.Flush()
		},
	}
}

func siteRootCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "root [site-id] [page-id]",
		Short: "Point a site at its home page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, err := parseID(args[0], "site id")
			if err != nil {
				return err
			}
			pageID, err := parseID(args[1], "page id")
			if err != nil {
				return err
			}

			site, err := a.sites.SetRoot(cmd.Context(), siteID, pageID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Site %s now serves page %d\n", site.Address(), pageID)
			return nil
		},
	}
}

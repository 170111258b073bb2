package commands

import (
	"errors"
	"fmt"

	"github.com/sitebrand/internal/service"
	"github.com/spf13/cobra"
)

func brandingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branding",
		Short: "Show or change a site's branding",
	}
	cmd.AddCommand(brandingShowCmd(a), brandingSetCmd(a))
	return cmd
}

func brandingShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [site-id]",
		Short: "Print the logo configured for a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, err := parseID(args[0], "site id")
			if err != nil {
				return err
			}
			site, err := a.sites.Get(cmd.Context(), siteID)
			if err != nil {
				return err
			}
			settings, err := a.branding.ForSite(cmd.Context(), site)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !settings.HasLogo() {
				fmt.Fprintf(out, "%s: no logo\n", site.Address())
				return nil
			}
			fmt.Fprintf(out, "%s: logo %d %s (%dx%d)\n", site.Address(), settings.Logo.ID, settings.Logo.FileURL, settings.Logo.Width, settings.Logo.Height)
			return nil
		},
	}
}

func brandingSetCmd(a *app) *cobra.Command {
	var (
		logo      uint
		clearLogo bool
	)
	cmd := &cobra.Command{
		Use:   "set [site-id]",
		Short: "Set or clear a site's logo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (logo == 0) == !clearLogo {
				return errors.New("pass exactly one of --logo or --clear")
			}
			siteID, err := parseID(args[0], "site id")
			if err != nil {
				return err
			}

			settings, err := a.branding.Update(cmd.Context(), siteID, service.BrandingInput{LogoID: optionalID(logo)})
			if err != nil {
				return err
			}
			if settings.HasLogo() {
				fmt.Fprintf(cmd.OutOrStdout(), "Site %d uses logo %s\n", siteID, settings.LogoURL())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Site %d has no logo\n", siteID)
			}
			return nil
		},
	}
	cmd.Flags().UintVar(&logo, "logo", 0, "image id to use as the logo")
	cmd.Flags().BoolVar(&clearLogo, "clear", false, "remove the logo")
	return cmd
}

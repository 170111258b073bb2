package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/sitebrand/internal/config"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/logging"
	"github.com/sitebrand/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app holds what subcommands share once the database is open.
type app struct {
	db       *gorm.DB
	logger   *slog.Logger
	sites    *service.SiteService
	branding *service.BrandingService
	pages    *service.PageService
	images   *service.ImageService
}

// Execute runs the sitectl root command with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var (
		driver string
		dsn    string
	)
	a := &app{}

	root := &cobra.Command{
		Use:          "sitectl",
		Short:        "Manage sites, branding and pages",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg := config.Load()
			if strings.TrimSpace(driver) != "" {
				cfg.DatabaseDriver = driver
			}
			if strings.TrimSpace(dsn) != "" {
				cfg.DatabaseDSN = dsn
			}

			gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, true)
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}

			logger := logging.New(os.Stderr, cfg.LogLevel)
			sites := service.NewSiteService(gdb)
			sites.SetLogger(logger)

			*a = app{
				db:       gdb,
				logger:   logger,
				sites:    sites,
				branding: service.NewBrandingService(gdb),
				pages:    service.NewPageService(gdb),
				images:   service.NewImageService(gdb),
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db == nil {
				return nil
			}
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}

	root.PersistentFlags().StringVar(&driver, "driver", "", "database driver: sqlite or postgres (default $DATABASE_DRIVER)")
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "database DSN or SQLite path (default $DATABASE_DSN)")

	root.AddCommand(
		siteCmd(a),
		brandingCmd(a),
		pageCmd(a),
		imageCmd(a),
		userCmd(a),
		seedCmd(a),
	)
	return root
}

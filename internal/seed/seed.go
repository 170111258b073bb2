// Package seed registers sites, logos and starter page trees from a
// YAML, TOML or JSON file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/pagetype"
	"github.com/sitebrand/internal/service"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// File is the decoded seed document.
type File struct {
	Users []UserSeed `mapstructure:"users"`
	Sites []SiteSeed `mapstructure:"sites"`
}

// UserSeed creates an operator account.
type UserSeed struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SiteSeed describes one tenant.
type SiteSeed struct {
	Hostname string    `mapstructure:"hostname"`
	Port     int       `mapstructure:"port"`
	Name     string    `mapstructure:"name"`
	Logo     *LogoSeed `mapstructure:"logo"`
	Home     *HomeSeed `mapstructure:"home"`
}

// LogoSeed is a logo reference.
type LogoSeed struct {
	Title  string `mapstructure:"title"`
	URL    string `mapstructure:"url"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// HomeSeed is the root page of a site with its children.
type HomeSeed struct {
	Title    string        `mapstructure:"title"`
	Publish  bool          `mapstructure:"publish"`
	Sections []SectionSeed `mapstructure:"sections"`
	Blogs    []BlogSeed    `mapstructure:"blogs"`
}

// SectionSeed is a static page under the home page.
type SectionSeed struct {
	Title   string `mapstructure:"title"`
	Slug    string `mapstructure:"slug"`
	Body    string `mapstructure:"body"`
	Publish bool   `mapstructure:"publish"`
}

// BlogSeed is a blog index with its entries.
type BlogSeed struct {
	Title   string      `mapstructure:"title"`
	Slug    string      `mapstructure:"slug"`
	Intro   string      `mapstructure:"intro"`
	Publish bool        `mapstructure:"publish"`
	Entries []EntrySeed `mapstructure:"entries"`
}

// EntrySeed is one blog entry. Entries with a PublishedAt are published at that time.
type EntrySeed struct {
	Title       string     `mapstructure:"title"`
	Slug        string     `mapstructure:"slug"`
	Body        string     `mapstructure:"body"`
	PublishedAt *time.Time `mapstructure:"published_at"`
}

// Report counts what a run created.
type Report struct {
	Users        int
	Sites        int
	SkippedSites int
	Pages        int
}

// Load reads a seed file; the format follows the file extension.
func Load(path string) (File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}

	var file File
	if err := v.Unmarshal(&file, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return file, nil
}

// Seeder applies seed files through the services so every rule is enforced.
type Seeder struct {
	db       *gorm.DB
	sites    *service.SiteService
	pages    *service.PageService
	images   *service.ImageService
	branding *service.BrandingService
	logger   *slog.Logger
}

// NewSeeder wires a Seeder on gdb.
func NewSeeder(gdb *gorm.DB, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return bind(gdb, logger)
}

// bind builds a Seeder whose services all use gdb, which may be a transaction.
func bind(gdb *gorm.DB, logger *slog.Logger) *Seeder {
	sites := service.NewSiteService(gdb)
	sites.SetLogger(logger)
	return &Seeder{
		db:       gdb,
		sites:    sites,
		pages:    service.NewPageService(gdb),
		images:   service.NewImageService(gdb),
		branding: service.NewBrandingService(gdb),
		logger:   logger,
	}
}

// ApplyFile loads and applies path.
func (s *Seeder) ApplyFile(ctx context.Context, path string) (Report, error) {
	file, err := Load(path)
	if err != nil {
		return Report{}, err
	}
	return s.Apply(ctx, file)
}

// Apply creates users and sites that do not exist yet. Sites already
// registered for the same host and port are left untouched.
func (s *Seeder) Apply(ctx context.Context, file File) (Report, error) {
	var report Report

	for _, user := range file.Users {
		created, err := db.EnsureUser(s.db.WithContext(ctx), user.Username, user.Password)
		if err != nil {
			return report, fmt.Errorf("seed user %q: %w", user.Username, err)
		}
		if created {
			report.Users++
		}
	}

	for _, def := range file.Sites {
		var (
			created bool
			pages   int
		)
		// A site is registered together with its logo and page tree or not at all,
		// so a failed run can be retried with the same file.
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			created, pages, err = bind(tx, s.logger).applySite(ctx, def)
			return err
		})
		if err != nil {
			return report, fmt.Errorf("seed site %q: %w", def.Hostname, err)
		}
		if !created {
			report.SkippedSites++
			continue
		}
		report.Sites++
		report.Pages += pages
	}

	s.logger.Info("seed applied",
		slog.Int("users", report.Users),
		slog.Int("sites", report.Sites),
		slog.Int("skipped_sites", report.SkippedSites),
		slog.Int("pages", report.Pages),
	)
	return report, nil
}

func (s *Seeder) applySite(ctx context.Context, def SiteSeed) (bool, int, error) {
	site, err := s.sites.Create(ctx, service.SiteInput{
		Hostname: def.Hostname,
		Port:     def.Port,
		SiteName: def.Name,
	})
	if err != nil {
		if errors.Is(err, service.ErrSiteExists) {
			s.logger.Info("seed skipped existing site", slog.String("hostname", def.Hostname), slog.Int("port", def.Port))
			return false, 0, nil
		}
		return false, 0, err
	}

	if def.Logo != nil && strings.TrimSpace(def.Logo.URL) != "" {
		title := def.Logo.Title
		if strings.TrimSpace(title) == "" {
			title = site.SiteName + " logo"
		}
		logo, err := s.images.Create(ctx, service.ImageInput{
			Title:   title,
			FileURL: def.Logo.URL,
			Width:   def.Logo.Width,
			Height:  def.Logo.Height,
		})
		if err != nil {
			return false, 0, err
		}
		if _, err := s.branding.Update(ctx, site.ID, service.BrandingInput{LogoID: &logo.ID}); err != nil {
			return false, 0, err
		}
	}

	if def.Home == nil {
		return true, 0, nil
	}

	pages, err := s.applyHome(ctx, site, *def.Home)
	return true, pages, err
}

func (s *Seeder) applyHome(ctx context.Context, site *db.Site, def HomeSeed) (int, error) {
	title := def.Title
	if strings.TrimSpace(title) == "" {
		title = "Home"
	}
	home, err := s.pages.Create(ctx, service.PageInput{Kind: pagetype.KindHome, Title: title})
	if err != nil {
		return 0, err
	}
	count := 1
	if def.Publish {
		if _, err := s.pages.Publish(ctx, home.ID, nil); err != nil {
			return count, err
		}
	}
	if _, err := s.sites.SetRoot(ctx, site.ID, home.ID); err != nil {
		return count, err
	}

	for _, section := range def.Sections {
		page, err := s.pages.Create(ctx, service.PageInput{
			Kind:     pagetype.KindSection,
			ParentID: &home.ID,
			Title:    section.Title,
			Slug:     section.Slug,
			Body:     section.Body,
		})
		if err != nil {
			return count, err
		}
		count++
		if section.Publish {
			if _, err := s.pages.Publish(ctx, page.ID, nil); err != nil {
				return count, err
			}
		}
	}

	for _, blog := range def.Blogs {
		index, err := s.pages.Create(ctx, service.PageInput{
			Kind:     pagetype.KindBlogIndex,
			ParentID: &home.ID,
			Title:    blog.Title,
			Slug:     blog.Slug,
			Intro:    blog.Intro,
		})
		if err != nil {
			return count, err
		}
		count++
		if blog.Publish {
			if _, err := s.pages.Publish(ctx, index.ID, nil); err != nil {
				return count, err
			}
		}

		for _, entry := range blog.Entries {
			page, err := s.pages.Create(ctx, service.PageInput{
				Kind:     pagetype.KindBlog,
				ParentID: &index.ID,
				Title:    entry.Title,
				Slug:     entry.Slug,
				Body:     entry.Body,
			})
			if err != nil {
				return count, err
			}
			count++
			if entry.PublishedAt != nil {
				if _, err := s.pages.Publish(ctx, page.ID, entry.PublishedAt); err != nil {
					return count, err
				}
			}
		}
	}

	return count, nil
}

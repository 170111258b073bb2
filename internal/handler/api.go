package handler

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/logging"
	"github.com/sitebrand/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	sites    *service.SiteService
	branding *service.BrandingService
	pages    *service.PageService
	images   *service.ImageService
	logger   *slog.Logger
}

// Options tunes the handler set.
type Options struct {
	Logger            *slog.Logger
	TrustProxyHeaders bool
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sites := service.NewSiteService(gdb)
	sites.SetLogger(logger)
	sites.TrustProxyHeaders(opts.TrustProxyHeaders)

	return &API{
		db:       gdb,
		sites:    sites,
		branding: service.NewBrandingService(gdb),
		pages:    service.NewPageService(gdb),
		images:   service.NewImageService(gdb),
		logger:   logger,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

type siteViewModel struct {
	ID      uint
	Name    string
	Address string
	LogoURL string
	Logo    *db.Image
}

const tenantContextKey = "__tenant"

type tenant struct {
	site     *db.Site
	branding *db.BrandingSettings
}

func newSiteViewModel(site *db.Site, branding *db.BrandingSettings) siteViewModel {
	view := siteViewModel{}
	if site != nil {
		view.ID = site.ID
		view.Name = strings.TrimSpace(site.SiteName)
		view.Address = site.Address()
		if view.Name == "" {
			view.Name = site.Hostname
		}
	}
	if branding.HasLogo() {
		view.Logo = branding.Logo
		view.LogoURL = branding.LogoURL()
	}
	return view
}

// renderHTML renders template with the resolved tenant's site and branding
// injected, unless data already carries them.
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if cached, exists := c.Get(tenantContextKey); exists {
		if current, ok := cached.(tenant); ok {
			view := newSiteViewModel(current.site, current.branding)
			if _, exists := payload["site"]; !exists {
				payload["site"] = view
			}
			if _, exists := payload["branding"]; !exists {
				payload["branding"] = current.branding
			}
			if _, exists := payload["siteName"]; !exists {
				payload["siteName"] = view.Name
			}
			if _, exists := payload["siteLogoUrl"]; !exists {
				payload["siteLogoUrl"] = view.LogoURL
			}
		}
	}

	c.HTML(status, template, payload)
}

func (a *API) requestLogger(c *gin.Context) *slog.Logger {
	if logger, ok := logging.Lookup(c); ok {
		return logger
	}
	return a.logger
}

package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/pagetype"
	"github.com/sitebrand/internal/service"
)

type pageView struct {
	ID               uint
	Kind             pagetype.Kind
	KindLabel        string
	Title            string
	Slug             string
	Body             template.HTML
	FirstPublishedAt string
	URL              string
}

type entryView struct {
	ID          uint
	Title       string
	URL         string
	PublishedAt string
}

// resolveTenant maps the request host to a site and loads its branding.
// It writes the error response and returns false when no single site matches.
func (a *API) resolveTenant(c *gin.Context) (*db.Site, *db.BrandingSettings, bool) {
	logger := a.requestLogger(c)

	site, err := a.sites.ResolveRequest(c.Request)
	if err != nil {
		status := statusFor(err)
		message := "tenant not found"
		if errors.Is(err, service.ErrSiteAmbiguous) {
			message = "ambiguous site configuration"
		} else if status != http.StatusNotFound {
			message = "failed to resolve site"
		}
		if status >= http.StatusInternalServerError {
			c.Error(err)
		}
		logger.Warn("tenant resolution failed", slog.String("host", c.Request.Host), slog.String("error", err.Error()))
		a.renderHTML(c, status, "error.html", gin.H{"title": http.StatusText(status), "status": status, "error": message})
		return nil, nil, false
	}

	branding, err := a.branding.ForSite(c.Request.Context(), site)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error", "status": http.StatusInternalServerError, "error": "failed to load branding"})
		return nil, nil, false
	}

	c.Set(tenantContextKey, tenant{site: site, branding: branding})

	attrs := []any{slog.Uint64("site_id", uint64(site.ID)), slog.String("site", site.Address())}
	if branding.HasLogo() {
		attrs = append(attrs, slog.Uint64("logo_id", uint64(*branding.LogoID)), slog.String("logo_url", branding.LogoURL()))
	} else {
		attrs = append(attrs, slog.Bool("logo", false))
	}
	logger.Debug("tenant resolved", attrs...)

	return site, branding, true
}

// ServeHome renders the resolved site's home page.
func (a *API) ServeHome(c *gin.Context) {
	site, branding, ok := a.resolveTenant(c)
	if !ok {
		return
	}

	if site.RootPageID == nil {
		a.renderHTML(c, http.StatusNotFound, "error.html", gin.H{"title": "Not Found", "status": http.StatusNotFound, "error": "site has no home page"})
		return
	}

	page, err := a.pages.LiveInTree(c.Request.Context(), *site.RootPageID, *site.RootPageID)
	if err != nil {
		a.renderPageError(c, err)
		return
	}

	view, err := buildPageView(page)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error", "status": http.StatusInternalServerError, "error": "failed to render page"})
		return
	}

	children, err := a.liveChildren(c, page.ID)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error", "status": http.StatusInternalServerError, "error": "failed to load pages"})
		return
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":    view.Title,
		"page":     view,
		"children": children,
		"branding": branding,
	})
}

// ServePage renders a live page that belongs to the resolved site's tree.
func (a *API) ServePage(c *gin.Context) {
	site, branding, ok := a.resolveTenant(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil || site.RootPageID == nil {
		a.renderHTML(c, http.StatusNotFound, "error.html", gin.H{"title": "Not Found", "status": http.StatusNotFound, "error": "page not found"})
		return
	}

	page, err := a.pages.LiveInTree(c.Request.Context(), *site.RootPageID, id)
	if err != nil {
		a.renderPageError(c, err)
		return
	}

	view, err := buildPageView(page)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error", "status": http.StatusInternalServerError, "error": "failed to render page"})
		return
	}

	data := gin.H{
		"title":    view.Title,
		"page":     view,
		"branding": branding,
	}

	switch page.Kind {
	case pagetype.KindBlogIndex:
		entries, err := a.pages.BlogEntries(c.Request.Context(), page.ID)
		if err != nil {
			c.Error(err)
			a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error", "status": http.StatusInternalServerError, "error": "failed to load entries"})
			return
		}
		data["entries"] = buildEntryViews(entries)
	case pagetype.KindHome:
		children, err := a.liveChildren(c, page.ID)
		if err != nil {
			c.Error(err)
			a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error", "status": http.StatusInternalServerError, "error": "failed to load pages"})
			return
		}
		data["children"] = children
		a.renderHTML(c, http.StatusOK, "home.html", data)
		return
	}

	a.renderHTML(c, http.StatusOK, "page.html", data)
}

func (a *API) renderPageError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPageNotFound) {
		a.renderHTML(c, http.StatusNotFound, "error.html", gin.H{"title": "Not Found", "status": http.StatusNotFound, "error": "page not found"})
		return
	}
	c.Error(err)
	a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error", "status": http.StatusInternalServerError, "error": "failed to load page"})
}

func (a *API) liveChildren(c *gin.Context, parentID uint) ([]entryView, error) {
	children, err := a.pages.Children(c.Request.Context(), parentID)
	if err != nil {
		return nil, err
	}
	live := make([]db.Page, 0, len(children))
	for _, child := range children {
		if child.IsLive() {
			live = append(live, child)
		}
	}
	return buildEntryViews(live), nil
}

func buildPageView(page *db.Page) (pageView, error) {
	content := page.Content()
	base := content.Common()

	body, err := renderMarkdown(pagetype.RichText(content))
	if err != nil {
		return pageView{}, err
	}

	return pageView{
		ID:               base.ID,
		Kind:             content.Kind(),
		KindLabel:        content.Kind().Label(),
		Title:            base.Title,
		Slug:             base.Slug,
		Body:             body,
		FirstPublishedAt: formatDate(base.FirstPublishedAt),
		URL:              pageURL(page),
	}, nil
}

func buildEntryViews(pages []db.Page) []entryView {
	views := make([]entryView, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		views = append(views, entryView{
			ID:          page.ID,
			Title:       page.Title,
			URL:         pageURL(page),
			PublishedAt: formatDate(page.FirstPublishedAt),
		})
	}
	return views
}

func pageURL(page *db.Page) string {
	if page.ParentID == nil {
		return "/"
	}
	return "/pages/" + strconv.FormatUint(uint64(page.ID), 10)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

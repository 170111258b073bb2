package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/pagetype"
	"github.com/sitebrand/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubHTMLRender struct {
	last *stubHTMLInstance
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.last = &stubHTMLInstance{name: name, data: data}
	return r.last
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func (r *stubHTMLRender) payload(t *testing.T) gin.H {
	t.Helper()
	if r.last == nil {
		t.Fatal("expected a template to be rendered")
	}
	data, ok := r.last.data.(gin.H)
	if !ok {
		t.Fatalf("expected gin.H payload, got %T", r.last.data)
	}
	return data
}

func setupTestAPI(t *testing.T) (*API, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAPI(gdb, Options{Logger: quiet}), gdb
}

func newTestRouter(api *API, renderer *stubHTMLRender) *gin.Engine {
	router := gin.New()
	router.HTMLRender = renderer
	router.Use(sessions.Sessions("sitebrand_session", cookie.NewStore([]byte("test-secret"))))

	router.GET("/", api.ServeHome)
	router.GET("/pages/:id", api.ServePage)

	router.POST("/admin/login", api.Login)
	router.POST("/admin/logout", api.Logout)
	auth := router.Group("/admin/api")
	auth.Use(AuthRequired())
	auth.GET("/me", api.Whoami)
	auth.GET("/sites", api.ListSites)
	auth.POST("/sites", api.CreateSite)
	auth.PUT("/sites/:id/root", api.SetSiteRoot)
	auth.GET("/sites/:id/branding", api.GetSiteBranding)
	auth.PUT("/sites/:id/branding", api.UpdateSiteBranding)
	auth.GET("/page-types", api.ListPageTypes)
	auth.POST("/pages", api.CreatePage)
	auth.GET("/pages/:id", api.GetPage)
	auth.PUT("/pages/:id", api.UpdatePage)
	auth.DELETE("/pages/:id", api.DeletePage)
	auth.POST("/pages/:id/publish", api.PublishPage)
	auth.POST("/pages/:id/unpublish", api.UnpublishPage)
	auth.GET("/pages/:id/children", api.ListPageChildren)
	auth.GET("/pages/:id/entries", api.ListBlogEntries)
	auth.GET("/images", api.ListImages)
	auth.POST("/images", api.CreateImage)
	return router
}

// brandedSite registers host:port with a live home page and, when logoURL
// is not empty, a logo.
func brandedSite(t *testing.T, api *API, host string, port int, logoURL string) *db.Site {
	t.Helper()
	ctx := context.Background()

	site, err := api.sites.Create(ctx, service.SiteInput{Hostname: host, Port: port})
	if err != nil {
		t.Fatalf("failed to create site: %v", err)
	}

	home, err := api.pages.Create(ctx, service.PageInput{Kind: pagetype.KindHome, Title: "Home of " + host})
	if err != nil {
		t.Fatalf("failed to create home: %v", err)
	}
	if _, err := api.pages.Publish(ctx, home.ID, nil); err != nil {
		t.Fatalf("failed to publish home: %v", err)
	}
	site, err = api.sites.SetRoot(ctx, site.ID, home.ID)
	if err != nil {
		t.Fatalf("failed to set root: %v", err)
	}

	if logoURL != "" {
		logo, err := api.images.Create(ctx, service.ImageInput{Title: host + " logo", FileURL: logoURL, Width: 120, Height: 40})
		if err != nil {
			t.Fatalf("failed to create logo: %v", err)
		}
		if _, err := api.branding.Update(ctx, site.ID, service.BrandingInput{LogoID: &logo.ID}); err != nil {
			t.Fatalf("failed to set branding: %v", err)
		}
	}
	return site
}

func performJSON(router http.Handler, method, path string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func loginCookies(t *testing.T, router http.Handler, gdb *gorm.DB) []*http.Cookie {
	t.Helper()
	if _, err := db.EnsureUser(gdb, "operator", "s3cret"); err != nil {
		t.Fatalf("failed to create operator: %v", err)
	}
	rr := performJSON(router, http.MethodPost, "/admin/login", map[string]string{"username": "operator", "password": "s3cret"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	return cookies
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

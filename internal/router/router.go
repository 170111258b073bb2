package router

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/db"
	"github.com/sitebrand/internal/handler"
	"github.com/sitebrand/internal/logging"
	"github.com/sitebrand/web"
	"gorm.io/gorm"
)

const sessionName = "sitebrand_session"

// Options configures SetupRouter.
type Options struct {
	DB                 *gorm.DB
	SessionSecret      string
	Logger             *slog.Logger
	TrustProxyHeaders  bool
	CORSAllowedOrigins []string
}

// SetupRouter configures the Gin engine and routes.
func SetupRouter(opts Options) (*gin.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gdb := opts.DB
	if gdb == nil {
		gdb = db.DB
	}

	r := gin.New()
	r.Use(logging.Middleware(logger), gin.Recovery())

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", logging.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", logging.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	templates, err := template.New("").ParseFS(web.Templates, "template/*.html")
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(templates)

	api := handler.NewAPI(gdb, handler.Options{
		Logger:            logger,
		TrustProxyHeaders: opts.TrustProxyHeaders,
	})

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.GET("/", api.ServeHome)
	r.GET("/pages/:id", api.ServePage)

	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		auth := admin.Group("/api")
		auth.Use(handler.AuthRequired())
		{
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
		}
	}

	return r, nil
}

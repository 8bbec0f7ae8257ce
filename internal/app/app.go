// Package app contains the web front-end: the REST API, the sign-in flow,
// and the server-rendered dashboard pages.
package app

import (
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/lanyardhq/lanyard/internal/config"
	"github.com/lanyardhq/lanyard/internal/sec"
	"github.com/lanyardhq/lanyard/internal/storage"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Requests allowed per second per client IP.
const rateLimit = 20

// New creates the web front-end server.
func New(cfg *config.Config, logger *slog.Logger, store storage.Store) *echo.Echo {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)

	h := handler{cfg: cfg, logger: logger, store: store}

	srv.Validator = &requestValidator{validate: validator.New()}
	srv.Renderer = &renderer{
		templates: template.Must(template.ParseFS(templateFiles, "templates/*.html")),
	}
	srv.HTTPErrorHandler = h.normalizeError

	if cfg.DevMode {
		srv.Debug = true
		srv.Use(logRequests(logger))
	}

	srv.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowCredentials: true,
			AllowOriginFunc:  func(string) (bool, error) { return true, nil },
		}),
		middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rateLimit)),
		middleware.Decompress(),
		middleware.Gzip(),
		sec.Session(cfg.JWTSecret, h.secureCookies()),
	)

	h.register(srv)
	return srv
}

type handler struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Store
}

// secureCookies reports whether session cookies should carry the Secure
// attribute. Disabled in dev mode so plain-HTTP local sessions work.
func (h handler) secureCookies() bool {
	return !h.cfg.DevMode
}

func (h handler) register(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/dashboard")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	auth := e.Group("/auth")
	auth.GET("/signin", h.signInPage)
	auth.POST("/signin", h.signIn)
	auth.GET("/logout", h.logout)

	dash := e.Group("/dashboard", sec.RequireAuthenticated)
	dash.GET("", h.dashboardPage("home"))
	dash.GET("/delegates", h.dashboardPage("delegates"))
	dash.GET("/startups", h.dashboardPage("startups"))
	dash.GET("/recommendations", h.dashboardPage("recommendations"))
	dash.GET("/scan-logs", h.dashboardPage("scan-logs"))
	dash.GET("/analytics", h.dashboardPage("analytics"))
	dash.GET("/users", h.userManagementPage, sec.RequireAdmin)
	dash.POST("/users", h.createUser, sec.RequireAdmin)

	api := e.Group("/api", sec.RequireAuthenticated)

	delegates := api.Group("/delegates")
	delegates.GET("", h.listDelegates)
	delegates.POST("", h.createDelegate, sec.RequireAdmin)
	delegates.GET("/badge/:badge_id", h.getDelegateByBadge)
	delegates.GET("/:id", h.getDelegate)
	delegates.PUT("/:id", h.updateDelegate, sec.RequireAdmin)
	delegates.DELETE("/:id", h.deleteDelegate, sec.RequireAdmin)

	startups := api.Group("/startups")
	startups.GET("", h.listStartups)
	startups.POST("", h.createStartup, sec.RequireAdmin)
	startups.GET("/:id", h.getStartup)
	startups.PUT("/:id", h.updateStartup, sec.RequireAdmin)
	startups.DELETE("/:id", h.deleteStartup, sec.RequireAdmin)

	recs := api.Group("/recommendations")
	recs.GET("", h.listRecommendations, sec.RequireAdmin)
	recs.POST("", h.createRecommendation, sec.RequireAdmin)
	recs.GET("/delegate/:delegate_id", h.listRecommendationsByDelegate)
	recs.GET("/:id", h.getRecommendation)
	recs.PUT("/:id/visit", h.markRecommendationVisited, sec.RequireStaff)
	recs.DELETE("/:id", h.deleteRecommendation, sec.RequireAdmin)

	scans := api.Group("/scan-log")
	scans.GET("", h.listScans, sec.RequireAdmin)
	scans.POST("", h.createScan, sec.RequireStaff)
	scans.GET("/staff/:id", h.listScansByStaff, sec.RequireAdmin)
	scans.GET("/delegate/:id", h.listScansByDelegate, sec.RequireAdmin)

	analytics := api.Group("/analytics", sec.RequireAdmin)
	analytics.GET("/stats", h.dashboardStats)
	analytics.GET("/delegate/:id", h.delegateAnalytics)
	analytics.GET("/top-startups", h.topStartups)

	users := api.Group("/users", sec.RequireAdmin)
	users.GET("", h.listUsers)
	users.POST("", h.createUser)
	users.PUT("/:id/password", h.updateUserPassword)
	users.DELETE("/:id", h.deleteUser)
}

// requestValidator adapts go-playground/validator to echo's c.Validate.
type requestValidator struct {
	validate *validator.Validate
}

// Validate satisfies [echo.Validator].
func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// renderer serves the embedded dashboard templates.
type renderer struct {
	templates *template.Template
}

// Render satisfies [echo.Renderer].
func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return nil
		}
	}
}

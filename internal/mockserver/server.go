// Package mockserver implements an in-memory stand-in for the Nexway Connect
// API for local development and end-to-end tests. It issues and checks
// tokens, keeps orders and subscriptions in memory, and serves a small XML
// catalog feed.
package mockserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Config holds the credentials the mock server accepts.
type Config struct {
	ClientSecret string
	RealmName    string
	Secret       string
	// RateLimit throttles API and token routes to this many requests per
	// second. Zero disables throttling.
	RateLimit float64
	Burst     int
}

// Server is the mock Nexway API.
type Server struct {
	cfg   Config
	log   *slog.Logger
	state *state
	echo  *echo.Echo
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// New builds the Echo app with every route registered.
func New(cfg Config, log *slog.Logger) *Server {
	s := &Server{
		cfg:   cfg,
		log:   log,
		state: newState(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery(log))
	e.Use(RequestLog(log))
	e.Use(Metrics())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	var throttle []echo.MiddlewareFunc
	if cfg.RateLimit > 0 {
		throttle = append(throttle, Throttle(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))))
	}

	iam := e.Group("/iam", throttle...)
	iam.POST("/tokens", s.handleToken)
	iam.DELETE("/tokens/reset", s.handleTokenReset)
	e.GET("/getCatalog.xml", s.handleCatalogFeed, throttle...)

	connect := e.Group("/connect", append(throttle, s.requireAPIAuth(map[string]struct{}{
		http.MethodPut + " /connect/order/download": {},
	}))...)
	connect.POST("/stock", s.handleStock)
	connect.POST("/order/crossupsell", s.handleCrossUpSell)
	connect.POST("/order/new", s.handleCreateOrder)
	connect.PUT("/order/cancel", s.handleCancelOrder)
	connect.PUT("/order/download", s.handleUpdateDownloadTime)
	connect.GET("/order/:id", s.handleGetOrder)
	connect.GET("/order/:id/download", s.handleOrderDownload)
	connect.POST("/subscription", s.handleSubscriptionStatus)
	connect.PUT("/subscription", s.handleSubscriptionCancel)
	connect.PUT("/subscription/renew", s.handleSubscriptionRenew)
	connect.GET("/catalog/categories/:language", s.handleCategories)
	connect.GET("/catalog/oslist", s.handleOperatingSystems)

	s.echo = e
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Echo exposes the underlying Echo instance for starting and shutting down.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

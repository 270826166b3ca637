// Package api exposes the transactions HTTP API.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/north-cloud/transactions/internal/config"
	infragin "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/metrics"
)

// Default timeout values.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// NewServer creates the HTTP server using the infrastructure gin package.
// Metrics are registered with reg and served from it on /metrics.
func NewServer(
	handler *Handler,
	cfg *config.Config,
	log infralogger.Logger,
	reg *prometheus.Registry,
) *infragin.Server {
	corsConfig := infragin.CORSConfig{
		Enabled:          cfg.CORS.Enabled,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	httpMetrics := metrics.NewHTTPMetrics(reg, cfg.Service.Name)

	return infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithCORS(corsConfig).
		WithElasticsearchHealthCheck(handler.transactions.Ping).
		WithRoutes(func(router *gin.Engine) {
			router.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
			router.Use(httpMetrics.Middleware())
			SetupServiceRoutes(router, handler, cfg.Auth.JWTSecret)
		}).
		Build()
}

// SetupServiceRoutes registers the service routes. Health routes are added
// by the infrastructure gin package. The /api group requires a bearer token
// when jwtSecret is non-empty.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, jwtSecret string) {
	router.GET("/ready", handler.ReadinessCheck)

	apiGroup := infragin.ProtectedGroup(router, "/api", jwtSecret)
	transactions := apiGroup.Group("/transactions")
	transactions.GET("/search", handler.SearchTransactions)
	transactions.GET("/stats/daily", handler.DailyTotals)
}

package gin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/jwt"
	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/logger"
)

// ServerBuilder assembles a Server step by step.
type ServerBuilder struct {
	config       *Config
	logger       logger.Logger
	setupRoutes  []func(*gin.Engine)
	healthChecks map[string]HealthChecker
}

// NewServerBuilder starts a builder for serviceName listening on port.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		config:       NewConfig(serviceName, port),
		healthChecks: make(map[string]HealthChecker),
	}
}

func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.logger = log
	return b
}

func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

func (b *ServerBuilder) WithCORS(cfg CORSConfig) *ServerBuilder {
	b.config.CORS = cfg
	return b
}

// WithTimeouts sets the http.Server read, write and idle timeouts.
func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithHealthCheck registers a named dependency check reported by GET /health.
func (b *ServerBuilder) WithHealthCheck(name string, checker HealthChecker) *ServerBuilder {
	b.healthChecks[name] = checker
	return b
}

// WithElasticsearchHealthCheck registers ping under "elasticsearch". A failed
// ping marks the service unhealthy since no request can be served without it.
func (b *ServerBuilder) WithElasticsearchHealthCheck(ping PingFunc) *ServerBuilder {
	return b.WithHealthCheck("elasticsearch", PingChecker("Elasticsearch", HealthStatusUnhealthy, ping))
}

// WithRoutes adds a route setup function. Functions run in registration
// order after the health routes.
func (b *ServerBuilder) WithRoutes(setup func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = append(b.setupRoutes, setup)
	return b
}

// Build creates the Server.
func (b *ServerBuilder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.Must(logger.Config{Level: "info", Development: b.config.Debug})
	}

	return NewServer(b.config, b.logger, func(router *gin.Engine) {
		RegisterHealthRoutes(router, HealthOptions{
			ServiceName:    b.config.ServiceName,
			ServiceVersion: b.config.ServiceVersion,
			CheckTimeout:   b.config.HealthTimeout,
			Checks:         b.healthChecks,
		})
		for _, setup := range b.setupRoutes {
			setup(router)
		}
	})
}

// ProtectedGroup returns a route group under path that requires a valid
// bearer token when jwtSecret is non-empty, and is open otherwise.
func ProtectedGroup(router *gin.Engine, path, jwtSecret string) *gin.RouterGroup {
	group := router.Group(path)
	if jwtSecret != "" {
		group.Use(jwt.Middleware(jwtSecret))
	}
	return group
}

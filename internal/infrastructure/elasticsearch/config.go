package elasticsearch

import (
	"time"

	infrahttp "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/http"
	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/retry"
)

// Config describes how to reach the cluster.
type Config struct {
	URL string
	// Username and Password enable basic auth when both are set.
	Username string
	Password string
	// APIKey takes precedence over basic auth.
	APIKey string
	TLS    TLSConfig
	// PingTimeout bounds each startup ping.
	PingTimeout time.Duration
	// Connect controls startup retries. Individual requests are never retried.
	Connect retry.Config
	// Transport sizes the shared connection pool.
	Transport infrahttp.ClientConfig
}

// TLSConfig configures HTTPS connections to the cluster.
type TLSConfig struct {
	InsecureSkipVerify bool
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:9200"
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 5 * time.Second
	}
	if c.Connect.MaxAttempts == 0 {
		c.Connect.MaxAttempts = 5
	}
	if c.Connect.InitialDelay == 0 {
		c.Connect.InitialDelay = 2 * time.Second
	}
	if c.Connect.MaxDelay == 0 {
		c.Connect.MaxDelay = 10 * time.Second
	}
	if c.Connect.Multiplier == 0 {
		c.Connect.Multiplier = 2.0
	}
}

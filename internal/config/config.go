// Package config holds the transactions service configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/transactions/internal/domain"
	infraconfig "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/config"
)

// Legacy variable names, read only when neither the file nor the
// ELASTICSEARCH_* variables set the value.
const (
	LegacyHostEnv  = "ES_HOST"
	LegacyIndexEnv = "ES_INDEX"
)

// Config holds all configuration for the transactions service.
type Config struct {
	Service       ServiceConfig             `yaml:"service"`
	Elasticsearch ElasticsearchConfig       `yaml:"elasticsearch"`
	Logging       infraconfig.LoggingConfig `yaml:"logging"`
	CORS          CORSConfig                `yaml:"cors"`
	Auth          AuthConfig                `yaml:"auth"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	Port            int    `env:"TRANSACTIONS_PORT"              yaml:"port"`
	Debug           bool   `env:"TRANSACTIONS_DEBUG"             yaml:"debug"`
	DefaultPageSize int    `env:"TRANSACTIONS_DEFAULT_PAGE_SIZE" yaml:"default_page_size"`
	MaxPageSize     int    `env:"TRANSACTIONS_MAX_PAGE_SIZE"     yaml:"max_page_size"`
}

// ElasticsearchConfig holds the cluster connection and query settings.
type ElasticsearchConfig struct {
	URL      string `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	APIKey   string `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	Index    string `env:"ELASTICSEARCH_INDEX"    yaml:"index"`
	// RequestTimeout bounds each search call. Negative disables it.
	RequestTimeout  time.Duration `env:"ELASTICSEARCH_REQUEST_TIMEOUT" yaml:"request_timeout"`
	PingTimeout     time.Duration `yaml:"ping_timeout"`
	ConnectAttempts int           `env:"ELASTICSEARCH_CONNECT_ATTEMPTS" yaml:"connect_attempts"`
	// TypeBucketLimit caps the transaction types reported per day.
	TypeBucketLimit    int    `yaml:"type_bucket_limit"`
	InsecureSkipVerify bool   `env:"ELASTICSEARCH_INSECURE_SKIP_VERIFY" yaml:"insecure_skip_verify"`
	CAFile             string `env:"ELASTICSEARCH_CA_FILE"              yaml:"ca_file"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `env:"CORS_ORIGINS"     yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// AuthConfig enables bearer token auth on /api routes when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	// Service defaults
	if cfg.Service.Name == "" {
		cfg.Service.Name = "transactions"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "1.0.0"
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = 8000
	}
	if cfg.Service.DefaultPageSize == 0 {
		cfg.Service.DefaultPageSize = 10
	}
	if cfg.Service.MaxPageSize == 0 {
		cfg.Service.MaxPageSize = 100
	}

	// Elasticsearch defaults
	if cfg.Elasticsearch.URL == "" {
		cfg.Elasticsearch.URL = envOr(LegacyHostEnv, "http://localhost:9200")
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = envOr(LegacyIndexEnv, "transactions")
	}
	if cfg.Elasticsearch.RequestTimeout == 0 {
		cfg.Elasticsearch.RequestTimeout = 30 * time.Second
	}
	if cfg.Elasticsearch.PingTimeout == 0 {
		cfg.Elasticsearch.PingTimeout = 5 * time.Second
	}
	if cfg.Elasticsearch.ConnectAttempts == 0 {
		cfg.Elasticsearch.ConnectAttempts = 5
	}
	if cfg.Elasticsearch.TypeBucketLimit == 0 {
		cfg.Elasticsearch.TypeBucketLimit = 20
	}

	cfg.Logging.SetDefaults()

	// CORS defaults
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "HEAD", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Service.MaxPageSize < 1 {
		return &infraconfig.ValidationError{Field: "service.max_page_size", Message: "must be greater than 0"}
	}
	if c.Service.DefaultPageSize < 1 || c.Service.DefaultPageSize > c.Service.MaxPageSize {
		return &infraconfig.ValidationError{
			Field:   "service.default_page_size",
			Message: fmt.Sprintf("must be between 1 and %d", c.Service.MaxPageSize),
		}
	}
	if err := infraconfig.ValidateURL("elasticsearch.url", c.Elasticsearch.URL); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("elasticsearch.index", c.Elasticsearch.Index); err != nil {
		return err
	}
	if c.Elasticsearch.ConnectAttempts < 1 {
		return &infraconfig.ValidationError{Field: "elasticsearch.connect_attempts", Message: "must be greater than 0"}
	}
	if c.Elasticsearch.TypeBucketLimit < 1 {
		return &infraconfig.ValidationError{Field: "elasticsearch.type_bucket_limit", Message: "must be greater than 0"}
	}
	return c.Logging.Validate()
}

// PageLimits returns the bounds applied to the size parameter.
func (c *Config) PageLimits() domain.PageLimits {
	return domain.PageLimits{Default: c.Service.DefaultPageSize, Max: c.Service.MaxPageSize}
}

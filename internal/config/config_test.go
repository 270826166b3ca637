package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/transactions/internal/config"
	infraconfig "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "service:\n  debug: true\n"))
	require.NoError(t, err)

	assert.Equal(t, "transactions", cfg.Service.Name)
	assert.Equal(t, 8000, cfg.Service.Port)
	assert.Equal(t, 10, cfg.Service.DefaultPageSize)
	assert.Equal(t, 100, cfg.Service.MaxPageSize)
	assert.Equal(t, "http://localhost:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, "transactions", cfg.Elasticsearch.Index)
	assert.Equal(t, 30*time.Second, cfg.Elasticsearch.RequestTimeout)
	assert.Equal(t, 20, cfg.Elasticsearch.TypeBucketLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Auth.JWTSecret)

	limits := cfg.PageLimits()
	assert.Equal(t, 10, limits.Default)
	assert.Equal(t, 100, limits.Max)
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
service:
  port: 9100
  default_page_size: 25
elasticsearch:
  url: https://search.internal:9200
  index: transactions-v2
  request_timeout: 5s
logging:
  level: debug
  format: console
`))
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Service.Port)
	assert.Equal(t, 25, cfg.Service.DefaultPageSize)
	assert.Equal(t, "https://search.internal:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, "transactions-v2", cfg.Elasticsearch.Index)
	assert.Equal(t, 5*time.Second, cfg.Elasticsearch.RequestTimeout)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("ELASTICSEARCH_URL", "http://es.example:9200")
	t.Setenv("ELASTICSEARCH_USERNAME", "reader")
	t.Setenv("ELASTICSEARCH_PASSWORD", "secret")
	t.Setenv("ELASTICSEARCH_INDEX", "tx")
	t.Setenv("ELASTICSEARCH_REQUEST_TIMEOUT", "-1s")
	t.Setenv("AUTH_JWT_SECRET", "signing-key")

	cfg, err := config.Load(writeConfig(t, "elasticsearch:\n  url: http://file:9200\n  index: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://es.example:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, "reader", cfg.Elasticsearch.Username)
	assert.Equal(t, "secret", cfg.Elasticsearch.Password)
	assert.Equal(t, "tx", cfg.Elasticsearch.Index)
	assert.Equal(t, -time.Second, cfg.Elasticsearch.RequestTimeout)
	assert.Equal(t, "signing-key", cfg.Auth.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{name: "port out of range", yaml: "service:\n  port: 70000\n", field: "service.port"},
		{
			name:  "default page size above max",
			yaml:  "service:\n  default_page_size: 50\n  max_page_size: 20\n",
			field: "service.default_page_size",
		},
		{name: "url without scheme", yaml: "elasticsearch:\n  url: localhost:9200\n", field: "elasticsearch.url"},
		{name: "unknown log level", yaml: "logging:\n  level: loud\n", field: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.yaml))
			require.Error(t, err)

			var validationErr *infraconfig.ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoad_LegacyElasticsearchVariables(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(config.LegacyHostEnv, "http://legacy:9200")
	t.Setenv(config.LegacyIndexEnv, "legacy-transactions")

	cfg, err := config.Load(writeConfig(t, "service:\n  port: 8000\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://legacy:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, "legacy-transactions", cfg.Elasticsearch.Index)
}

func TestLoad_CurrentVariablesBeatLegacyOnes(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(config.LegacyHostEnv, "http://legacy:9200")
	t.Setenv(config.LegacyIndexEnv, "legacy-transactions")
	t.Setenv("ELASTICSEARCH_URL", "http://current:9200")

	cfg, err := config.Load(writeConfig(t, "elasticsearch:\n  index: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://current:9200", cfg.Elasticsearch.URL)
	assert.Equal(t, "from-file", cfg.Elasticsearch.Index)
}

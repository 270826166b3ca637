// Package elasticsearch creates the shared go-elasticsearch client and
// verifies the cluster is reachable before the service starts.
package elasticsearch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	infraerrors "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/errors"
	infrahttp "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/http"
	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/retry"
)

// NewClient builds a client for cfg and pings the cluster, retrying with
// backoff while it is unreachable. The client itself never retries a
// request: a failed call is reported to the caller straight away.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()
	url := normalizeURL(cfg.URL)

	tlsConfig, err := buildTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}
	transportCfg := cfg.Transport
	transportCfg.TLSConfig = tlsConfig

	clientCfg := es.Config{
		Addresses:    []string{url},
		Transport:    infrahttp.NewTransport(&transportCfg),
		DisableRetry: true,
	}
	switch {
	case cfg.APIKey != "":
		clientCfg.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		clientCfg.Username = cfg.Username
		clientCfg.Password = cfg.Password
	}

	client, err := es.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	log.Info("Verifying Elasticsearch connection", logger.String("url", url))

	connect := cfg.Connect
	connect.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn("Elasticsearch not reachable yet",
			logger.Int("attempt", attempt),
			logger.Duration("retry_in", delay),
			logger.Error(err),
		)
	}
	if err = retry.Retry(ctx, connect, func() error {
		return Ping(ctx, client, cfg.PingTimeout)
	}); err != nil {
		return nil, fmt.Errorf("connect to elasticsearch at %s: %w", url, err)
	}

	log.Info("Elasticsearch connection established", logger.String("url", url))
	return client, nil
}

// Ping checks that the cluster answers within timeout. A zero timeout
// leaves ctx's own deadline in charge.
func Ping(ctx context.Context, client *es.Client, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("ping: %w", infraerrors.ParseResponse(res.StatusCode, res.Body))
	}
	return nil
}

func normalizeURL(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

func buildTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	if !cfg.InsecureSkipVerify && cfg.CAFile == "" {
		return nil, nil //nolint:nilnil // system defaults apply
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for local clusters
	}
	if cfg.CAFile == "" {
		return tlsConfig, nil
	}

	pem, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("read elasticsearch CA file: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("elasticsearch CA file %s contains no certificates", cfg.CAFile)
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}

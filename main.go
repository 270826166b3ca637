package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/north-cloud/transactions/internal/api"
	"github.com/jonesrussell/north-cloud/transactions/internal/config"
	"github.com/jonesrussell/north-cloud/transactions/internal/elasticsearch"
	infraconfig "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/config"
	infraes "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/transactions/internal/service"
	"github.com/jonesrussell/north-cloud/transactions/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// Start profiling (if enabled)
	profiling.StartPprofServer(log)
	if pyroProfiler, pyroErr := profiling.StartPyroscope(cfg.Service.Name, cfg.Service.Version, log); pyroErr != nil {
		log.Warn("Pyroscope failed to start", infralogger.Error(pyroErr))
	} else if pyroProfiler != nil {
		defer pyroProfiler.Stop() //nolint:errcheck // best-effort cleanup
	}

	log.Info("Starting transactions service",
		infralogger.String("name", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
		infralogger.Bool("debug", cfg.Service.Debug),
	)

	// Setup Elasticsearch
	esClient, err := setupElasticsearch(cfg, log)
	if err != nil {
		log.Error("Failed to connect to Elasticsearch", infralogger.Error(err))
		return 1
	}

	return runServer(cfg, esClient, log)
}

// loadConfig loads configuration from config file.
func loadConfig() (*config.Config, error) {
	configPath := infraconfig.GetConfigPath("config.yml")
	return config.Load(configPath)
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, err
	}
	return log.With(infralogger.String("service", cfg.Service.Name)), nil
}

// setupElasticsearch connects to the cluster, retrying while it starts up.
// An interrupt during the retries aborts startup.
func setupElasticsearch(cfg *config.Config, log infralogger.Logger) (*elasticsearch.Client, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	esCfg := cfg.Elasticsearch
	client, err := infraes.NewClient(ctx, infraes.Config{
		URL:         esCfg.URL,
		Username:    esCfg.Username,
		Password:    esCfg.Password,
		APIKey:      esCfg.APIKey,
		PingTimeout: esCfg.PingTimeout,
		TLS: infraes.TLSConfig{
			InsecureSkipVerify: esCfg.InsecureSkipVerify,
			CAFile:             esCfg.CAFile,
		},
		Connect: retry.Config{MaxAttempts: esCfg.ConnectAttempts},
	}, log)
	if err != nil {
		return nil, err
	}

	serverTimeout := esCfg.RequestTimeout
	if serverTimeout < 0 {
		serverTimeout = 0
	}
	return elasticsearch.NewClient(client, serverTimeout), nil
}

// runServer wires the service, handlers and HTTP server, then runs until
// a shutdown signal.
func runServer(cfg *config.Config, esClient *elasticsearch.Client, log infralogger.Logger) int {
	registry := metrics.NewRegistry()

	transactions := service.NewTransactionService(esClient, service.Options{
		Index:           cfg.Elasticsearch.Index,
		RequestTimeout:  cfg.Elasticsearch.RequestTimeout,
		TypeBucketLimit: cfg.Elasticsearch.TypeBucketLimit,
	}, log, telemetry.New(registry))

	handler := api.NewHandler(transactions, cfg.PageLimits(), cfg.Service.Version, log)
	server := api.NewServer(handler, cfg, log, registry)

	log.Info("Transactions service starting",
		infralogger.Int("port", cfg.Service.Port),
		infralogger.String("index", cfg.Elasticsearch.Index),
	)

	if runErr := server.Run(); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return 1
	}

	log.Info("Transactions service exited cleanly")
	return 0
}

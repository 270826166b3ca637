// Package profiling starts the optional pprof endpoint and Pyroscope agent.
// Both are off unless enabled through the environment.
package profiling

import (
	"errors"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // served on localhost only
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/logger"
)

const (
	defaultPprofPort  = "6060"
	pprofReadHeaderTimeout = 10 * time.Second
)

// StartPprofServer serves net/http/pprof on localhost:$PPROF_PORT (default
// 6060) when ENABLE_PROFILING=true. It returns immediately.
func StartPprofServer(log logger.Logger) {
	if os.Getenv("ENABLE_PROFILING") != "true" {
		return
	}

	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPprofPort
	}
	addr := "localhost:" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: pprofReadHeaderTimeout,
	}

	go func() {
		log.Info("Starting pprof server", logger.String("address", "http://"+addr+"/debug/pprof/"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server stopped", logger.Error(err))
		}
	}()
}

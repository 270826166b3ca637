package gin

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the state reported for the service or one dependency.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

const bytesPerMB = 1024 * 1024

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single dependency check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// MemoryStats is the body of GET /health/memory.
type MemoryStats struct {
	Timestamp     time.Time `json:"timestamp"`
	HeapAllocMB   float64   `json:"heap_alloc_mb"`
	HeapInuseMB   float64   `json:"heap_inuse_mb"`
	HeapIdleMB    float64   `json:"heap_idle_mb"`
	StackInuseMB  float64   `json:"stack_inuse_mb"`
	NumGC         uint32    `json:"num_gc"`
	NumGoroutine  int       `json:"num_goroutine"`
	GOMaxProcs    int       `json:"gomaxprocs"`
	LastGCPauseMs float64   `json:"last_gc_pause_ms,omitempty"`
}

// HealthChecker checks one dependency.
type HealthChecker func(ctx context.Context) CheckResult

// PingFunc reports whether a dependency answers.
type PingFunc func(ctx context.Context) error

// HealthOptions configures RegisterHealthRoutes.
type HealthOptions struct {
	ServiceName    string
	ServiceVersion string
	StartTime      time.Time
	CheckTimeout   time.Duration
	Checks         map[string]HealthChecker
}

var (
	processStart     time.Time
	processStartOnce sync.Once
)

// RegisterHealthRoutes adds GET and HEAD /health plus GET /health/memory.
func RegisterHealthRoutes(router *gin.Engine, opts HealthOptions) {
	if opts.StartTime.IsZero() {
		processStartOnce.Do(func() { processStart = time.Now() })
		opts.StartTime = processStart
	}
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = DefaultHealthTimeout
	}

	router.GET("/health", healthHandler(opts))
	router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health/memory", memoryHandler)
}

func healthHandler(opts HealthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
			Uptime:  time.Since(opts.StartTime).Truncate(time.Second).String(),
		}

		if len(opts.Checks) > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), opts.CheckTimeout)
			defer cancel()

			resp.Checks = make(map[string]CheckResult, len(opts.Checks))
			for name, check := range opts.Checks {
				result := check(ctx)
				resp.Checks[name] = result
				resp.Status = worse(resp.Status, result.Status)
			}
		}

		status := http.StatusOK
		if resp.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{HealthStatusHealthy: 0, HealthStatusDegraded: 1, HealthStatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func memoryHandler(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := MemoryStats{
		Timestamp:    time.Now().UTC(),
		HeapAllocMB:  float64(ms.HeapAlloc) / bytesPerMB,
		HeapInuseMB:  float64(ms.HeapInuse) / bytesPerMB,
		HeapIdleMB:   float64(ms.HeapIdle) / bytesPerMB,
		StackInuseMB: float64(ms.StackInuse) / bytesPerMB,
		NumGC:        ms.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
		GOMaxProcs:   runtime.GOMAXPROCS(0),
	}
	if ms.NumGC > 0 {
		stats.LastGCPauseMs = float64(ms.PauseNs[(ms.NumGC+255)%256]) / float64(time.Millisecond)
	}
	c.JSON(http.StatusOK, stats)
}

// PingChecker adapts ping into a HealthChecker. failStatus is reported when
// ping returns an error.
func PingChecker(name string, failStatus HealthStatus, ping PingFunc) HealthChecker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := ping(ctx)
		latency := time.Since(start).String()

		if err != nil {
			return CheckResult{Status: failStatus, Message: name + " unreachable: " + err.Error(), Latency: latency}
		}
		return CheckResult{Status: HealthStatusHealthy, Message: name + " OK", Latency: latency}
	}
}

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/metrics"
)

func TestMiddleware_ExposesRouteMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg, "transactions")

	router := gin.New()
	router.Use(httpMetrics.Middleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(metrics.Handler(reg)))

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text,
		`http_requests_total{method="GET",route="/items/:id",service="transactions",status="204"} 2`)
	assert.Contains(t, text,
		`http_requests_total{method="GET",route="unmatched",service="transactions",status="404"} 1`)
	assert.Contains(t, text, "go_goroutines")
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/transactions/internal/domain"
	infralogger "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/transactions/internal/service"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeUpstreamError    = "UPSTREAM_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

// TransactionService is what the handlers need from the service layer.
type TransactionService interface {
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
	DailyTotals(ctx context.Context, q domain.TransactionQuery) (*domain.DailyTotalsResponse, error)
	Ping(ctx context.Context) error
}

// Handler holds HTTP request handlers
type Handler struct {
	transactions TransactionService
	limits       domain.PageLimits
	version      string
	logger       infralogger.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	transactions TransactionService,
	limits domain.PageLimits,
	version string,
	log infralogger.Logger,
) *Handler {
	return &Handler{
		transactions: transactions,
		limits:       limits,
		version:      version,
		logger:       log,
	}
}

// SearchTransactions handles GET /api/transactions/search.
func (h *Handler) SearchTransactions(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}

	req, err := params.SearchRequest(h.limits)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.transactions.Search(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DailyTotals handles GET /api/transactions/stats/daily.
func (h *Handler) DailyTotals(c *gin.Context) {
	params, ok := h.bindParams(c)
	if !ok {
		return
	}

	query, err := params.DailyTotalsQuery()
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.transactions.DailyTotals(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReadinessCheck reports ready only while the search engine answers.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	status := domain.HealthStatus{
		Status:       "ready",
		Timestamp:    time.Now().UTC(),
		Version:      h.version,
		Dependencies: map[string]string{"elasticsearch": "ok"},
	}

	if err := h.transactions.Ping(c.Request.Context()); err != nil {
		infralogger.FromContextOr(c.Request.Context(), h.logger).Warn("Readiness check failed",
			infralogger.Error(err),
		)
		status.Status = "not_ready"
		status.Dependencies["elasticsearch"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) bindParams(c *gin.Context) (domain.QueryParams, bool) {
	var params domain.QueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid query string: " + err.Error(),
			Code:      CodeInvalidParameter,
			Timestamp: time.Now(),
		})
		return params, false
	}
	return params, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	log := infralogger.FromContextOr(c.Request.Context(), h.logger)

	var paramErr *domain.ParameterError
	switch {
	case errors.As(err, &paramErr):
		log.Debug("Rejected request parameter",
			infralogger.String("parameter", paramErr.Parameter),
			infralogger.String("value", paramErr.Value),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     err.Error(),
			Code:      CodeInvalidParameter,
			Timestamp: time.Now(),
		})
	case errors.Is(err, service.ErrUpstream):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     err.Error(),
			Code:      CodeUpstreamError,
			Timestamp: time.Now(),
		})
	default:
		log.Error("Unexpected handler error", infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "internal server error",
			Code:      CodeInternalError,
			Timestamp: time.Now(),
		})
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

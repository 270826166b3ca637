// Package service runs transaction searches and daily totals against the
// search engine and maps the results.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/jonesrussell/north-cloud/transactions/internal/domain"
	"github.com/jonesrussell/north-cloud/transactions/internal/elasticsearch"
	infracontext "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/context"
	infraerrors "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/errors"
	infralogger "github.com/jonesrussell/north-cloud/transactions/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/transactions/internal/mapper"
	"github.com/jonesrussell/north-cloud/transactions/internal/telemetry"
)

// ErrUpstream wraps every failure to get a usable answer from the engine.
var ErrUpstream = errors.New("search engine request failed")

const (
	operationSearch      = "search"
	operationDailyTotals = "daily_totals"
)

// SearchClient is the engine surface the service needs.
type SearchClient interface {
	Search(ctx context.Context, index string, body map[string]any) (*esapi.Response, error)
	Ping(ctx context.Context) error
}

// Options configures a TransactionService.
type Options struct {
	Index string
	// RequestTimeout bounds each engine call including decoding. Zero or
	// negative leaves the caller's context in charge.
	RequestTimeout  time.Duration
	TypeBucketLimit int
}

// TransactionService answers transaction queries. It holds no per-request
// state and is safe for concurrent use.
type TransactionService struct {
	client       SearchClient
	queryBuilder *elasticsearch.QueryBuilder
	opts         Options
	logger       infralogger.Logger
	metrics      *telemetry.Recorder
}

// NewTransactionService creates a service. metrics may be nil.
func NewTransactionService(
	client SearchClient,
	opts Options,
	log infralogger.Logger,
	metrics *telemetry.Recorder,
) *TransactionService {
	return &TransactionService{
		client:       client,
		queryBuilder: elasticsearch.NewQueryBuilder(opts.TypeBucketLimit),
		opts:         opts,
		logger:       log,
		metrics:      metrics,
	}
}

// Search returns one page of the client's transactions, newest first.
func (s *TransactionService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	hits, err := s.search(ctx, s.queryBuilder.BuildSearch(req))
	s.record(operationSearch, start, err)
	log := infralogger.FromContextOr(ctx, s.logger)
	if err != nil {
		log.Error("Transaction search failed", upstreamFields(req.ClientID, err)...)
		return nil, err
	}

	batch := mapper.MapHits(hits.Hits)
	if len(batch.Skipped) > 0 {
		s.metrics.SkippedHits(len(batch.Skipped))
		for _, skipped := range batch.Skipped {
			log.Warn("Skipping invalid transaction hit",
				infralogger.String("document_id", skipped.DocumentID),
				infralogger.Error(skipped.Err),
			)
		}
	}

	log.Debug("Transaction search completed",
		infralogger.String("client_id", req.ClientID),
		infralogger.Int64("total", hits.Total),
		infralogger.Int("returned", len(batch.Items)),
		infralogger.Duration("took", time.Since(start)),
	)

	return &domain.SearchResponse{
		Total: hits.Total,
		Page:  req.Page,
		Size:  req.Size,
		Items: batch.Items,
	}, nil
}

// DailyTotals sums the client's transaction amounts per day and type.
// Days without transactions are included with empty totals.
func (s *TransactionService) DailyTotals(ctx context.Context, q domain.TransactionQuery) (*domain.DailyTotalsResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	buckets, defaulted, err := s.dailyBuckets(ctx, s.queryBuilder.BuildDailyTotals(q))
	s.record(operationDailyTotals, start, err)
	log := infralogger.FromContextOr(ctx, s.logger)
	if err != nil {
		log.Error("Daily totals aggregation failed", upstreamFields(q.ClientID, err)...)
		return nil, err
	}

	if defaulted > 0 {
		s.metrics.DefaultedValues(defaulted)
		log.Warn("Daily totals contained unreadable values",
			infralogger.String("client_id", q.ClientID),
			infralogger.Int("defaulted", defaulted),
		)
	}

	return &domain.DailyTotalsResponse{
		ClientID:  q.ClientID,
		StartDate: q.Range.Start,
		EndDate:   q.Range.End,
		Buckets:   buckets,
	}, nil
}

// Ping reports whether the engine is reachable.
func (s *TransactionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *TransactionService) search(ctx context.Context, body map[string]any) (mapper.SearchHits, error) {
	res, err := s.client.Search(ctx, s.opts.Index, body)
	if err != nil {
		return mapper.SearchHits{}, upstream(err)
	}
	defer func() { _ = res.Body.Close() }()

	hits, err := mapper.DecodeSearchHits(res.Body)
	if err != nil {
		return mapper.SearchHits{}, upstream(err)
	}
	return hits, nil
}

func (s *TransactionService) dailyBuckets(
	ctx context.Context,
	body map[string]any,
) ([]domain.DailyTotalsBucket, int, error) {
	res, err := s.client.Search(ctx, s.opts.Index, body)
	if err != nil {
		return nil, 0, upstream(err)
	}
	defer func() { _ = res.Body.Close() }()

	raws, err := mapper.DecodeDayBuckets(res.Body)
	if err != nil {
		return nil, 0, upstream(err)
	}
	buckets, defaulted := mapper.MapDailyBuckets(raws)
	return buckets, defaulted, nil
}

func (s *TransactionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return infracontext.WithOptionalTimeout(ctx, s.opts.RequestTimeout)
}

func (s *TransactionService) record(operation string, start time.Time, err error) {
	outcome := telemetry.OutcomeSuccess
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = telemetry.OutcomeTimeout
	case err != nil:
		outcome = telemetry.OutcomeError
	}
	s.metrics.EngineRequest(operation, outcome, time.Since(start))
}

// upstreamFields adds the engine's HTTP status when the engine answered.
func upstreamFields(clientID string, err error) []infralogger.Field {
	fields := []infralogger.Field{
		infralogger.String("client_id", clientID),
		infralogger.Error(err),
	}
	if status, ok := infraerrors.StatusCode(err); ok {
		fields = append(fields, infralogger.Int("engine_status", status))
	}
	return fields
}

func upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

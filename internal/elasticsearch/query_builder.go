package elasticsearch

import (
	"time"

	"github.com/jonesrussell/north-cloud/transactions/internal/domain"
	"github.com/jonesrussell/north-cloud/transactions/internal/mapper"
)

// Aggregation names used in daily totals requests and read back by the mapper.
const (
	AggPerDay      = "per_day"
	AggByType      = "by_type"
	AggTotalAmount = "total_amount"
)

const (
	defaultTypeBucketLimit = 20
	dayInterval            = "1d"
)

// QueryBuilder builds request bodies for the transactions index.
type QueryBuilder struct {
	typeBucketLimit int
}

// NewQueryBuilder returns a builder whose daily totals keep at most
// typeBucketLimit transaction types per day. Zero means 20.
func NewQueryBuilder(typeBucketLimit int) *QueryBuilder {
	if typeBucketLimit <= 0 {
		typeBucketLimit = defaultTypeBucketLimit
	}
	return &QueryBuilder{typeBucketLimit: typeBucketLimit}
}

// BuildFilter matches one client's transactions created within the
// inclusive date range. Both search and aggregation requests use it.
func (qb *QueryBuilder) BuildFilter(q domain.TransactionQuery) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"filter": []any{
				map[string]any{
					"term": map[string]any{mapper.FieldClientID: q.ClientID},
				},
				map[string]any{
					"range": map[string]any{
						mapper.FieldCreatedAt: map[string]any{
							"gte": formatInstant(q.Range.Start),
							"lte": formatInstant(q.Range.End),
						},
					},
				},
			},
		},
	}
}

// BuildSearch returns one page of matches, newest first.
func (qb *QueryBuilder) BuildSearch(req domain.SearchRequest) map[string]any {
	return map[string]any{
		"query": qb.BuildFilter(req.TransactionQuery),
		"sort": []any{
			map[string]any{mapper.FieldCreatedAt: map[string]any{"order": "desc"}},
		},
		"from":             req.Offset(),
		"size":             req.Size,
		"track_total_hits": true,
	}
}

// BuildDailyTotals returns no hits, only a per-day histogram over the range
// with amounts summed per transaction type. Days without transactions are
// kept, including ones at either end of the range.
func (qb *QueryBuilder) BuildDailyTotals(q domain.TransactionQuery) map[string]any {
	return map[string]any{
		"query": qb.BuildFilter(q),
		"size":  0,
		"aggs": map[string]any{
			AggPerDay: map[string]any{
				"date_histogram": map[string]any{
					"field":          mapper.FieldCreatedAt,
					"fixed_interval": dayInterval,
					"min_doc_count":  0,
					"extended_bounds": map[string]any{
						"min": formatInstant(q.Range.Start),
						"max": formatInstant(q.Range.End),
					},
				},
				"aggs": map[string]any{
					AggByType: map[string]any{
						"terms": map[string]any{
							"field": mapper.FieldType,
							"size":  qb.typeBucketLimit,
						},
						"aggs": map[string]any{
							AggTotalAmount: map[string]any{
								"sum": map[string]any{"field": mapper.FieldAmount},
							},
						},
					},
				},
			},
		},
	}
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

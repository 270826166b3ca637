package mapper

import (
	"encoding/json"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonesrussell/north-cloud/transactions/internal/domain"
	"github.com/jonesrussell/north-cloud/transactions/internal/normalize"
)

type rawDayBucket struct {
	Key         any             `json:"key"`
	KeyAsString any             `json:"key_as_string"`
	ByType      json.RawMessage `json:"by_type"`
}

type rawTypeBuckets struct {
	Buckets []json.RawMessage `json:"buckets"`
}

type rawTypeBucket struct {
	Key         any             `json:"key"`
	TotalAmount json.RawMessage `json:"total_amount"`
}

type rawSum struct {
	Value any `json:"value"`
}

// BucketResult is a mapped day bucket plus the number of values that had
// to be defaulted while mapping it.
type BucketResult struct {
	Bucket    domain.DailyTotalsBucket
	Defaulted int
}

// MapDailyBuckets maps every bucket and returns them oldest first along with
// the total count of defaulted values.
func MapDailyBuckets(raws []json.RawMessage) ([]domain.DailyTotalsBucket, int) {
	buckets := make([]domain.DailyTotalsBucket, 0, len(raws))
	defaulted := 0
	for _, raw := range raws {
		res := MapDailyBucket(raw)
		buckets = append(buckets, res.Bucket)
		defaulted += res.Defaulted
	}

	slices.SortStableFunc(buckets, func(a, b domain.DailyTotalsBucket) int {
		return a.Date.Compare(b.Date)
	})
	return buckets, defaulted
}

// MapDailyBucket maps one per_day bucket. It never fails: an unreadable day
// becomes the Unix epoch and an unreadable sum becomes 0. Sums for repeated
// type keys are added together, so TotalAllTypes always equals the sum of
// TotalsByType. Sums too large for a float64 are clamped and counted as
// defaulted.
func MapDailyBucket(raw json.RawMessage) BucketResult {
	var res BucketResult
	res.Bucket.TotalsByType = map[string]float64{}

	var day rawDayBucket
	if decodeNumbers(raw, &day) != nil {
		res.Bucket.Date = epoch
		res.Defaulted++
		return res
	}

	date, ok := normalize.Timestamp(day.KeyAsString)
	if !ok {
		date, ok = normalize.Timestamp(day.Key)
	}
	if !ok {
		date = epoch
		res.Defaulted++
	}
	res.Bucket.Date = startOfDay(date)

	var types rawTypeBuckets
	if len(day.ByType) > 0 && decodeNumbers(day.ByType, &types) != nil {
		res.Defaulted++
	}

	sums := make(map[string]decimal.Decimal, len(types.Buckets))
	total := decimal.Zero
	for _, rawType := range types.Buckets {
		var tb rawTypeBucket
		if decodeNumbers(rawType, &tb) != nil {
			res.Defaulted++
			continue
		}

		var sum rawSum
		if len(tb.TotalAmount) > 0 {
			_ = decodeNumbers(tb.TotalAmount, &sum)
		}
		value, ok := normalize.Float64(sum.Value)
		if !ok {
			res.Defaulted++
		}

		amount := decimal.NewFromFloat(value)
		key := normalize.StringOr(tb.Key, "")
		sums[key] = sums[key].Add(amount)
		total = total.Add(amount)
	}

	for key, sum := range sums {
		value, clamped := toFloat(sum)
		if clamped {
			res.Defaulted++
		}
		res.Bucket.TotalsByType[key] = value
	}
	value, clamped := toFloat(total)
	if clamped {
		res.Defaulted++
	}
	res.Bucket.TotalAllTypes = value
	return res
}

// toFloat converts d, clamping sums beyond the float64 range to
// ±math.MaxFloat64 so they stay JSON-encodable.
func toFloat(d decimal.Decimal) (float64, bool) {
	f := d.InexactFloat64()
	switch {
	case math.IsInf(f, 1):
		return math.MaxFloat64, true
	case math.IsInf(f, -1):
		return -math.MaxFloat64, true
	default:
		return f, false
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

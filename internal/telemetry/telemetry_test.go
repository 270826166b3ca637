package telemetry_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/transactions/internal/telemetry"
)

func gatherValues(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				key := mf.GetName()
				for _, lp := range m.GetLabel() {
					key += "," + lp.GetName() + "=" + lp.GetValue()
				}
				values[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()+"_count"] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestRecorder_CountsEngineRequests(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := telemetry.New(reg)

	rec.EngineRequest("search", telemetry.OutcomeSuccess, 10*time.Millisecond)
	rec.EngineRequest("search", telemetry.OutcomeSuccess, 20*time.Millisecond)
	rec.EngineRequest("daily_totals", telemetry.OutcomeError, time.Millisecond)

	values := gatherValues(t, reg)
	assert.InDelta(t, 2, values["transactions_engine_requests_total,operation=search,outcome=success"], 0)
	assert.InDelta(t, 1, values["transactions_engine_requests_total,operation=daily_totals,outcome=error"], 0)
	assert.InDelta(t, 3, values["transactions_engine_request_duration_seconds_count"], 0)
}

func TestRecorder_DataQualityCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := telemetry.New(reg)

	rec.SkippedHits(2)
	rec.SkippedHits(0)
	rec.DefaultedValues(3)
	rec.DefaultedValues(-1)

	values := gatherValues(t, reg)
	assert.InDelta(t, 2, values["transactions_skipped_hits_total"], 0)
	assert.InDelta(t, 3, values["transactions_defaulted_bucket_values_total"], 0)
}

func TestRecorder_NilIsNoOp(t *testing.T) {
	t.Parallel()

	var rec *telemetry.Recorder
	assert.NotPanics(t, func() {
		rec.EngineRequest("search", telemetry.OutcomeSuccess, time.Second)
		rec.SkippedHits(1)
		rec.DefaultedValues(1)
	})
}

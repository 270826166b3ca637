package mapper_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/transactions/internal/mapper"
)

func rawHit(id, score, source string) mapper.RawHit {
	hit := mapper.RawHit{ID: id}
	if score != "" {
		hit.Score = json.RawMessage(score)
	}
	if source != "" {
		hit.Source = json.RawMessage(source)
	}
	return hit
}

func TestMapHit_WellFormed(t *testing.T) {
	t.Parallel()

	item, err := mapper.MapHit(rawHit("doc-1", "1.5", `{
		"id": "tx-1", "type": "PIX", "created_at": "2024-01-15T10:00:00Z",
		"client_id": "c1", "payer_id": "p9", "amount": 150.75
	}`))
	require.NoError(t, err)

	assert.Equal(t, "doc-1", item.ID)
	assert.InDelta(t, 1.5, item.Score, 1e-9)
	assert.Equal(t, "tx-1", item.Source.ID)
	assert.Equal(t, "PIX", item.Source.Type)
	assert.Equal(t, "c1", item.Source.ClientID)
	assert.Equal(t, "p9", item.Source.PayerID)
	assert.InDelta(t, 150.75, item.Source.Amount, 1e-9)
	assert.True(t, item.Source.CreatedAt.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)))
}

func TestMapHit_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		hit    mapper.RawHit
		assert func(t *testing.T, id, txID, clientID string, amount float64, createdAt time.Time, score float64)
	}{
		{
			name: "non numeric amount becomes zero",
			hit:  rawHit("d1", "", `{"id":"t1","amount":"abc","created_at":1705312800}`),
			assert: func(t *testing.T, _, _, _ string, amount float64, _ time.Time, _ float64) {
				assert.InDelta(t, 0.0, amount, 1e-9)
			},
		},
		{
			name: "numeric string amount is coerced",
			hit:  rawHit("d1", "", `{"id":"t1","amount":"42.10"}`),
			assert: func(t *testing.T, _, _, _ string, amount float64, _ time.Time, _ float64) {
				assert.InDelta(t, 42.10, amount, 1e-9)
			},
		},
		{
			name: "missing client id becomes empty",
			hit:  rawHit("d1", "", `{"id":"t1"}`),
			assert: func(t *testing.T, _, _, clientID string, _ float64, _ time.Time, _ float64) {
				assert.Empty(t, clientID)
			},
		},
		{
			name: "unparseable created_at becomes epoch",
			hit:  rawHit("d1", "", `{"id":"t1","created_at":"yesterday"}`),
			assert: func(t *testing.T, _, _, _ string, _ float64, createdAt time.Time, _ float64) {
				assert.True(t, createdAt.Equal(time.Unix(0, 0)))
			},
		},
		{
			name: "epoch millis created_at",
			hit:  rawHit("d1", "", `{"id":"t1","created_at":1705312800000}`),
			assert: func(t *testing.T, _, _, _ string, _ float64, createdAt time.Time, _ float64) {
				assert.True(t, createdAt.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)))
			},
		},
		{
			name: "missing source id falls back to document id",
			hit:  rawHit("doc-7", "", `{"type":"TED"}`),
			assert: func(t *testing.T, id, txID, _ string, _ float64, _ time.Time, _ float64) {
				assert.Equal(t, "doc-7", id)
				assert.Equal(t, "doc-7", txID)
			},
		},
		{
			name: "numeric source id keeps its spelling",
			hit:  rawHit("doc-8", "", `{"id":12345}`),
			assert: func(t *testing.T, _, txID, _ string, _ float64, _ time.Time, _ float64) {
				assert.Equal(t, "12345", txID)
			},
		},
		{
			name: "null score becomes zero",
			hit:  rawHit("d1", "null", `{"id":"t1"}`),
			assert: func(t *testing.T, _, _, _ string, _ float64, _ time.Time, score float64) {
				assert.InDelta(t, 0.0, score, 1e-9)
			},
		},
		{
			name: "null source still maps from document id",
			hit:  rawHit("d9", "", `null`),
			assert: func(t *testing.T, id, txID, _ string, _ float64, _ time.Time, _ float64) {
				assert.Equal(t, "d9", id)
				assert.Equal(t, "d9", txID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item, err := mapper.MapHit(tt.hit)
			require.NoError(t, err)
			tt.assert(t, item.ID, item.Source.ID, item.Source.ClientID, item.Source.Amount, item.Source.CreatedAt, item.Score)
		})
	}
}

func TestMapHit_RejectsHitWithoutAnyID(t *testing.T) {
	t.Parallel()

	_, err := mapper.MapHit(rawHit("", "", `{"type":"PIX","amount":1}`))
	assert.Error(t, err)
}

func TestMapHits_SkipsInvalidKeepsOrder(t *testing.T) {
	t.Parallel()

	batch := mapper.MapHits([]mapper.RawHit{
		rawHit("a", "", `{"id":"a","amount":"abc"}`),
		rawHit("", "", `{"amount":1}`),
		rawHit("c", "", `{"id":"c"}`),
	})

	require.Len(t, batch.Items, 2)
	assert.Equal(t, "a", batch.Items[0].ID)
	assert.Equal(t, "c", batch.Items[1].ID)
	require.Len(t, batch.Skipped, 1)
	assert.Error(t, batch.Skipped[0].Err)
}

func TestDecodeSearchHits_TotalShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int64
	}{
		{"object total", `{"hits":{"total":{"value":57,"relation":"eq"},"hits":[]}}`, 57},
		{"bare total", `{"hits":{"total":12,"hits":[]}}`, 12},
		{"missing total", `{"hits":{"hits":[]}}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hits, err := mapper.DecodeSearchHits(strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, hits.Total)
		})
	}

	_, err := mapper.DecodeSearchHits(strings.NewReader(`{"hits":`))
	assert.Error(t, err)
}

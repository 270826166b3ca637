package mapper

import (
	"encoding/json"
	"time"

	"github.com/jonesrussell/north-cloud/transactions/internal/domain"
	"github.com/jonesrussell/north-cloud/transactions/internal/normalize"
)

// Stored document field names.
const (
	FieldID        = "id"
	FieldType      = "type"
	FieldCreatedAt = "created_at"
	FieldClientID  = "client_id"
	FieldPayerID   = "payer_id"
	FieldAmount    = "amount"
)

var epoch = time.Unix(0, 0).UTC()

// SkippedHit records a hit left out of the results.
type SkippedHit struct {
	DocumentID string
	Err        error
}

// HitBatch is the outcome of mapping one page of hits.
type HitBatch struct {
	Items   []domain.SearchResultItem
	Skipped []SkippedHit
}

// MapHits maps every hit, keeping hits order and collecting the ones that
// fail validation in Skipped.
func MapHits(hits []RawHit) HitBatch {
	batch := HitBatch{Items: make([]domain.SearchResultItem, 0, len(hits))}
	for _, hit := range hits {
		item, err := MapHit(hit)
		if err != nil {
			batch.Skipped = append(batch.Skipped, SkippedHit{DocumentID: hit.ID, Err: err})
			continue
		}
		batch.Items = append(batch.Items, item)
	}
	return batch
}

// MapHit builds a result item from a hit. Missing or unreadable fields take
// defaults: empty strings, a zero amount and the Unix epoch for created_at.
// The transaction id falls back to the document id. An error means the
// defaulted transaction still failed validation.
func MapHit(hit RawHit) (domain.SearchResultItem, error) {
	source, _ := decodeLoose(hit.Source).(map[string]any)

	createdAt, ok := normalize.Timestamp(source[FieldCreatedAt])
	if !ok {
		createdAt = epoch
	}

	tx := domain.Transaction{
		ID:        transactionID(source[FieldID], hit.ID),
		Type:      normalize.StringOr(source[FieldType], ""),
		CreatedAt: createdAt,
		ClientID:  normalize.StringOr(source[FieldClientID], ""),
		PayerID:   normalize.StringOr(source[FieldPayerID], ""),
		Amount:    normalize.Float64Or(source[FieldAmount], 0),
	}
	if err := tx.Validate(); err != nil {
		return domain.SearchResultItem{}, err
	}

	id := hit.ID
	if id == "" {
		id = tx.ID
	}

	score := normalize.Float64Or(decodeLoose(hit.Score), 0)
	if score < 0 {
		score = 0
	}

	return domain.SearchResultItem{ID: id, Score: score, Source: tx}, nil
}

// transactionID prefers the stored id unless it is empty, zero or
// otherwise blank, then the document id.
func transactionID(stored any, documentID string) string {
	if blank(stored) {
		return documentID
	}
	if id, ok := normalize.String(stored); ok {
		return id
	}
	return documentID
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

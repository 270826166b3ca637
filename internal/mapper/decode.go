// Package mapper converts raw Elasticsearch search results into validated
// domain values. Malformed hits are skipped and malformed aggregation values
// fall back to zero; only a response whose envelope cannot be read is an
// error.
package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// RawHit is one element of hits.hits with the stored document undecoded.
type RawHit struct {
	ID     string          `json:"_id"`
	Score  json.RawMessage `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// SearchHits is the hits section of a search response.
type SearchHits struct {
	// Total is hits.total.value, or hits.total itself on clusters that
	// report a bare number.
	Total int64
	Hits  []RawHit
}

type searchEnvelope struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []RawHit        `json:"hits"`
	} `json:"hits"`
}

type aggregationEnvelope struct {
	Aggregations struct {
		PerDay struct {
			Buckets []json.RawMessage `json:"buckets"`
		} `json:"per_day"`
	} `json:"aggregations"`
}

// DecodeSearchHits reads a search response body.
func DecodeSearchHits(body io.Reader) (SearchHits, error) {
	var env searchEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return SearchHits{}, fmt.Errorf("decode search response: %w", err)
	}

	total, err := decodeTotal(env.Hits.Total)
	if err != nil {
		return SearchHits{}, err
	}
	return SearchHits{Total: total, Hits: env.Hits.Hits}, nil
}

// DecodeDayBuckets reads aggregations.per_day.buckets from a response body.
// A response without the aggregation yields no buckets.
func DecodeDayBuckets(body io.Reader) ([]json.RawMessage, error) {
	var env aggregationEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode aggregation response: %w", err)
	}
	return env.Aggregations.PerDay.Buckets, nil
}

func decodeTotal(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	var object struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &object); err == nil {
		return object.Value, nil
	}

	var bare int64
	if err := json.Unmarshal(raw, &bare); err != nil {
		return 0, fmt.Errorf("decode hits.total %s: %w", raw, err)
	}
	return bare, nil
}

// decodeLoose decodes raw into a generic value keeping numbers as
// json.Number. Empty or malformed input yields nil.
func decodeLoose(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if decodeNumbers(raw, &v) != nil {
		return nil
	}
	return v
}

func decodeNumbers(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

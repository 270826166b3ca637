package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// Transaction is a stored transaction after normalization.
type Transaction struct {
	ID        string    `json:"id"         validate:"required"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
	ClientID  string    `json:"client_id"`
	PayerID   string    `json:"payer_id"`
	Amount    float64   `json:"amount"     validate:"finite"`
}

var transactionValidator = newTransactionValidator()

func newTransactionValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(fmt.Sprintf("register finite validation: %v", err))
	}
	return v
}

// Validate reports whether t satisfies the transaction schema: a non-empty
// id, a set creation time and a finite amount.
func (t Transaction) Validate() error {
	if err := transactionValidator.Struct(t); err != nil {
		return fmt.Errorf("invalid transaction %q: %w", t.ID, err)
	}
	return nil
}

// SearchResultItem is one search hit.
type SearchResultItem struct {
	// ID is the engine's document id, which may differ from Source.ID.
	ID     string      `json:"id"`
	Score  float64     `json:"score"`
	Source Transaction `json:"source"`
}

// SearchResponse is a page of search hits. Total counts every match in the
// engine, including hits on other pages and hits dropped as invalid.
type SearchResponse struct {
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
	Items []SearchResultItem `json:"items"`
}

// DailyTotalsBucket sums one calendar day of transactions by type.
type DailyTotalsBucket struct {
	Date          time.Time          `json:"date"`
	TotalsByType  map[string]float64 `json:"totalsByType"`
	TotalAllTypes float64            `json:"totalAllTypes"`
}

// DailyTotalsResponse lists one bucket per day of the requested range, in
// chronological order.
type DailyTotalsResponse struct {
	ClientID  string              `json:"clientId"`
	StartDate time.Time           `json:"startDate"`
	EndDate   time.Time           `json:"endDate"`
	Buckets   []DailyTotalsBucket `json:"buckets"`
}

// HealthStatus is the readiness report.
type HealthStatus struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

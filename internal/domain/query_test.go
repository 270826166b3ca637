package domain_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/transactions/internal/domain"
)

var limits = domain.PageLimits{Default: 10, Max: 100}

func validParams() domain.QueryParams {
	return domain.QueryParams{
		ClientID:  "client-42",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31T23:59:59Z",
	}
}

func TestQueryParams_SearchRequest_Defaults(t *testing.T) {
	req, err := validParams().SearchRequest(limits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Page != 1 {
		t.Errorf("expected default page 1, got %d", req.Page)
	}
	if req.Size != 10 {
		t.Errorf("expected default size 10, got %d", req.Size)
	}
	if req.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", req.Offset())
	}
	if req.ClientID != "client-42" {
		t.Errorf("expected client-42, got %q", req.ClientID)
	}
	wantStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !req.Range.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, req.Range.Start)
	}
}

func TestQueryParams_SearchRequest_Offset(t *testing.T) {
	params := validParams()
	params.Page = "3"
	params.Size = "10"

	req, err := params.SearchRequest(limits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Offset() != 20 {
		t.Errorf("expected offset 20 for page 3 size 10, got %d", req.Offset())
	}
}

func TestQueryParams_SearchRequest_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.QueryParams)
		wantParam string
	}{
		{"missing client", func(p *domain.QueryParams) { p.ClientID = "" }, domain.ParamClientID},
		{"blank client", func(p *domain.QueryParams) { p.ClientID = "   " }, domain.ParamClientID},
		{"missing start", func(p *domain.QueryParams) { p.StartDate = "" }, domain.ParamStartDate},
		{"bad start", func(p *domain.QueryParams) { p.StartDate = "not-a-date" }, domain.ParamStartDate},
		{"bad end", func(p *domain.QueryParams) { p.EndDate = "2024-02-30" }, domain.ParamEndDate},
		{"start after end", func(p *domain.QueryParams) { p.StartDate = "2024-03-01" }, domain.ParamStartDate},
		{"page zero", func(p *domain.QueryParams) { p.Page = "0" }, domain.ParamPage},
		{"page negative", func(p *domain.QueryParams) { p.Page = "-1" }, domain.ParamPage},
		{"page not integer", func(p *domain.QueryParams) { p.Page = "two" }, domain.ParamPage},
		{"page beyond offset limit", func(p *domain.QueryParams) { p.Page = "999999999" }, domain.ParamPage},
		{"size zero", func(p *domain.QueryParams) { p.Size = "0" }, domain.ParamSize},
		{"size too large", func(p *domain.QueryParams) { p.Size = "101" }, domain.ParamSize},
		{"size fractional", func(p *domain.QueryParams) { p.Size = "2.5" }, domain.ParamSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)

			_, err := params.SearchRequest(limits)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var paramErr *domain.ParameterError
			if !errors.As(err, &paramErr) {
				t.Fatalf("expected *ParameterError, got %T", err)
			}
			if paramErr.Parameter != tt.wantParam {
				t.Errorf("expected parameter %q, got %q", tt.wantParam, paramErr.Parameter)
			}
		})
	}
}

func TestQueryParams_ErrorNamesRawValue(t *testing.T) {
	params := validParams()
	params.StartDate = "31/01/2024"

	_, err := params.TransactionQuery()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "startDate") || !strings.Contains(err.Error(), "31/01/2024") {
		t.Errorf("error %q should name the parameter and raw value", err.Error())
	}
}

func TestQueryParams_SizeBoundsInclusive(t *testing.T) {
	for _, size := range []string{"1", "100"} {
		params := validParams()
		params.Size = size
		if _, err := params.SearchRequest(limits); err != nil {
			t.Errorf("size %s: unexpected error: %v", size, err)
		}
	}
}

func TestQueryParams_SameDayRangeAllowed(t *testing.T) {
	params := validParams()
	params.StartDate = "2024-01-05T10:00:00Z"
	params.EndDate = "2024-01-05T10:00:00Z"

	q, err := params.TransactionQuery()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Range.Start.Equal(q.Range.End) {
		t.Errorf("expected equal bounds, got %v and %v", q.Range.Start, q.Range.End)
	}
}

func TestDateRange_Days(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{
			name:  "same instant",
			start: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
			want:  1,
		},
		{
			name:  "crosses midnight",
			start: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC),
			want:  2,
		},
		{
			name:  "three days",
			start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC),
			want:  3,
		},
		{
			name:  "beyond duration range",
			start: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
			want:  math.MaxInt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.DateRange{Start: tt.start, End: tt.end}.Days()
			if got != tt.want {
				t.Errorf("Days() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQueryParams_DailyTotalsQuery_SpanLimit(t *testing.T) {
	params := validParams()
	params.StartDate = "2024-01-01"
	params.EndDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, domain.MaxDailyBuckets-1).Format(time.RFC3339)
	if _, err := params.DailyTotalsQuery(); err != nil {
		t.Fatalf("range of exactly %d days: unexpected error: %v", domain.MaxDailyBuckets, err)
	}

	for _, end := range []string{"2040-01-01", "9999-12-31"} {
		params.EndDate = end
		_, err := params.DailyTotalsQuery()

		var paramErr *domain.ParameterError
		if !errors.As(err, &paramErr) {
			t.Fatalf("end %s: expected *ParameterError, got %v", end, err)
		}
		if paramErr.Parameter != domain.ParamEndDate {
			t.Errorf("end %s: expected parameter %q, got %q", end, domain.ParamEndDate, paramErr.Parameter)
		}
	}
}

func TestQueryParams_DailyTotalsQuery_PropagatesParamErrors(t *testing.T) {
	params := validParams()
	params.ClientID = ""
	if _, err := params.DailyTotalsQuery(); err == nil {
		t.Fatal("expected error for missing client_id")
	}
}

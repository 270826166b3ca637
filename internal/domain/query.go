package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/transactions/internal/normalize"
)

// Query string parameter names.
const (
	ParamClientID  = "client_id"
	ParamStartDate = "startDate"
	ParamEndDate   = "endDate"
	ParamPage      = "page"
	ParamSize      = "size"
)

// MaxResultOffset caps (page-1)*size so the offset always fits the engine's
// 32-bit "from".
const MaxResultOffset = math.MaxInt32

// MaxDailyBuckets caps the calendar days a daily totals request may span.
// At the default of 20 type buckets per day this stays under the engine's
// default limit of 65,536 buckets per response.
const MaxDailyBuckets = 3000

const day = 24 * time.Hour

// ParameterError is a rejected request parameter. It is always the
// caller's fault.
type ParameterError struct {
	Parameter string
	Value     string
	Reason    string
}

func (e *ParameterError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Parameter, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Parameter, e.Value, e.Reason)
}

// DateRange is an inclusive range of instants.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days counts the UTC calendar days touched by the range. Ranges too long
// for a time.Duration report math.MaxInt.
func (r DateRange) Days() int {
	start := r.Start.UTC().Truncate(day)
	end := r.End.UTC().Truncate(day)
	span := end.Sub(start)
	if span == math.MaxInt64 {
		return math.MaxInt
	}
	return int(span/day) + 1
}

// TransactionQuery selects one client's transactions within a date range.
type TransactionQuery struct {
	ClientID string
	Range    DateRange
}

// SearchRequest is a TransactionQuery plus a 1-based page.
type SearchRequest struct {
	TransactionQuery
	Page int
	Size int
}

// Offset is the number of matches skipped before this page.
func (r SearchRequest) Offset() int {
	return (r.Page - 1) * r.Size
}

// PageLimits bounds the size parameter.
type PageLimits struct {
	Default int
	Max     int
}

// QueryParams holds the query string exactly as received.
type QueryParams struct {
	ClientID  string `form:"client_id"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Page      string `form:"page"`
	Size      string `form:"size"`
}

// TransactionQuery validates the client and date parameters.
func (p QueryParams) TransactionQuery() (TransactionQuery, error) {
	if strings.TrimSpace(p.ClientID) == "" {
		return TransactionQuery{}, &ParameterError{Parameter: ParamClientID, Reason: "is required"}
	}

	start, err := parseDate(ParamStartDate, p.StartDate)
	if err != nil {
		return TransactionQuery{}, err
	}
	end, err := parseDate(ParamEndDate, p.EndDate)
	if err != nil {
		return TransactionQuery{}, err
	}
	if start.After(end) {
		return TransactionQuery{}, &ParameterError{
			Parameter: ParamStartDate,
			Value:     p.StartDate,
			Reason:    fmt.Sprintf("must not be after %s %q", ParamEndDate, p.EndDate),
		}
	}

	return TransactionQuery{ClientID: p.ClientID, Range: DateRange{Start: start, End: end}}, nil
}

// DailyTotalsQuery is TransactionQuery limited to ranges of at most
// MaxDailyBuckets calendar days.
func (p QueryParams) DailyTotalsQuery() (TransactionQuery, error) {
	query, err := p.TransactionQuery()
	if err != nil {
		return TransactionQuery{}, err
	}
	if days := query.Range.Days(); days > MaxDailyBuckets {
		return TransactionQuery{}, &ParameterError{
			Parameter: ParamEndDate,
			Value:     p.EndDate,
			Reason:    fmt.Sprintf("range covers %d days, at most %d allowed", days, MaxDailyBuckets),
		}
	}
	return query, nil
}

// SearchRequest validates every parameter, applying limits to page size.
func (p QueryParams) SearchRequest(limits PageLimits) (SearchRequest, error) {
	query, err := p.TransactionQuery()
	if err != nil {
		return SearchRequest{}, err
	}

	page, err := parseBoundedInt(ParamPage, p.Page, 1, 1, math.MaxInt)
	if err != nil {
		return SearchRequest{}, err
	}
	size, err := parseBoundedInt(ParamSize, p.Size, limits.Default, 1, limits.Max)
	if err != nil {
		return SearchRequest{}, err
	}

	req := SearchRequest{TransactionQuery: query, Page: page, Size: size}
	if page-1 > MaxResultOffset/size {
		return SearchRequest{}, &ParameterError{
			Parameter: ParamPage,
			Value:     p.Page,
			Reason:    fmt.Sprintf("page %d of size %d is beyond the last reachable result", page, size),
		}
	}
	return req, nil
}

func parseDate(param, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &ParameterError{Parameter: param, Reason: "is required"}
	}
	t, err := normalize.ParseISO8601(raw)
	if err != nil {
		return time.Time{}, &ParameterError{Parameter: param, Value: raw, Reason: "expected an ISO-8601 date or date-time"}
	}
	return t, nil
}

func parseBoundedInt(param, raw string, fallback, lo, hi int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParameterError{Parameter: param, Value: raw, Reason: "expected an integer"}
	}
	if n < lo || n > hi {
		reason := fmt.Sprintf("must be between %d and %d", lo, hi)
		if hi == math.MaxInt {
			reason = fmt.Sprintf("must be at least %d", lo)
		}
		return 0, &ParameterError{Parameter: param, Value: raw, Reason: reason}
	}
	return n, nil
}

package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// EpochMillisThreshold separates epoch seconds from epoch milliseconds.
// Numeric timestamps strictly greater than this are milliseconds. Seconds
// values cross it in the year 2286 and millisecond values fall below it
// only for instants in early 1970.
const EpochMillisThreshold = 10_000_000_000

// Instants outside years 0001-9999 are rejected.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300799
)

var errEmptyTimestamp = errors.New("empty timestamp")

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
	"2006-01",
	"2006",
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102",
}

// ParseISO8601 parses an ISO-8601 date or date-time. Reduced-precision
// dates such as "2024-03" or "2024" mean the first instant of that month or
// year. The date and time may be separated by 'T' or a single space,
// seconds may carry a fraction, and the offset may be Z, ±HH:MM, ±HHMM or
// ±HH. A value without an offset is taken as UTC. The result is always in
// UTC.
func ParseISO8601(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errEmptyTimestamp
	}

	value := s
	if len(value) > len("2006-01-02") && value[10] == ' ' {
		value = value[:10] + "T" + value[11:]
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO-8601 date or date-time: %q", s)
}

// Timestamp decodes a stored timestamp. It accepts a time.Time (returned
// as is), an ISO-8601 string, or a number of epoch seconds or
// milliseconds (see EpochMillisThreshold). Anything else, including nil,
// reports false.
func Timestamp(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		t, err := ParseISO8601(v)
		return t, err == nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return fromEpochInt(n)
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpochFloat(f)
	case float64:
		return fromEpochFloat(v)
	case float32:
		return fromEpochFloat(float64(v))
	case int:
		return fromEpochInt(int64(v))
	case int8:
		return fromEpochInt(int64(v))
	case int16:
		return fromEpochInt(int64(v))
	case int32:
		return fromEpochInt(int64(v))
	case int64:
		return fromEpochInt(v)
	case uint:
		return fromEpochUint(uint64(v))
	case uint8:
		return fromEpochInt(int64(v))
	case uint16:
		return fromEpochInt(int64(v))
	case uint32:
		return fromEpochInt(int64(v))
	case uint64:
		return fromEpochUint(v)
	default:
		return time.Time{}, false
	}
}

func fromEpochInt(n int64) (time.Time, bool) {
	if n > EpochMillisThreshold {
		return checkRange(time.UnixMilli(n))
	}
	return checkRange(time.Unix(n, 0))
}

func fromEpochUint(n uint64) (time.Time, bool) {
	if n > math.MaxInt64 {
		return time.Time{}, false
	}
	return fromEpochInt(int64(n))
}

func fromEpochFloat(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if f > EpochMillisThreshold {
		f /= 1000
	}
	if f < minUnixSeconds || f > maxUnixSeconds {
		return time.Time{}, false
	}

	sec, frac := math.Modf(f)
	nsec := math.Round(frac * float64(time.Second))
	return checkRange(time.Unix(int64(sec), int64(nsec)))
}

func checkRange(t time.Time) (time.Time, bool) {
	if s := t.Unix(); s < minUnixSeconds || s > maxUnixSeconds {
		return time.Time{}, false
	}
	return t.UTC(), true
}

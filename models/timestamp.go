package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Epoch is the instant missing or unreadable timestamps sort as.
var Epoch = time.Unix(0, 0).UTC()

// Timestamp is a leniently parsed point in time. Stored records carry
// creation times as RFC 3339 strings, date strings, epoch numbers or
// {seconds, nanoseconds} objects; anything else decodes as invalid without
// failing the surrounding record.
type Timestamp struct {
	t     time.Time
	valid bool
	raw   json.RawMessage
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC(), valid: true}
}

// Valid reports whether a readable time was present.
func (ts Timestamp) Valid() bool { return ts.valid }

// Time returns the instant, or Epoch when invalid.
func (ts Timestamp) Time() time.Time {
	if !ts.valid {
		return Epoch
	}
	return ts.t
}

// After reports whether ts is strictly later than other, treating invalid
// values as Epoch.
func (ts Timestamp) After(other Timestamp) bool {
	return ts.Time().After(other.Time())
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Mon Jan 02 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses the string forms a record may carry.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t), true
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromNumber(n)
	}
	return Timestamp{}, false
}

// maxEpochMillis bounds numeric input so the int64 conversion is exact.
const maxEpochMillis = 1e18

// fromNumber treats values beyond year 2286 in seconds as milliseconds.
// NaN, infinities and values past maxEpochMillis are not times.
func fromNumber(n float64) (Timestamp, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > maxEpochMillis {
		return Timestamp{}, false
	}
	if n > 1e10 || n < -1e10 {
		return NewTimestamp(time.UnixMilli(int64(n))), true
	}
	sec := int64(n)
	return NewTimestamp(time.Unix(sec, int64((n-float64(sec))*1e9))), true
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	ts.raw = append(json.RawMessage(nil), trimmed...)

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		if parsed, ok := ParseTimestamp(s); ok {
			ts.t, ts.valid = parsed.t, true
		}
	case '{':
		var obj map[string]json.Number
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil
		}
		secs, ok := firstNumber(obj, "_seconds", "seconds")
		if !ok {
			return nil
		}
		nanos, _ := firstNumber(obj, "_nanoseconds", "nanoseconds", "nanos")
		ts.t, ts.valid = time.Unix(int64(secs), int64(nanos)).UTC(), true
	default:
		n, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return nil
		}
		if parsed, ok := fromNumber(n); ok {
			ts.t, ts.valid = parsed.t, true
		}
	}
	return nil
}

func firstNumber(obj map[string]json.Number, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// MarshalJSON renders valid times as RFC 3339. Unreadable values are passed
// through untouched so nothing stored is lost; absent values render null.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.valid {
		return json.Marshal(ts.t.Format(time.RFC3339Nano))
	}
	if len(ts.raw) > 0 {
		return ts.raw, nil
	}
	return []byte("null"), nil
}

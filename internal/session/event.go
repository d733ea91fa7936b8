// Package session implements the search session controller: query
// submission, result retention, pagination, aggregate statistics and the
// chat transcript of one user session.
package session

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Event is a single logged activity record as returned by a Searcher.
// Events are never mutated by the controller, only sliced.
type Event struct {
	ID        int64
	BucketID  string
	Timestamp string // ISO-8601; rendered through FormatTimestamp
	Duration  float64
	App       string
	Title     string
}

// ParseDuration converts a decoded duration value to seconds. Missing,
// negative or unparsable values yield 0.
func ParseDuration(v interface{}) float64 {
	var f float64
	switch d := v.(type) {
	case nil:
		return 0
	case float64:
		f = d
	case float32:
		f = float64(d)
	case int:
		f = float64(d)
	case int64:
		f = float64(d)
	case json.Number:
		parsed, err := d.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

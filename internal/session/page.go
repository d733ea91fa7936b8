package session

import (
	"math"
	"time"
)

// DefaultPageSize is used when a cursor carries no usable page size.
const DefaultPageSize = 25

// DisplayZone is the fixed offset (UTC+5:45) timestamps are shown in.
var DisplayZone = time.FixedZone("UTC+05:45", 5*60*60+45*60)

// DisplayLayout is minute precision.
const DisplayLayout = "2006-01-02 15:04"

// Cursor is the pagination position within the current result set.
type Cursor struct {
	PageIndex int
	PageSize  int
}

// Page is the visible slice of a result set plus pagination metadata.
type Page struct {
	Events     []Event
	Start      int // inclusive, 0-based
	End        int // exclusive
	Total      int
	TotalPages int // at least 1
	Remaining  int
	PageIndex  int
}

// Number is the 1-based page number.
func (p Page) Number() int { return p.PageIndex + 1 }

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.PageIndex > 0 }

// HasNext reports whether events follow this page.
func (p Page) HasNext() bool { return p.Remaining > 0 }

// Render computes the page of events selected by c.
func Render(events []Event, c Cursor) Page {
	size := c.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	idx := c.PageIndex
	if idx < 0 {
		idx = 0
	}

	total := len(events)
	start := idx * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	return Page{
		Events:     events[start:end:end],
		Start:      start,
		End:        end,
		Total:      total,
		TotalPages: totalPages,
		Remaining:  total - end,
		PageIndex:  idx,
	}
}

// canAdvance reports whether moving by delta stays within [0, last page].
func canAdvance(total int, c Cursor, delta int) bool {
	next := c.PageIndex + delta
	if next < 0 {
		return false
	}
	size := c.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return next*size < total
}

// FormatTimestamp converts an ISO-8601 timestamp to DisplayZone at minute
// precision. Timestamps without an offset are taken as UTC. Anything that
// does not parse is shown as its first 16 characters.
func FormatTimestamp(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(DisplayZone).Format(DisplayLayout)
		}
	}
	r := []rune(raw)
	if len(r) > 16 {
		r = r[:16]
	}
	return string(r)
}

// FormatMinutes converts seconds to whole minutes (floor division by 60).
func FormatMinutes(seconds float64) int {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return int(math.Floor(seconds / 60))
}

package search

import (
	"fmt"
	"time"

	"github.com/runnerr0/awrecall/internal/session"
)

// TimeFilters lists the accepted time filter names in display order.
var TimeFilters = []string{"all_time", "today", "yesterday", "this_week", "last_week", "this_month"}

// ResolveTimeFilter turns a filter name into a half-open [since, until)
// range evaluated in the display zone. Zero times mean unbounded.
// Weeks start on Monday.
func ResolveTimeFilter(name string, now time.Time) (since, until time.Time, err error) {
	local := now.In(session.DisplayZone)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, session.DisplayZone)

	switch name {
	case "", "all_time":
		return time.Time{}, time.Time{}, nil
	case "today":
		return midnight, midnight.AddDate(0, 0, 1), nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), midnight, nil
	case "this_week", "last_week":
		offset := (int(local.Weekday()) + 6) % 7
		monday := midnight.AddDate(0, 0, -offset)
		if name == "last_week" {
			return monday.AddDate(0, 0, -7), monday, nil
		}
		return monday, monday.AddDate(0, 0, 7), nil
	case "this_month":
		first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, session.DisplayZone)
		return first, first.AddDate(0, 1, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown time filter %q", name)
}

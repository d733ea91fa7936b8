package session

import "sort"

// DisplayTopApps is how many apps the statistics panel shows.
const DisplayTopApps = 5

// AppCount pairs an application with the number of events it appears in.
type AppCount struct {
	App   string
	Count int
}

// Stats are the aggregate statistics of a result set.
type Stats struct {
	TopApps              []AppCount // full ranking; see Top
	TotalDurationSeconds float64
}

// Aggregate counts events per non-empty app and sums every event's
// duration. TopApps is ordered by descending count; ties keep first-seen
// order.
func Aggregate(events []Event) Stats {
	stats := Stats{TopApps: []AppCount{}}
	index := make(map[string]int)

	for _, e := range events {
		stats.TotalDurationSeconds += e.Duration
		if e.App == "" {
			continue
		}
		if i, ok := index[e.App]; ok {
			stats.TopApps[i].Count++
			continue
		}
		index[e.App] = len(stats.TopApps)
		stats.TopApps = append(stats.TopApps, AppCount{App: e.App, Count: 1})
	}

	sort.SliceStable(stats.TopApps, func(i, j int) bool {
		return stats.TopApps[i].Count > stats.TopApps[j].Count
	})
	return stats
}

// Top returns at most n entries of the ranking.
func (s Stats) Top(n int) []AppCount {
	if n < 0 || n >= len(s.TopApps) {
		return s.TopApps
	}
	return s.TopApps[:n]
}

// TotalMinutes is the total duration in whole minutes.
func (s Stats) TotalMinutes() int {
	return FormatMinutes(s.TotalDurationSeconds)
}

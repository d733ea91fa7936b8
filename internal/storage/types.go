package storage

import "time"

// Bucket is an ActivityWatch-style event source (one watcher on one host).
type Bucket struct {
	ID       string
	Type     string // "currentwindow", "afkstatus", "web.tab.current", ...
	Client   string
	Hostname string
	Created  time.Time
}

// Event represents a single logged activity record.
type Event struct {
	ID        int64
	BucketID  string
	Timestamp string // UTC, fixed-width; unparsable inputs are kept verbatim
	Duration  float64
	App       string
	Title     string
	Embedding []float32
}

// SearchQuery defines filters for searching events.
type SearchQuery struct {
	Query    string
	BucketID string
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// Stats holds aggregate statistics about the database.
type Stats struct {
	TotalEvents    int64
	TotalBuckets   int64
	EmbeddedEvents int64
	OldestEvent    string
	NewestEvent    string
	TopApps        []AppCount
}

// AppCount pairs an application name with its event count.
type AppCount struct {
	App   string
	Count int64
}

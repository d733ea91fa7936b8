package session

import (
	"context"
	"time"
)

// Catalog reports what the event store holds.
type Catalog interface {
	BucketIDs(ctx context.Context) ([]string, error)
	CountEvents(ctx context.Context, bucketID string) (int64, error)
}

// BucketCount is the number of events in one bucket.
type BucketCount struct {
	ID    string
	Count int64
}

// Dashboard is the store overview shown beside the chat.
type Dashboard struct {
	TotalEvents  int64
	TotalBuckets int
	Buckets      []BucketCount
	LastUpdated  time.Time
	Err          error
}

// LoadDashboard sums event counts over every bucket. Buckets whose count
// fails are skipped; a failure to list buckets is reported in Err.
func LoadDashboard(ctx context.Context, cat Catalog, now time.Time) Dashboard {
	d := Dashboard{LastUpdated: now}

	ids, err := cat.BucketIDs(ctx)
	if err != nil {
		d.Err = err
		return d
	}
	d.TotalBuckets = len(ids)

	for _, id := range ids {
		n, err := cat.CountEvents(ctx, id)
		if err != nil {
			continue
		}
		d.TotalEvents += n
		d.Buckets = append(d.Buckets, BucketCount{ID: id, Count: n})
	}
	return d
}

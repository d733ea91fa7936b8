// Package search answers session queries from the local event store,
// either by full-text match or by embedding similarity.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/runnerr0/awrecall/internal/session"
	"github.com/runnerr0/awrecall/internal/storage"
)

// Store is the part of the event store searches read from.
type Store interface {
	SearchEvents(ctx context.Context, q storage.SearchQuery) ([]storage.Event, error)
	EmbeddedEvents(ctx context.Context, q storage.SearchQuery) ([]storage.Event, error)
}

// Embedder turns the query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// AllBuckets disables the bucket filter.
const AllBuckets = "all"

const queryCacheSize = 256

// Client implements session.Searcher.
type Client struct {
	store    Store
	embedder Embedder
	now      func() time.Time
	log      *slog.Logger
	vectors  *lru.Cache[string, []float32]
}

// Option customizes a Client.
type Option func(*Client)

// WithClock overrides the clock used for relative time filters.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a search client. embedder may be nil, in which case
// vector searches fall back to text search.
func NewClient(store Store, embedder Embedder, opts ...Option) *Client {
	vectors, _ := lru.New[string, []float32](queryCacheSize)
	c := &Client{
		store:    store,
		embedder: embedder,
		now:      time.Now,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		vectors:  vectors,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ session.Searcher = (*Client)(nil)

// Search runs req. Failures are returned as *BackendError.
func (c *Client) Search(ctx context.Context, req session.Request) (session.Result, error) {
	since, until, err := ResolveTimeFilter(req.TimeFilter, c.now())
	if err != nil {
		return session.Result{}, backendError("time filter", err)
	}
	q := storage.SearchQuery{
		Query: req.Query,
		Since: since,
		Until: until,
		Limit: req.Limit,
	}
	if req.BucketFilter != AllBuckets {
		q.BucketID = req.BucketFilter
	}

	switch req.Mode {
	case session.ModeText:
		return c.searchText(ctx, q, "")
	case session.ModeVector:
		if c.embedder == nil {
			return c.searchText(ctx, q, "vector search unavailable: embeddings disabled, used text search")
		}
		return c.searchVector(ctx, q, req.Threshold)
	}
	return session.Result{}, backendError("search", fmt.Errorf("unknown search mode %q", req.Mode))
}

func (c *Client) searchText(ctx context.Context, q storage.SearchQuery, note string) (session.Result, error) {
	events, err := c.store.SearchEvents(ctx, q)
	if err != nil {
		return session.Result{}, backendError("text search", err)
	}

	diag := fmt.Sprintf("text search: %d matches", len(events))
	if note != "" {
		diag = note + "; " + diag
	}
	c.log.Debug("text search", "query", q.Query, "matches", len(events))
	return session.Result{Events: toSessionEvents(events), Diagnostic: diag}, nil
}

type scored struct {
	event storage.Event
	score float64
}

func (c *Client) searchVector(ctx context.Context, q storage.SearchQuery, threshold float64) (session.Result, error) {
	candidates, err := c.store.EmbeddedEvents(ctx, q)
	if err != nil {
		return session.Result{}, backendError("vector search", err)
	}
	if len(candidates) == 0 {
		return c.searchText(ctx, q, "vector search unavailable: no embedded events, used text search")
	}

	vec, err := c.queryVector(ctx, q.Query)
	if err != nil {
		return session.Result{}, backendError("embed query", err)
	}

	var hits []scored
	for _, e := range candidates {
		s, ok := cosine(vec, e.Embedding)
		if !ok || s < threshold {
			continue
		}
		hits = append(hits, scored{event: e, score: s})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	limit := q.Limit
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	events := make([]session.Event, len(hits))
	best := 0.0
	for i, h := range hits {
		events[i] = toSessionEvent(h.event)
		if h.score > best {
			best = h.score
		}
	}

	c.log.Debug("vector search", "query", q.Query, "candidates", len(candidates), "matches", len(events))
	return session.Result{
		Events: events,
		Diagnostic: fmt.Sprintf("vector search: %d of %d embedded events at similarity >= %.2f (best %.3f)",
			len(events), len(candidates), threshold, best),
	}, nil
}

func (c *Client) queryVector(ctx context.Context, query string) ([]float32, error) {
	if v, ok := c.vectors.Get(query); ok {
		return v, nil
	}
	vecs, err := c.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, errors.New("embedder returned no vector")
	}
	c.vectors.Add(query, vecs[0])
	return vecs[0], nil
}

// cosine returns the cosine similarity of a and b. ok is false when the
// vectors differ in length or either has zero magnitude.
func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

func toSessionEvent(e storage.Event) session.Event {
	return session.Event{
		ID:        e.ID,
		BucketID:  e.BucketID,
		Timestamp: e.Timestamp,
		Duration:  e.Duration,
		App:       e.App,
		Title:     e.Title,
	}
}

func toSessionEvents(events []storage.Event) []session.Event {
	out := make([]session.Event, len(events))
	for i, e := range events {
		out[i] = toSessionEvent(e)
	}
	return out
}

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/runnerr0/awrecall/internal/i18n"
)

var (
	// ErrSearchInFlight is returned when a query is submitted while the
	// session is still waiting on a previous one.
	ErrSearchInFlight = errors.New("search already in flight")

	// ErrSearchDiscarded is returned when the session was cleared while
	// the search was running. Its result is dropped.
	ErrSearchDiscarded = errors.New("search result discarded after clear")
)

// Request is what the controller asks a Searcher for.
type Request struct {
	Query        string
	Mode         Mode
	Limit        int
	Threshold    float64
	TimeFilter   string
	BucketFilter string
}

// Result is a Searcher response. Diagnostic is set when the backend had
// to degrade, for example falling back from vector to text search.
type Result struct {
	Events     []Event
	Diagnostic string
}

// Searcher runs one search. Implementations must be safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, req Request) (Result, error)
}

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the chat history.
type Turn struct {
	Role    Role
	Content string
}

// ResultSet is the outcome of the most recent successful search. It is
// never modified after it is published.
type ResultSet struct {
	Query      string
	Events     []Event
	Stats      Stats
	Diagnostic string
	Elapsed    time.Duration
}

// SearchSummary records the parameters of the last submitted query.
type SearchSummary struct {
	Query        string
	Mode         Mode
	Threshold    float64
	MaxResults   int
	TimeFilter   string
	BucketFilter string
	SubmittedAt  time.Time
}

// State is a snapshot of a session. Slices are copies; the ResultSet is
// shared but immutable.
type State struct {
	History    []Turn
	Results    *ResultSet
	Cursor     Cursor
	Config     Config
	Summary    *SearchSummary
	Busy       bool
	LastError  string
	Generation uint64
}

// Formatter renders the assistant reply for a fresh result set.
type Formatter interface {
	FormatResults(rs *ResultSet, page Page, locale string) string
}

// Options configure a Controller. Zero values select defaults.
type Options struct {
	Config     Config
	PageSize   int
	Translator *i18n.Translator
	Formatter  Formatter
	Logger     *slog.Logger
	Now        func() time.Time
}

// Controller owns the state of one search session. All methods are safe
// for concurrent use; at most one search is in flight at a time.
type Controller struct {
	searcher Searcher
	tr       *i18n.Translator
	format   Formatter
	log      *slog.Logger
	now      func() time.Time
	pageSize int

	mu         sync.Mutex
	history    []Turn
	results    *ResultSet
	cursor     Cursor
	config     Config
	summary    *SearchSummary
	busy       bool
	lastErr    string
	generation uint64
}

// NewController creates an empty session backed by s.
func NewController(s Searcher, opts Options) *Controller {
	c := &Controller{
		searcher: s,
		tr:       opts.Translator,
		format:   opts.Formatter,
		log:      opts.Logger,
		now:      opts.Now,
		pageSize: opts.PageSize,
		config:   opts.Config,
	}
	if c.tr == nil {
		c.tr = i18n.New()
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.format == nil {
		c.format = plainFormatter{tr: c.tr}
	}
	if c.config == (Config{}) {
		c.config = DefaultConfig()
	}
	c.config = c.config.Normalized()
	c.cursor = Cursor{PageIndex: 0, PageSize: c.pageSize}
	return c
}

// SubmitQuery runs query against the Searcher with the current config.
// A blank query is a no-op. On success the result set is replaced, the
// cursor returns to page 0 and an assistant turn is appended. On backend
// failure the session is rolled back to how it was before the call and
// the error is returned and kept as LastError.
func (c *Controller) SubmitQuery(ctx context.Context, query string) (State, error) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	if query == "" {
		defer c.mu.Unlock()
		return c.snapshotLocked(), nil
	}
	if c.busy {
		defer c.mu.Unlock()
		return c.snapshotLocked(), ErrSearchInFlight
	}

	gen := c.generation
	prevLen := len(c.history)
	prevCursor := c.cursor
	prevSummary := c.summary
	cfg := c.config

	c.busy = true
	c.history = append(c.history, Turn{Role: RoleUser, Content: query})
	c.cursor = Cursor{PageIndex: 0, PageSize: c.pageSize}
	started := c.now()
	c.summary = &SearchSummary{
		Query:        query,
		Mode:         cfg.SearchMode,
		Threshold:    cfg.SimilarityThreshold,
		MaxResults:   cfg.MaxResults,
		TimeFilter:   cfg.TimeFilter,
		BucketFilter: cfg.BucketFilter,
		SubmittedAt:  started,
	}
	c.mu.Unlock()

	c.log.Debug("search dispatched", "query", query, "mode", cfg.SearchMode, "limit", cfg.MaxResults)

	res, err := c.searcher.Search(ctx, Request{
		Query:        query,
		Mode:         cfg.SearchMode,
		Limit:        cfg.MaxResults,
		Threshold:    cfg.SimilarityThreshold,
		TimeFilter:   cfg.TimeFilter,
		BucketFilter: cfg.BucketFilter,
	})
	elapsed := c.now().Sub(started)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if c.generation != gen {
		c.log.Debug("search discarded", "query", query)
		return c.snapshotLocked(), ErrSearchDiscarded
	}

	if err != nil {
		c.history = c.history[:prevLen]
		c.cursor = prevCursor
		c.summary = prevSummary
		c.lastErr = err.Error()
		c.log.Warn("search failed", "query", query, "error", err)
		return c.snapshotLocked(), err
	}

	rs := &ResultSet{
		Query:      query,
		Events:     res.Events,
		Stats:      Aggregate(res.Events),
		Diagnostic: res.Diagnostic,
		Elapsed:    elapsed,
	}
	c.results = rs
	c.cursor = Cursor{PageIndex: 0, PageSize: c.pageSize}
	c.lastErr = ""
	c.history = append(c.history, Turn{
		Role:    RoleAssistant,
		Content: c.format.FormatResults(rs, Render(rs.Events, c.cursor), cfg.Locale),
	})
	c.log.Info("search completed", "query", query, "results", len(rs.Events), "elapsed", elapsed)

	return c.snapshotLocked(), nil
}

// Clear empties history and results, resets the cursor and invalidates
// any search still in flight. Config is kept.
func (c *Controller) Clear() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.history = nil
	c.results = nil
	c.summary = nil
	c.lastErr = ""
	c.cursor = Cursor{PageIndex: 0, PageSize: c.pageSize}
	return c.snapshotLocked()
}

// AdvancePage moves the cursor by delta pages. Moves outside
// [0, last page], without a result set or while a search is in flight
// are ignored.
func (c *Controller) AdvancePage(delta int) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.busy && c.results != nil && canAdvance(len(c.results.Events), c.cursor, delta) {
		c.cursor.PageIndex += delta
	}
	return c.snapshotLocked()
}

// UpdateConfig merges u into the session config. Existing results are
// not re-run.
func (c *Controller) UpdateConfig(u ConfigUpdate) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.config.Apply(u)
	if err != nil {
		return c.snapshotLocked(), err
	}
	c.config = next
	return c.snapshotLocked(), nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Busy reports whether a search is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// CurrentPage renders the cursor's page of the current result set.
func (c *Controller) CurrentPage() (Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		return Page{}, false
	}
	return Render(c.results.Events, c.cursor), true
}

func (c *Controller) snapshotLocked() State {
	history := make([]Turn, len(c.history))
	copy(history, c.history)
	return State{
		History:    history,
		Results:    c.results,
		Cursor:     c.cursor,
		Config:     c.config,
		Summary:    c.summary,
		Busy:       c.busy,
		LastError:  c.lastErr,
		Generation: c.generation,
	}
}

// plainFormatter is the fallback reply: a count line and page 0 as text.
type plainFormatter struct {
	tr *i18n.Translator
}

func (f plainFormatter) FormatResults(rs *ResultSet, page Page, locale string) string {
	if len(rs.Events) == 0 {
		return f.tr.T(locale, "no_results")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d\n", f.tr.T(locale, "results_found"), len(rs.Events))
	for _, e := range page.Events {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n",
			FormatTimestamp(e.Timestamp), e.App, e.Title,
			f.tr.Tf(locale, "minutes", FormatMinutes(e.Duration)))
	}
	return strings.TrimRight(b.String(), "\n")
}

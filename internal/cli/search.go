package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/runnerr0/awrecall/internal/render"
	"github.com/runnerr0/awrecall/internal/search"
	"github.com/runnerr0/awrecall/internal/session"
)

// searchResultJSON is the JSON output structure for the search command.
type searchResultJSON struct {
	Query          string            `json:"query"`
	Mode           string            `json:"mode"`
	Total          int               `json:"total"`
	Page           int               `json:"page"`
	TotalPages     int               `json:"total_pages"`
	Remaining      int               `json:"remaining"`
	SearchTimeSecs float64           `json:"search_time_seconds"`
	TotalMinutes   int               `json:"total_minutes"`
	TopApps        []appCountJSON    `json:"top_apps"`
	Diagnostic     string            `json:"diagnostic,omitempty"`
	Events         []searchEventJSON `json:"events"`
}

type searchEventJSON struct {
	ID        int64   `json:"id"`
	BucketID  string  `json:"bucket_id"`
	Timestamp string  `json:"timestamp"`
	Local     string  `json:"local_time"`
	App       string  `json:"app"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Minutes   int     `json:"minutes"`
}

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	cleanup, err := c.deps.load(c.globals)
	defer cleanup()
	if err != nil {
		return err
	}
	return c.executeWithSearcher(context.Background(), newSearcher(&c.deps), args)
}

// executeWithSearcher runs the query through a session controller backed
// by s and prints the requested page.
func (c *SearchCommand) executeWithSearcher(ctx context.Context, s session.Searcher, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search requires a query")
	}
	if c.Page < 1 {
		return fmt.Errorf("invalid --page %d: must be at least 1", c.Page)
	}

	r := render.New(nil)
	if err := checkLocale(r.Translator(), c.Lang); err != nil {
		return err
	}
	if c.Since != "" {
		if _, _, err := search.ResolveTimeFilter(c.Since, c.deps.now()); err != nil {
			return err
		}
	}

	d := &c.deps
	if c.PageSize > 0 {
		d.cfg.Session.PageSize = c.PageSize
	}
	ctrl := newController(d, s, r)

	u, err := c.configUpdate()
	if err != nil {
		return err
	}
	if _, err := ctrl.UpdateConfig(u); err != nil {
		return err
	}

	st, err := ctrl.SubmitQuery(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	for i := 1; i < c.Page; i++ {
		st = ctrl.AdvancePage(1)
	}

	page, _ := ctrl.CurrentPage()
	if page.PageIndex != c.Page-1 {
		return fmt.Errorf("page %d out of range (%d pages)", c.Page, page.TotalPages)
	}

	if c.globals != nil && c.globals.JSON {
		return printSearchJSON(st, page)
	}

	locale := st.Config.Locale
	rs := st.Results
	if len(rs.Events) == 0 {
		fmt.Println(r.Translator().T(locale, "no_results"))
		if rs.Diagnostic != "" {
			fmt.Printf("%s %s\n", r.Translator().T(locale, "search_info"), rs.Diagnostic)
		}
		return nil
	}

	fmt.Println(r.PageHeader(page, locale))
	fmt.Println()
	fmt.Println(r.Table(page.Events, locale))
	fmt.Println()
	fmt.Println(r.StatsPanel(rs, st.Config.SearchMode, render.SearchTime(rs.Elapsed), locale))
	return nil
}

// configUpdate collects the flags that override the session config.
func (c *SearchCommand) configUpdate() (session.ConfigUpdate, error) {
	var u session.ConfigUpdate
	if c.Mode != "" {
		m, err := session.ParseMode(c.Mode)
		if err != nil {
			return u, err
		}
		u.SearchMode = &m
	}
	if c.Threshold != "" {
		v, err := strconv.ParseFloat(c.Threshold, 64)
		if err != nil {
			return u, fmt.Errorf("invalid --threshold %q", c.Threshold)
		}
		u.SimilarityThreshold = &v
	}
	if c.Limit > 0 {
		u.MaxResults = &c.Limit
	}
	if c.Bucket != "" {
		u.BucketFilter = &c.Bucket
	}
	if c.Since != "" {
		u.TimeFilter = &c.Since
	}
	if c.Lang != "" {
		u.Locale = &c.Lang
	}
	return u, nil
}

func printSearchJSON(st session.State, page session.Page) error {
	rs := st.Results
	out := searchResultJSON{
		Query:          rs.Query,
		Mode:           string(st.Config.SearchMode),
		Total:          len(rs.Events),
		Page:           page.Number(),
		TotalPages:     page.TotalPages,
		Remaining:      page.Remaining,
		SearchTimeSecs: rs.Elapsed.Seconds(),
		TotalMinutes:   rs.Stats.TotalMinutes(),
		TopApps:        []appCountJSON{},
		Diagnostic:     rs.Diagnostic,
		Events:         make([]searchEventJSON, len(page.Events)),
	}
	for _, a := range rs.Stats.Top(session.DisplayTopApps) {
		out.TopApps = append(out.TopApps, appCountJSON{App: a.App, Count: int64(a.Count)})
	}
	for i, e := range page.Events {
		out.Events[i] = searchEventJSON{
			ID:        e.ID,
			BucketID:  e.BucketID,
			Timestamp: e.Timestamp,
			Local:     session.FormatTimestamp(e.Timestamp),
			App:       e.App,
			Title:     e.Title,
			Duration:  e.Duration,
			Minutes:   session.FormatMinutes(e.Duration),
		}
	}
	return printJSON(out)
}

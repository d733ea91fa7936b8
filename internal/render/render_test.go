package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/awrecall/internal/session"
)

func sampleEvents() []session.Event {
	return []session.Event{
		{App: "Cursor", Duration: 120, Timestamp: "2025-03-01T10:00:00Z", Title: "main.go"},
		{App: "Cursor", Duration: 60, Timestamp: "2025-03-01T10:05:00Z", Title: "設定 | README"},
		{App: "Chrome", Duration: 30, Timestamp: "not-a-date", Title: "docs"},
	}
}

func TestTable_AlignsColumns(t *testing.T) {
	out := New(nil).Table(sampleEvents(), "en")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)

	assert.True(t, strings.HasPrefix(lines[0], "| Time "))
	width := runewidth.StringWidth(lines[0])
	for _, l := range lines {
		assert.Equal(t, width, runewidth.StringWidth(l), l)
	}

	assert.Contains(t, lines[2], "2025-03-01 15:45")
	assert.Contains(t, lines[2], "2 min")
	assert.Contains(t, lines[3], "設定 / README")
	assert.Contains(t, lines[4], "not-a-date")
	assert.Contains(t, lines[4], "0 min")
}

func TestTable_Japanese(t *testing.T) {
	out := New(nil).Table(sampleEvents()[:1], "ja")
	assert.Contains(t, out, "時刻")
	assert.Contains(t, out, "2 分")
}

func TestTable_TruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("x", 200)
	out := New(nil).Table([]session.Event{{Title: long}}, "en")
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "...")
}

func TestPageHeader(t *testing.T) {
	r := New(nil)
	events := make([]session.Event, 30)

	first := session.Render(events, session.Cursor{PageIndex: 0, PageSize: 25})
	assert.Equal(t, "Page 1 of 2 | Showing events 1-25 of 30 | 5 more events", r.PageHeader(first, "en"))

	last := session.Render(events, session.Cursor{PageIndex: 1, PageSize: 25})
	assert.Equal(t, "Page 2 of 2 | Showing events 26-30 of 30 | Last page", r.PageHeader(last, "en"))

	empty := session.Render(nil, session.Cursor{PageSize: 25})
	assert.Equal(t, "Page 1 of 1 | Showing events 0-0 of 0 | Last page", r.PageHeader(empty, "en"))
}

func TestPageNav(t *testing.T) {
	r := New(nil)
	events := make([]session.Event, 30)

	nav := r.PageNav(session.Render(events, session.Cursor{PageIndex: 0, PageSize: 25}), "en")
	assert.Equal(t, "← Previous (disabled)   Next →", nav)

	nav = r.PageNav(session.Render(events, session.Cursor{PageIndex: 1, PageSize: 25}), "en")
	assert.Equal(t, "← Previous   Next → (disabled)", nav)
}

func TestFormatResults(t *testing.T) {
	r := New(nil)

	out := r.FormatResults(&session.ResultSet{}, session.Page{}, "en")
	assert.Equal(t, "No matching events found.", out)

	events := sampleEvents()
	rs := &session.ResultSet{Events: events}
	out = r.FormatResults(rs, session.Render(events, session.Cursor{PageSize: 2}), "en")
	assert.True(t, strings.HasPrefix(out, "Results Found: 3\n\nPage 1 of 2"))
	assert.Contains(t, out, "main.go")
	assert.NotContains(t, out, "docs")
}

func TestStatsPanel(t *testing.T) {
	events := sampleEvents()
	rs := &session.ResultSet{Events: events, Stats: session.Aggregate(events), Diagnostic: "text search: 3 matches"}

	out := New(nil).StatsPanel(rs, session.ModeText, "0.25s", "en")
	assert.Contains(t, out, "Results Found: 3")
	assert.Contains(t, out, "Search Mode: Text (exact)")
	assert.Contains(t, out, "Search Time: 0.25s")
	assert.Contains(t, out, "Duration: 3 min")
	assert.Contains(t, out, "Top Apps: Cursor (2), Chrome (1)")
	assert.Contains(t, out, "Search Info: text search: 3 matches")
}

func TestStatsPanel_TopFiveOnly(t *testing.T) {
	var events []session.Event
	for _, app := range []string{"a", "b", "c", "d", "e", "f"} {
		events = append(events, session.Event{App: app})
	}
	rs := &session.ResultSet{Events: events, Stats: session.Aggregate(events)}

	out := New(nil).StatsPanel(rs, session.ModeVector, "", "en")
	assert.Contains(t, out, "e (1)")
	assert.NotContains(t, out, "f (1)")
}

func TestSearchTime(t *testing.T) {
	assert.Equal(t, "0.25s", SearchTime(250*time.Millisecond))
	assert.Equal(t, "1.50s", SearchTime(1500*time.Millisecond))
}

func TestSummary(t *testing.T) {
	r := New(nil)
	assert.Empty(t, r.Summary(nil, "en"))

	out := r.Summary(&session.SearchSummary{
		Query: "Cursor", Mode: session.ModeVector, Threshold: 0.7, MaxResults: 500,
		TimeFilter: "this_week", BucketFilter: "all",
	}, "en")
	assert.Equal(t, `Query: "Cursor" | Search Mode: Vector (semantic) | Similarity Threshold: 0.70 | Max Results: 500 | Time Filter: This Week | Bucket Filter: All Buckets`, out)
}

func TestDashboard(t *testing.T) {
	r := New(nil)
	d := session.Dashboard{
		TotalEvents:  12345,
		TotalBuckets: 2,
		Buckets:      []session.BucketCount{{ID: "window", Count: 12000}, {ID: "afk", Count: 345}},
		LastUpdated:  time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	out := r.Dashboard(d, "en")
	assert.Contains(t, out, "Total Events: 12,345")
	assert.Contains(t, out, "Total Buckets: 2")
	assert.Contains(t, out, "window: 12,000")
	assert.Contains(t, out, "Last Updated: 2025-03-01 09:30:00")

	out = r.Dashboard(session.Dashboard{Err: errors.New("locked")}, "en")
	assert.Contains(t, out, "Error loading stats: locked")
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,000", FormatCount(1000))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "-1,000", FormatCount(-1000))
}

func TestTranscript(t *testing.T) {
	r := New(nil)
	events := sampleEvents()
	rs := &session.ResultSet{Events: events, Stats: session.Aggregate(events)}
	entries := []session.Entry{
		{Role: session.RoleUser, Content: "Cursor"},
		{Role: session.RoleAssistant, Content: "old reply"},
		{Role: session.RoleUser, Content: "Chrome"},
		{
			Role: session.RoleAssistant, Content: "ignored", Live: true, Results: rs,
			Page: session.Render(events, session.Cursor{PageSize: 25}), SearchTime: 500 * time.Millisecond,
		},
	}

	out := r.Transcript(entries, session.ModeText, "en")
	assert.Contains(t, out, "You: Cursor")
	assert.Contains(t, out, "Recall: old reply")
	assert.NotContains(t, out, "ignored")
	assert.Contains(t, out, "Search Time: 0.50s")
	assert.Equal(t, 1, strings.Count(out, "Search Time"))
}

package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/awrecall/internal/render"
	"github.com/runnerr0/awrecall/internal/session"
)

type stubSearcher struct {
	events []session.Event
	err    error
	calls  []session.Request
}

func (s *stubSearcher) Search(_ context.Context, req session.Request) (session.Result, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return session.Result{}, s.err
	}
	return session.Result{Events: s.events, Diagnostic: "stub"}, nil
}

type stubCatalog struct{}

func (stubCatalog) BucketIDs(context.Context) ([]string, error) { return []string{"window"}, nil }
func (stubCatalog) CountEvents(context.Context, string) (int64, error) {
	return 42, nil
}

func events(n int) []session.Event {
	out := make([]session.Event, n)
	for i := range out {
		out[i] = session.Event{App: "Cursor", Title: "main.go", Duration: 60, Timestamp: "2025-03-01T10:00:00Z"}
	}
	return out
}

func newModel(s session.Searcher) (Model, *session.Controller) {
	ctrl := session.NewController(s, session.Options{PageSize: 2})
	r := render.New(nil)
	return New(context.Background(), ctrl, r, stubCatalog{}), ctrl
}

// drain runs cmd and any batched commands, feeding resulting messages
// back into the model. Timer-driven spinner ticks are not run.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case nil:
	default:
		next, follow := m.Update(msg)
		m = next.(Model)
		if _, ok := msg.(searchDoneMsg); ok {
			m = drain(t, m, follow)
		}
	}
	return m
}

func typeLine(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestSubmitRunsSearch(t *testing.T) {
	s := &stubSearcher{events: events(3)}
	m, ctrl := newModel(s)

	m, cmd := typeLine(t, m, "Cursor")
	assert.True(t, m.waiting)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Searching...")

	m = drain(t, m, cmd)
	assert.False(t, m.waiting)
	require.Len(t, s.calls, 1)
	assert.Equal(t, "Cursor", s.calls[0].Query)

	st := ctrl.Snapshot()
	assert.Len(t, st.History, 2)
	view := m.View()
	assert.Contains(t, view, "Page 1 of 2")
	assert.Contains(t, view, "Top Apps: Cursor (3)")
	assert.Contains(t, view, "Total Events: 42")
}

func TestSubmitWhileWaitingShowsBusy(t *testing.T) {
	s := &stubSearcher{events: events(1)}
	m, _ := newModel(s)

	m, _ = typeLine(t, m, "first")
	m, cmd := typeLine(t, m, "second")
	assert.Nil(t, cmd)
	assert.Equal(t, "A search is already running for this session.", m.notice)
}

func TestSearchErrorIsShown(t *testing.T) {
	s := &stubSearcher{err: errors.New("backend unreachable")}
	m, ctrl := newModel(s)

	m, cmd := typeLine(t, m, "Cursor")
	m = drain(t, m, cmd)

	assert.Equal(t, "Search failed: backend unreachable", m.notice)
	assert.True(t, m.failed)
	assert.Empty(t, ctrl.Snapshot().History)
}

func TestBlankLineIsIgnored(t *testing.T) {
	s := &stubSearcher{}
	m, _ := newModel(s)

	m, cmd := typeLine(t, m, "   ")
	assert.Nil(t, cmd)
	assert.False(t, m.waiting)
	assert.Empty(t, s.calls)
}

func TestPagingCommands(t *testing.T) {
	m, ctrl := newModel(&stubSearcher{events: events(3)})
	m, cmd := typeLine(t, m, "Cursor")
	m = drain(t, m, cmd)

	m, _ = typeLine(t, m, "/next")
	assert.Equal(t, 1, ctrl.Snapshot().Cursor.PageIndex)
	m, _ = typeLine(t, m, "/next")
	assert.Equal(t, 1, ctrl.Snapshot().Cursor.PageIndex)
	m, _ = typeLine(t, m, "/prev")
	assert.Equal(t, 0, ctrl.Snapshot().Cursor.PageIndex)

	_, _ = typeLine(t, m, "/clear")
	assert.Empty(t, ctrl.Snapshot().History)
}

func TestConfigCommands(t *testing.T) {
	m, ctrl := newModel(&stubSearcher{})

	m, _ = typeLine(t, m, "/mode text")
	m, _ = typeLine(t, m, "/threshold 0.35")
	m, _ = typeLine(t, m, "/max 5")
	m, _ = typeLine(t, m, "/time yesterday")
	m, _ = typeLine(t, m, "/bucket aw-watcher-window_laptop")
	m, _ = typeLine(t, m, "/lang ja")

	cfg := ctrl.Snapshot().Config
	assert.Equal(t, session.ModeText, cfg.SearchMode)
	assert.Equal(t, 0.35, cfg.SimilarityThreshold)
	assert.Equal(t, session.MinMaxResults, cfg.MaxResults)
	assert.Equal(t, "yesterday", cfg.TimeFilter)
	assert.Equal(t, "aw-watcher-window_laptop", cfg.BucketFilter)
	assert.Equal(t, "ja", cfg.Locale)
	assert.Empty(t, m.notice)
	assert.Contains(t, m.View(), "ActivityWatch リコール")
}

func TestInvalidCommandValues(t *testing.T) {
	m, ctrl := newModel(&stubSearcher{})
	before := ctrl.Snapshot().Config

	for _, line := range []string{"/mode fuzzy", "/threshold high", "/max lots", "/time someday", "/lang fr", "/bucket", "/example 9"} {
		var cmd tea.Cmd
		m, cmd = typeLine(t, m, line)
		assert.Nil(t, cmd, line)
		assert.True(t, m.failed, line)
		assert.Contains(t, m.notice, "Invalid value for", line)
	}
	assert.Equal(t, before, ctrl.Snapshot().Config)

	m, _ = typeLine(t, m, "/frobnicate")
	assert.Equal(t, "Unknown command: /frobnicate", m.notice)
}

func TestExampleCommandSubmitsQuery(t *testing.T) {
	s := &stubSearcher{}
	m, _ := newModel(s)

	m, cmd := typeLine(t, m, "/example 3")
	drain(t, m, cmd)

	require.Len(t, s.calls, 1)
	assert.Equal(t, "What apps do I use most?", s.calls[0].Query)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(&stubSearcher{})

	m, cmd := typeLine(t, m, "/quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	m2, _ := newModel(&stubSearcher{})
	_, cmd = m2.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestInitLoadsDashboard(t *testing.T) {
	m, _ := newModel(&stubSearcher{})
	m = drain(t, m, m.Init())

	require.NotNil(t, m.dash)
	assert.Equal(t, int64(42), m.dash.TotalEvents)
}

func newSessionModel(t *testing.T, s session.Searcher) (Model, *session.Manager) {
	t.Helper()
	mgr, err := session.NewManager(4, func() *session.Controller {
		return session.NewController(s, session.Options{PageSize: 2})
	})
	require.NoError(t, err)
	id, ctrl := mgr.Create()
	return New(context.Background(), ctrl, render.New(nil), nil).WithSessions(mgr, id), mgr
}

func TestNewSessionKeepsConfig(t *testing.T) {
	s := &stubSearcher{events: events(3)}
	m, mgr := newSessionModel(t, s)
	first := m.id

	m, cmd := typeLine(t, m, "Cursor")
	m = drain(t, m, cmd)
	m, _ = typeLine(t, m, "/mode text")
	m, _ = typeLine(t, m, "/new")

	assert.Equal(t, 2, mgr.Len())
	assert.NotEqual(t, first, m.id)
	assert.Equal(t, "Started session "+m.id[:8], m.notice)

	st := m.ctrl.Snapshot()
	assert.Empty(t, st.History)
	assert.Equal(t, session.ModeText, st.Config.SearchMode)

	old, ok := mgr.Get(first)
	require.True(t, ok)
	assert.Len(t, old.Snapshot().History, 2)
}

func TestListAndResumeSessions(t *testing.T) {
	s := &stubSearcher{events: events(1)}
	m, _ := newSessionModel(t, s)
	first := m.id

	m, cmd := typeLine(t, m, "Cursor")
	m = drain(t, m, cmd)
	m, _ = typeLine(t, m, "/new")
	second := m.id

	m, _ = typeLine(t, m, "/sessions")
	assert.Contains(t, m.notice, first[:8])
	assert.Contains(t, m.notice, second[:8]+"*")

	m, _ = typeLine(t, m, "/resume "+first[:8])
	assert.Equal(t, first, m.id)
	assert.Equal(t, "Resumed session "+first[:8], m.notice)
	assert.Len(t, m.ctrl.Snapshot().History, 2)

	m, _ = typeLine(t, m, "/resume zzzz")
	assert.True(t, m.failed)
	assert.Equal(t, first, m.id)
}

func TestSessionCommandsNeedManager(t *testing.T) {
	m, _ := newModel(&stubSearcher{})

	m, _ = typeLine(t, m, "/new")
	assert.True(t, m.failed)
	assert.Equal(t, "Unknown command: /new", m.notice)
}

func TestNewSessionWhileWaitingShowsBusy(t *testing.T) {
	m, mgr := newSessionModel(t, &stubSearcher{events: events(1)})

	m, _ = typeLine(t, m, "Cursor")
	m, _ = typeLine(t, m, "/new")
	assert.Equal(t, "A search is already running for this session.", m.notice)
	assert.Equal(t, 1, mgr.Len())
}

func TestEmptyViewShowsSearchTips(t *testing.T) {
	m, ctrl := newModel(&stubSearcher{events: events(1)})

	view := m.View()
	assert.Contains(t, view, "Search Tips")
	assert.Contains(t, view, `Combine terms: "Cursor yesterday", "WhatsApp this week"`)

	_, err := ctrl.UpdateConfig(session.ConfigUpdate{Locale: ptr("ja")})
	require.NoError(t, err)
	assert.Contains(t, m.View(), "検索のヒント")

	m, cmd := typeLine(t, m, "Cursor")
	m = drain(t, m, cmd)
	assert.NotContains(t, m.View(), "検索のヒント")
}

func ptr[T any](v T) *T { return &v }

func TestCloseSession(t *testing.T) {
	m, mgr := newSessionModel(t, &stubSearcher{events: events(1)})
	first := m.id
	m, _ = typeLine(t, m, "/new")
	second := m.id

	m, _ = typeLine(t, m, "/close "+second[:8])
	assert.True(t, m.failed)
	assert.Equal(t, 2, mgr.Len())

	m, _ = typeLine(t, m, "/close zzzz")
	assert.True(t, m.failed)

	m, _ = typeLine(t, m, "/close "+first[:8])
	assert.False(t, m.failed)
	assert.Equal(t, "Closed session "+first[:8], m.notice)
	assert.Equal(t, []string{second}, mgr.IDs())
	assert.Equal(t, second, m.id)
}

func TestOpenSessionDropsRejectedConfig(t *testing.T) {
	m, mgr := newSessionModel(t, &stubSearcher{})

	cfg := m.ctrl.Snapshot().Config
	cfg.SearchMode = "fuzzy"
	_, ctrl, err := m.openSession(cfg)
	assert.Error(t, err)
	assert.Nil(t, ctrl)
	assert.Equal(t, 1, mgr.Len())
	assert.Equal(t, []string{m.id}, mgr.IDs())
}

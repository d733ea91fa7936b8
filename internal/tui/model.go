// Package tui is the interactive chat console: a bubbletea program that
// drives one search session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runnerr0/awrecall/internal/render"
	"github.com/runnerr0/awrecall/internal/search"
	"github.com/runnerr0/awrecall/internal/session"
)

type searchDoneMsg struct {
	err error
}

type dashboardMsg struct {
	dashboard session.Dashboard
}

// Model is the bubbletea model of the console.
type Model struct {
	ctx      context.Context
	ctrl     *session.Controller
	render   *render.Renderer
	catalog  session.Catalog
	sessions *session.Manager
	id       string
	now      func() time.Time
	input    textinput.Model
	spinner  spinner.Model
	dash     *session.Dashboard
	notice   string
	failed   bool
	waiting  bool
	quitting bool
}

// New creates a console model. catalog may be nil to hide the dashboard.
func New(ctx context.Context, ctrl *session.Controller, r *render.Renderer, catalog session.Catalog) Model {
	locale := ctrl.Snapshot().Config.Locale

	in := textinput.New()
	in.Placeholder = r.Translator().T(locale, "search_placeholder")
	in.Prompt = "> "
	in.CharLimit = 500
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		render:  r,
		catalog: catalog,
		now:     time.Now,
		input:   in,
		spinner: sp,
	}
}

// WithSessions lets the console start and resume sessions held by mgr.
// id names the session ctrl belongs to.
func (m Model) WithSessions(mgr *session.Manager, id string) Model {
	m.sessions = mgr
	m.id = id
	return m
}

// Run starts the console on the terminal and blocks until it exits.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadDashboard())
}

func (m Model) loadDashboard() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	ctx, cat, now := m.ctx, m.catalog, m.now
	return func() tea.Msg {
		return dashboardMsg{dashboard: session.LoadDashboard(ctx, cat, now())}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			return m.handleLine(line)
		}

	case searchDoneMsg:
		m.waiting = false
		switch {
		case msg.err == nil, errors.Is(msg.err, session.ErrSearchDiscarded):
		case errors.Is(msg.err, session.ErrSearchInFlight):
			m.setNotice(m.t("search_busy"), false)
		default:
			m.setNotice(m.render.Translator().Tf(m.locale(), "search_error", msg.err.Error()), true)
		}
		return m, m.loadDashboard()

	case dashboardMsg:
		d := msg.dashboard
		m.dash = &d
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleLine(line string) (tea.Model, tea.Cmd) {
	m.setNotice("", false)
	if line == "" {
		return m, nil
	}
	if strings.HasPrefix(line, "/") {
		return m.handleCommand(line)
	}
	return m.submit(line)
}

func (m Model) submit(query string) (tea.Model, tea.Cmd) {
	if m.waiting || m.ctrl.Busy() {
		m.setNotice(m.t("search_busy"), false)
		return m, nil
	}
	m.waiting = true
	ctx, ctrl := m.ctx, m.ctrl
	run := func() tea.Msg {
		_, err := ctrl.SubmitQuery(ctx, query)
		return searchDoneMsg{err: err}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) handleCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	name, arg := fields[0], ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}
	tr := m.render.Translator()

	var u session.ConfigUpdate
	switch name {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "/help":
		m.setNotice(m.t("console_help"), false)
		return m, nil
	case "/next":
		m.ctrl.AdvancePage(1)
		return m, nil
	case "/prev":
		m.ctrl.AdvancePage(-1)
		return m, nil
	case "/clear":
		m.ctrl.Clear()
		return m, nil
	case "/new", "/sessions", "/resume", "/close":
		return m.handleSession(name, arg)
	case "/example":
		examples := tr.List(m.locale(), "example_queries_list")
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(examples) {
			return m.invalid(name, arg)
		}
		return m.submit(examples[n-1])
	case "/mode":
		mode, err := session.ParseMode(arg)
		if err != nil {
			return m.invalid(name, arg)
		}
		u.SearchMode = &mode
	case "/threshold":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return m.invalid(name, arg)
		}
		u.SimilarityThreshold = &v
	case "/max":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return m.invalid(name, arg)
		}
		u.MaxResults = &v
	case "/time":
		if !contains(search.TimeFilters, arg) {
			return m.invalid(name, arg)
		}
		u.TimeFilter = &arg
	case "/bucket":
		if arg == "" {
			return m.invalid(name, arg)
		}
		u.BucketFilter = &arg
	case "/lang":
		if !tr.Has(arg) {
			return m.invalid(name, arg)
		}
		u.Locale = &arg
	default:
		m.setNotice(tr.Tf(m.locale(), "unknown_command", name), true)
		return m, nil
	}

	if _, err := m.ctrl.UpdateConfig(u); err != nil {
		return m.invalid(name, arg)
	}
	if u.Locale != nil {
		m.input.Placeholder = tr.T(*u.Locale, "search_placeholder")
	}
	return m, nil
}

// handleSession starts, lists, resumes or closes sessions. A new session keeps
// the current config.
func (m Model) handleSession(name, arg string) (tea.Model, tea.Cmd) {
	tr := m.render.Translator()
	if m.sessions == nil {
		m.setNotice(tr.Tf(m.locale(), "unknown_command", name), true)
		return m, nil
	}
	if name != "/sessions" && m.waiting {
		m.setNotice(m.t("search_busy"), false)
		return m, nil
	}

	switch name {
	case "/new":
		id, ctrl, err := m.openSession(m.ctrl.Snapshot().Config)
		if err != nil {
			return m.invalid(name, arg)
		}
		m.ctrl, m.id = ctrl, id
		m.setNotice(tr.Tf(m.locale(), "session_started", shortID(id)), false)

	case "/sessions":
		ids := m.sessions.IDs()
		labels := make([]string, len(ids))
		for i, id := range ids {
			labels[i] = shortID(id)
			if id == m.id {
				labels[i] += "*"
			}
		}
		m.setNotice(tr.Tf(m.locale(), "sessions_list", strings.Join(labels, ", ")), false)

	case "/resume":
		match, ok := m.matchSession(arg)
		if !ok {
			return m.invalid(name, arg)
		}
		ctrl, ok := m.sessions.Get(match)
		if !ok {
			return m.invalid(name, arg)
		}
		m.ctrl, m.id = ctrl, match
		m.input.Placeholder = tr.T(m.locale(), "search_placeholder")
		m.setNotice(tr.Tf(m.locale(), "session_resumed", shortID(match)), false)

	case "/close":
		match, ok := m.matchSession(arg)
		if !ok || match == m.id {
			return m.invalid(name, arg)
		}
		m.sessions.Remove(match)
		m.setNotice(tr.Tf(m.locale(), "session_closed", shortID(match)), false)
	}
	return m, nil
}

// openSession creates a session carrying cfg. The session is dropped
// again if cfg is rejected.
func (m Model) openSession(cfg session.Config) (string, *session.Controller, error) {
	id, ctrl := m.sessions.Create()
	_, err := ctrl.UpdateConfig(session.ConfigUpdate{
		SearchMode:          &cfg.SearchMode,
		SimilarityThreshold: &cfg.SimilarityThreshold,
		MaxResults:          &cfg.MaxResults,
		TimeFilter:          &cfg.TimeFilter,
		BucketFilter:        &cfg.BucketFilter,
		Locale:              &cfg.Locale,
	})
	if err != nil {
		m.sessions.Remove(id)
		return "", nil, err
	}
	return id, ctrl, nil
}

// matchSession resolves a unique session ID prefix.
func (m Model) matchSession(prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	var match string
	for _, id := range m.sessions.IDs() {
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", false
			}
			match = id
		}
	}
	return match, match != ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m Model) invalid(name, arg string) (tea.Model, tea.Cmd) {
	m.setNotice(m.render.Translator().Tf(m.locale(), "invalid_value", name, arg), true)
	return m, nil
}

func (m *Model) setNotice(s string, failed bool) {
	m.notice = s
	m.failed = failed
}

func (m Model) locale() string {
	return m.ctrl.Snapshot().Config.Locale
}

func (m Model) t(key string) string {
	return m.render.Translator().T(m.locale(), key)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.ctrl.Snapshot()
	locale := st.Config.Locale
	tr := m.render.Translator()

	var b strings.Builder
	b.WriteString(titleStyle.Render(tr.T(locale, "title")))
	b.WriteString("\n")
	if m.dash != nil {
		b.WriteString(panelStyle.Render(m.render.Dashboard(*m.dash, locale)))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s: %s | %s: %.2f | %s: %d | %s: %s | %s: %s\n\n",
		tr.T(locale, "search_mode_label"), m.render.ModeLabel(st.Config.SearchMode, locale),
		tr.T(locale, "similarity_threshold"), st.Config.SimilarityThreshold,
		tr.T(locale, "max_results"), st.Config.MaxResults,
		tr.T(locale, "time_filter"), tr.T(locale, st.Config.TimeFilter),
		tr.T(locale, "bucket_filter"), st.Config.BucketFilter)

	if len(st.History) == 0 {
		b.WriteString(tr.T(locale, "example_queries") + "\n")
		for i, q := range tr.List(locale, "example_queries_list") {
			fmt.Fprintf(&b, "  /example %d  %s\n", i+1, q)
		}
		b.WriteString("\n" + tr.T(locale, "search_tips") + "\n")
		for _, tip := range tr.List(locale, "search_tips_list") {
			b.WriteString(helpStyle.Render("  - "+tip) + "\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.render.Transcript(m.ctrl.Transcript(), st.Config.SearchMode, locale))
		b.WriteString("\n\n")
		if s := m.render.Summary(st.Summary, locale); s != "" {
			b.WriteString(helpStyle.Render(s) + "\n")
		}
	}

	if m.waiting {
		b.WriteString(m.spinner.View() + " " + tr.T(locale, "loading") + "\n")
	}
	if m.notice != "" {
		style := noticeStyle
		if m.failed {
			style = errorStyle
		}
		b.WriteString(style.Render(m.notice) + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(helpStyle.Render(tr.T(locale, "console_help")))
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

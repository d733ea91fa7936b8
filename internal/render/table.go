// Package render turns session state into text for the terminal: event
// tables, page headers, statistics and the store dashboard.
package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/runnerr0/awrecall/internal/i18n"
	"github.com/runnerr0/awrecall/internal/session"
)

// MaxTitleWidth is the display width titles are truncated to.
const MaxTitleWidth = 60

// Renderer formats session data using one translator.
type Renderer struct {
	tr *i18n.Translator
}

// New creates a renderer. A nil translator uses the built-in tables.
func New(tr *i18n.Translator) *Renderer {
	if tr == nil {
		tr = i18n.New()
	}
	return &Renderer{tr: tr}
}

// Translator returns the translator labels come from.
func (r *Renderer) Translator() *i18n.Translator { return r.tr }

// Table renders events as a markdown table with columns padded to equal
// display width, so wide (CJK) characters line up.
func (r *Renderer) Table(events []session.Event, locale string) string {
	header := []string{
		r.tr.T(locale, "time"),
		r.tr.T(locale, "app"),
		r.tr.T(locale, "title_col"),
		r.tr.T(locale, "duration"),
	}
	rows := make([][]string, len(events))
	for i, e := range events {
		rows[i] = []string{
			session.FormatTimestamp(e.Timestamp),
			cell(e.App),
			runewidth.Truncate(cell(e.Title), MaxTitleWidth, "..."),
			r.tr.Tf(locale, "minutes", session.FormatMinutes(e.Duration)),
		}
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow(&b, header, widths)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(&b, sep, widths)
	for _, row := range rows {
		writeRow(&b, row, widths)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for i, c := range cells {
		b.WriteString(" ")
		b.WriteString(runewidth.FillRight(c, widths[i]))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// cell makes a value safe for a single markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// PageHeader describes the position of p within its result set.
func (r *Renderer) PageHeader(p session.Page, locale string) string {
	first := p.Start + 1
	if p.Total == 0 {
		first = 0
	}
	head := fmt.Sprintf("%s %d %s %d | %s %d-%d %s %d",
		r.tr.T(locale, "page"), p.Number(), r.tr.T(locale, "of"), p.TotalPages,
		r.tr.T(locale, "showing_events"), first, p.End, r.tr.T(locale, "of"), p.Total)

	if p.HasNext() {
		return head + fmt.Sprintf(" | %d %s", p.Remaining, r.tr.T(locale, "more_events"))
	}
	return head + " | " + r.tr.T(locale, "last_page")
}

// PageNav renders the previous/next controls, marking unavailable ones.
func (r *Renderer) PageNav(p session.Page, locale string) string {
	prev := "← " + r.tr.T(locale, "previous")
	next := r.tr.T(locale, "next") + " →"
	if !p.HasPrev() {
		prev += " " + r.tr.T(locale, "disabled")
	}
	if !p.HasNext() {
		next += " " + r.tr.T(locale, "disabled")
	}
	return prev + "   " + next
}

// FormatResults implements session.Formatter: the assistant reply for a
// fresh result set is the no-results notice or a count plus page 0.
func (r *Renderer) FormatResults(rs *session.ResultSet, page session.Page, locale string) string {
	if len(rs.Events) == 0 {
		return r.tr.T(locale, "no_results")
	}
	return fmt.Sprintf("%s: %d\n\n%s\n\n%s",
		r.tr.T(locale, "results_found"), len(rs.Events),
		r.PageHeader(page, locale),
		r.Table(page.Events, locale))
}

var _ session.Formatter = (*Renderer)(nil)

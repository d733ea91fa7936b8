package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/awrecall/internal/session"
)

// ModeLabel is the localized name of a search mode.
func (r *Renderer) ModeLabel(m session.Mode, locale string) string {
	if m == session.ModeText {
		return r.tr.T(locale, "text_search")
	}
	return r.tr.T(locale, "vector_search")
}

// SearchTime formats an elapsed search duration as seconds.
func SearchTime(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// StatsPanel summarizes a result set. searchTime is shown verbatim and
// left blank for frozen turns.
func (r *Renderer) StatsPanel(rs *session.ResultSet, mode session.Mode, searchTime, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.tr.T(locale, "search_statistics"))
	fmt.Fprintf(&b, "  %s: %d\n", r.tr.T(locale, "results_found"), len(rs.Events))
	fmt.Fprintf(&b, "  %s: %s\n", r.tr.T(locale, "search_mode"), r.ModeLabel(mode, locale))
	fmt.Fprintf(&b, "  %s: %s\n", r.tr.T(locale, "search_time"), searchTime)
	fmt.Fprintf(&b, "  %s: %s\n", r.tr.T(locale, "duration"), r.tr.Tf(locale, "minutes", rs.Stats.TotalMinutes()))

	top := rs.Stats.Top(session.DisplayTopApps)
	if len(top) > 0 {
		apps := make([]string, len(top))
		for i, a := range top {
			apps[i] = fmt.Sprintf("%s (%d)", a.App, a.Count)
		}
		fmt.Fprintf(&b, "  %s: %s\n", r.tr.T(locale, "top_apps"), strings.Join(apps, ", "))
	}
	if rs.Diagnostic != "" {
		fmt.Fprintf(&b, "  %s %s\n", r.tr.T(locale, "search_info"), rs.Diagnostic)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Summary renders the parameters of the last submitted query.
func (r *Renderer) Summary(s *session.SearchSummary, locale string) string {
	if s == nil {
		return ""
	}
	bucket := s.BucketFilter
	if bucket == "" || bucket == "all" {
		bucket = r.tr.T(locale, "all_buckets")
	}
	return fmt.Sprintf("%s: %q | %s: %s | %s: %.2f | %s: %d | %s: %s | %s: %s",
		r.tr.T(locale, "query"), s.Query,
		r.tr.T(locale, "search_mode"), r.ModeLabel(s.Mode, locale),
		r.tr.T(locale, "similarity_threshold"), s.Threshold,
		r.tr.T(locale, "max_results"), s.MaxResults,
		r.tr.T(locale, "time_filter"), r.tr.T(locale, s.TimeFilter),
		r.tr.T(locale, "bucket_filter"), bucket)
}

// Dashboard renders store totals, or the error that prevented loading them.
func (r *Renderer) Dashboard(d session.Dashboard, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.tr.T(locale, "database_stats"))
	if d.Err != nil {
		fmt.Fprintf(&b, "  %s", r.tr.Tf(locale, "stats_error", d.Err.Error()))
		return b.String()
	}
	fmt.Fprintf(&b, "  %s: %s\n", r.tr.T(locale, "total_events"), FormatCount(d.TotalEvents))
	fmt.Fprintf(&b, "  %s: %d\n", r.tr.T(locale, "total_buckets"), d.TotalBuckets)
	for _, bc := range d.Buckets {
		fmt.Fprintf(&b, "    %s: %s\n", bc.ID, FormatCount(bc.Count))
	}
	fmt.Fprintf(&b, "  %s: %s", r.tr.T(locale, "last_updated"), d.LastUpdated.Format("2006-01-02 15:04:05"))
	return b.String()
}

// FormatCount groups thousands with commas.
func FormatCount(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// Transcript renders a full chat history. The live entry is expanded to
// its current page with statistics; frozen entries show stored content.
func (r *Renderer) Transcript(entries []session.Entry, mode session.Mode, locale string) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := r.tr.T(locale, "role_user")
		if e.Role == session.RoleAssistant {
			label = r.tr.T(locale, "role_assistant")
		}
		b.WriteString(label + ": ")

		if !e.Live {
			b.WriteString(e.Content)
			continue
		}
		fmt.Fprintf(&b, "%s\n\n%s\n\n%s\n%s",
			r.PageHeader(e.Page, locale),
			r.Table(e.Page.Events, locale),
			r.PageNav(e.Page, locale),
			r.StatsPanel(e.Results, mode, SearchTime(e.SearchTime), locale))
	}
	return b.String()
}

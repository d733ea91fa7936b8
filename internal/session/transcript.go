package session

import "time"

// Entry is one turn of the transcript as it should be displayed.
//
// Only the live entry (the last assistant turn while a non-empty result
// set exists) carries a page and a search time. Earlier assistant turns
// are frozen and show their stored content.
type Entry struct {
	Role       Role
	Content    string
	Live       bool
	Results    *ResultSet
	Page       Page
	SearchTime time.Duration
}

// Transcript returns the history with the live turn expanded to the
// cursor's current page.
func (c *Controller) Transcript() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, len(c.history))
	last := len(c.history) - 1
	for i, t := range c.history {
		entries[i] = Entry{Role: t.Role, Content: t.Content}
		if i == last && t.Role == RoleAssistant && c.results != nil && len(c.results.Events) > 0 {
			entries[i].Live = true
			entries[i].Results = c.results
			entries[i].Page = Render(c.results.Events, c.cursor)
			entries[i].SearchTime = c.results.Elapsed
		}
	}
	return entries
}

package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT_ActiveLocale(t *testing.T) {
	tr := New()
	assert.Equal(t, "検索結果", tr.T("ja", "results_found"))
	assert.Equal(t, "Results Found", tr.T("en", "results_found"))
}

func TestT_FallsBackToDefaultLocaleForMissingKey(t *testing.T) {
	tr := New()
	// The Japanese table has no console_help entry.
	assert.Equal(t, tr.T("en", "console_help"), tr.T("ja", "console_help"))
}

func TestT_FallsBackToDefaultLocaleForUnknownLocale(t *testing.T) {
	tr := New()
	assert.Equal(t, "Top Apps", tr.T("fr", "top_apps"))
	assert.False(t, tr.Has("fr"))
}

func TestT_FallsBackToKey(t *testing.T) {
	tr := New()
	assert.Equal(t, "no_such_key", tr.T("ja", "no_such_key"))
	assert.Equal(t, "no_such_key", tr.T("fr", "no_such_key"))
}

func TestTf(t *testing.T) {
	tr := New()
	assert.Equal(t, "12 min", tr.Tf("en", "minutes", 12))
	assert.Equal(t, "12 分", tr.Tf("ja", "minutes", 12))
}

func TestList(t *testing.T) {
	tr := New()
	assert.Len(t, tr.List("en", "example_queries_list"), 3)
	assert.Equal(t, "最も使用しているアプリは？", tr.List("ja", "example_queries_list")[2])
	assert.Len(t, tr.List("fr", "search_tips_list"), 4)
	assert.Nil(t, tr.List("en", "missing"))

	l := tr.List("en", "example_queries_list")
	l[0] = "mutated"
	assert.NotEqual(t, "mutated", tr.List("en", "example_queries_list")[0])
}

func TestLocales(t *testing.T) {
	assert.Equal(t, []string{"en", "ja"}, New().Locales())
}

func TestTablesHaveSameKeys(t *testing.T) {
	for key := range japanese {
		_, ok := english[key]
		assert.True(t, ok, "english table missing %q", key)
	}
}

func TestSessionMessages(t *testing.T) {
	tr := New()
	assert.Equal(t, "Started session 1a2b3c4d", tr.Tf("en", "session_started", "1a2b3c4d"))
	assert.Equal(t, "セッション 1a2b3c4d を再開しました", tr.Tf("ja", "session_resumed", "1a2b3c4d"))
}

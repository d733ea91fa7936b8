// Package i18n holds the console's string tables and the lookup fallback
// chain: active locale, then DefaultLocale, then the raw key.
package i18n

import (
	"fmt"
	"sort"
)

// DefaultLocale is consulted when the active locale lacks a table or a key.
const DefaultLocale = "en"

// Translator resolves message keys against per-locale tables.
type Translator struct {
	tables map[string]map[string]string
	lists  map[string]map[string][]string
}

// New returns a Translator loaded with the built-in English and Japanese tables.
func New() *Translator {
	return &Translator{
		tables: map[string]map[string]string{
			"en": english,
			"ja": japanese,
		},
		lists: map[string]map[string][]string{
			"en": englishLists,
			"ja": japaneseLists,
		},
	}
}

// T returns the message for key in locale.
func (tr *Translator) T(locale, key string) string {
	if table, ok := tr.tables[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := tr.tables[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Tf formats the message for key with args.
func (tr *Translator) Tf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(tr.T(locale, key), args...)
}

// List returns a list-valued entry such as the example queries. Missing
// entries fall back like T; an unknown key yields nil.
func (tr *Translator) List(locale, key string) []string {
	if lists, ok := tr.lists[locale]; ok {
		if l, ok := lists[key]; ok {
			return append([]string(nil), l...)
		}
	}
	if l, ok := tr.lists[DefaultLocale][key]; ok {
		return append([]string(nil), l...)
	}
	return nil
}

// Has reports whether locale has its own table.
func (tr *Translator) Has(locale string) bool {
	_, ok := tr.tables[locale]
	return ok
}

// Locales returns the available locale codes, sorted.
func (tr *Translator) Locales() []string {
	out := make([]string, 0, len(tr.tables))
	for l := range tr.tables {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

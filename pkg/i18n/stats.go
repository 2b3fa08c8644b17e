package i18n

import (
	"sort"
	"sync"
)

// TranslationStats counts the messages looked up during rendering and
// remembers which ones had no translation. It is safe for concurrent use.
type TranslationStats struct {
	mu      sync.Mutex
	used    map[string]map[string]int      // locale -> msgid -> lookups
	missing map[string]map[string]struct{} // locale -> msgid
}

// NewTranslationStats returns empty statistics.
func NewTranslationStats() *TranslationStats {
	return &TranslationStats{
		used:    make(map[string]map[string]int),
		missing: make(map[string]map[string]struct{}),
	}
}

// Tick records one lookup of msgid for locale. Untranslated messages are only
// reported missing for non-default locales, where a translation is expected.
func (s *TranslationStats) Tick(msgid string, found bool, locale, defaultLocale string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used, ok := s.used[locale]
	if !ok {
		used = make(map[string]int)
		s.used[locale] = used
	}
	used[msgid]++

	if found || locale == defaultLocale {
		return
	}
	missing, ok := s.missing[locale]
	if !ok {
		missing = make(map[string]struct{})
		s.missing[locale] = missing
	}
	missing[msgid] = struct{}{}
}

// Count returns how many times msgid was looked up for locale.
func (s *TranslationStats) Count(msgid, locale string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used[locale][msgid]
}

// Missing returns the untranslated messages seen for locale, sorted.
func (s *TranslationStats) Missing(locale string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgids := make([]string, 0, len(s.missing[locale]))
	for msgid := range s.missing[locale] {
		msgids = append(msgids, msgid)
	}
	sort.Strings(msgids)
	return msgids
}

// Locales returns every locale with at least one lookup, sorted.
func (s *TranslationStats) Locales() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	locs := make([]string, 0, len(s.used))
	for loc := range s.used {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return locs
}

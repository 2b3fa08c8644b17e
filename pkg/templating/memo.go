package templating

import (
	"reflect"
	"sort"
	"sync"
)

// Memo caches tag results for the lifetime of a build. A call is a hit when
// the tag name, the positional arguments and the keyword arguments (in any
// order) all match an earlier successful call. Failed calls are not cached.
// All methods are safe for concurrent use.
type Memo struct {
	mu         sync.Mutex
	entries    map[string][]memoEntry // tag name -> entries
	size       int
	maxEntries int
	hits       int
	misses     int
}

type memoEntry struct {
	positional []any
	keyword    []keywordArg
	result     any
}

type keywordArg struct {
	name  string
	value any
}

// MemoStats is a snapshot of a memo's counters.
type MemoStats struct {
	Entries int
	Hits    int
	Misses  int
}

// NewMemo returns an empty memo. When maxEntries is positive, results beyond
// that many are returned to the caller but not stored.
func NewMemo(maxEntries int) *Memo {
	return &Memo{
		entries:    make(map[string][]memoEntry),
		maxEntries: maxEntries,
	}
}

// Call returns the cached result for (name, args), or invokes fn and caches
// its result when fn succeeds. fn runs without the memo's lock held, so
// concurrent identical calls may each invoke it once.
func (m *Memo) Call(name string, args Args, fn func() (any, error)) (any, error) {
	keyword := sortedKeywords(args.Keyword)

	m.mu.Lock()
	if result, ok := m.lookup(name, args.Positional, keyword); ok {
		m.hits++
		m.mu.Unlock()
		return result, nil
	}
	m.misses++
	m.mu.Unlock()

	result, err := fn()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lookup(name, args.Positional, keyword); ok {
		return result, nil
	}
	if m.maxEntries > 0 && m.size >= m.maxEntries {
		return result, nil
	}
	m.entries[name] = append(m.entries[name], memoEntry{
		positional: append([]any(nil), args.Positional...),
		keyword:    keyword,
		result:     result,
	})
	m.size++
	return result, nil
}

func (m *Memo) lookup(name string, positional []any, keyword []keywordArg) (any, bool) {
	for _, e := range m.entries[name] {
		if e.matches(positional, keyword) {
			return e.result, true
		}
	}
	return nil, false
}

func (e memoEntry) matches(positional []any, keyword []keywordArg) bool {
	if len(e.positional) != len(positional) || len(e.keyword) != len(keyword) {
		return false
	}
	for i := range positional {
		if !argEqual(e.positional[i], positional[i]) {
			return false
		}
	}
	for i := range keyword {
		if e.keyword[i].name != keyword[i].name || !argEqual(e.keyword[i].value, keyword[i].value) {
			return false
		}
	}
	return true
}

// Stats returns the memo's counters.
func (m *Memo) Stats() MemoStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MemoStats{Entries: m.size, Hits: m.hits, Misses: m.misses}
}

// Clear drops every cached result. Counters are kept.
func (m *Memo) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]memoEntry)
	m.size = 0
}

func sortedKeywords(kw map[string]any) []keywordArg {
	out := make([]keywordArg, 0, len(kw))
	for name, value := range kw {
		out = append(out, keywordArg{name: name, value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// argEqual compares comparable values with == (pointers by identity) and
// everything else structurally.
func argEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

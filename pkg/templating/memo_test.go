package templating

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/CTAG07/podtags/pkg/pod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoArgs(positional []any, keyword map[string]any) Args {
	if keyword == nil {
		keyword = map[string]any{}
	}
	return Args{Positional: positional, Keyword: keyword}
}

func TestMemo_InvokesOnce(t *testing.T) {
	m := NewMemo(0)
	calls := 0
	fn := func() (any, error) {
		calls++
		return calls, nil
	}

	first, err := m.Call("doc", memoArgs([]any{"/a"}, map[string]any{"locale": "de", "x": 1}), fn)
	require.NoError(t, err)
	second, err := m.Call("doc", memoArgs([]any{"/a"}, map[string]any{"x": 1, "locale": "de"}), fn)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, MemoStats{Entries: 1, Hits: 1, Misses: 1}, m.Stats())
}

func TestMemo_KeyParts(t *testing.T) {
	m := NewMemo(0)
	calls := 0
	fn := func() (any, error) {
		calls++
		return calls, nil
	}

	_, _ = m.Call("doc", memoArgs([]any{"/a"}, nil), fn)
	_, _ = m.Call("docs", memoArgs([]any{"/a"}, nil), fn)
	_, _ = m.Call("doc", memoArgs([]any{"/b"}, nil), fn)
	_, _ = m.Call("doc", memoArgs([]any{"/a"}, map[string]any{"locale": "de"}), fn)
	_, _ = m.Call("doc", memoArgs([]any{"/a", "/b"}, nil), fn)
	assert.Equal(t, 5, calls, "name, positionals and keywords are all part of the key")

	// Non-comparable arguments are compared structurally.
	_, _ = m.Call("locales", memoArgs([]any{[]any{"en", "de"}}, nil), fn)
	_, _ = m.Call("locales", memoArgs([]any{[]any{"en", "de"}}, nil), fn)
	assert.Equal(t, 6, calls)

	// Pointers are compared by identity.
	c1 := &pod.Collection{Path: "/content/pages"}
	c2 := &pod.Collection{Path: "/content/pages"}
	_, _ = m.Call("docs", memoArgs([]any{c1}, nil), fn)
	_, _ = m.Call("docs", memoArgs([]any{c1}, nil), fn)
	_, _ = m.Call("docs", memoArgs([]any{c2}, nil), fn)
	assert.Equal(t, 8, calls)

	// Same value, different type.
	_, _ = m.Call("n", memoArgs([]any{1}, nil), fn)
	_, _ = m.Call("n", memoArgs([]any{int64(1)}, nil), fn)
	assert.Equal(t, 10, calls)
}

func TestMemo_ErrorsAreNotCached(t *testing.T) {
	m := NewMemo(0)
	calls := 0
	boom := errors.New("boom")
	fn := func() (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	_, err := m.Call("doc", memoArgs([]any{"/a"}, nil), fn)
	assert.ErrorIs(t, err, boom)
	got, err := m.Call("doc", memoArgs([]any{"/a"}, nil), fn)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestMemo_MaxEntries(t *testing.T) {
	m := NewMemo(1)
	calls := 0
	fn := func() (any, error) {
		calls++
		return calls, nil
	}

	_, _ = m.Call("doc", memoArgs([]any{"/a"}, nil), fn)
	got, _ := m.Call("doc", memoArgs([]any{"/b"}, nil), fn)
	assert.Equal(t, 2, got, "results past the bound are still returned")
	_, _ = m.Call("doc", memoArgs([]any{"/b"}, nil), fn)
	_, _ = m.Call("doc", memoArgs([]any{"/a"}, nil), fn)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, m.Stats().Entries)
}

func TestMemo_Clear(t *testing.T) {
	m := NewMemo(0)
	calls := 0
	fn := func() (any, error) {
		calls++
		return calls, nil
	}
	_, _ = m.Call("doc", memoArgs([]any{"/a"}, nil), fn)
	m.Clear()
	_, _ = m.Call("doc", memoArgs([]any{"/a"}, nil), fn)
	assert.Equal(t, 2, calls)
}

func TestMemo_Concurrent(t *testing.T) {
	m := NewMemo(0)
	var calls atomic.Int64
	fn := func() (any, error) {
		calls.Add(1)
		return "v", nil
	}

	// Warm the entry so every goroutine below is a hit.
	_, _ = m.Call("doc", memoArgs([]any{"/a"}, nil), fn)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Call("doc", memoArgs([]any{"/a"}, nil), fn)
			assert.NoError(t, err)
			assert.Equal(t, "v", v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, 50, m.Stats().Hits)
}

func TestArgEqual(t *testing.T) {
	assert.True(t, argEqual(nil, nil))
	assert.False(t, argEqual(nil, 0))
	assert.True(t, argEqual("a", "a"))
	assert.True(t, argEqual(map[string]any{"a": []any{1}}, map[string]any{"a": []any{1}}))
	assert.False(t, argEqual([]string{"a"}, []any{"a"}))
	// A comparable struct holding a slice behind an interface is not
	// comparable at runtime and falls back to a structural comparison.
	type boxed struct{ V any }
	assert.True(t, argEqual(boxed{V: []int{1}}, boxed{V: []int{1}}))
}

package templating

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilters_Text(t *testing.T) {
	b, p, _ := setupTestBuild(t)
	about := getDoc(t, p.FS, aboutPath, "")

	t.Run("slug", func(t *testing.T) {
		assert.Equal(t, "hello-world", slug("Hello, World!"))
		assert.Equal(t, "a.b_c~d", slug("  A.B_C~D  "))
		assert.Equal(t, "caf", slug("Café"))
		assert.Equal(t, "hello-world", mustRender(t, b, about, `{{ "Hello World" | slug }}`))
	})

	t.Run("markdown", func(t *testing.T) {
		out := mustRender(t, b, about, `{{ .Doc.Body | markdown }}`)
		assert.Contains(t, out, "<h1>About</h1>")
		assert.Contains(t, out, "<em>things</em>")
		assert.Empty(t, strings.TrimSpace(mustRender(t, b, about, `{{ markdown .Doc.Fields.missing }}`)))
	})

	t.Run("jsonify", func(t *testing.T) {
		out := mustRender(t, b, about, `{{ jsonify (kw "a" 1) }}`)
		assert.Equal(t, `{&#34;a&#34;:1}`, out)
		out = mustRender(t, b, about, `{{ list 1 2 | jsonify "indent" 2 }}`)
		assert.Equal(t, "[\n  1,\n  2\n]", out)
	})

	t.Run("parseDatetime", func(t *testing.T) {
		out := mustRender(t, b, about, `{{ ("2024-03-15" | parseDatetime "2006-01-02").Month }}`)
		assert.Equal(t, "March", out)
		_, err := render(t, b, about, `{{ "15.03.2024" | parseDatetime "2006-01-02" }}`)
		assert.Error(t, err)
	})

	t.Run("relative", func(t *testing.T) {
		assert.Equal(t, "../team/", mustRender(t, b, about, `{{ "/team/" | relative }}`))
		assert.Equal(t, "./", mustRender(t, b, about, `{{ relative "/content/pages/about.md" }}`))
		assert.Equal(t, "../static/logo.png", mustRender(t, b, about, `{{ relative "/static/logo.png" }}`))
		assert.Equal(t, "https://example.com/", mustRender(t, b, about, `{{ relative "https://example.com/" }}`))
	})

	t.Run("render", func(t *testing.T) {
		out := mustRender(t, b, about, `{{ render "{{ .Doc.Title }} {{ len (list 1 2) }}" }}`)
		assert.Equal(t, "About 2", out)
	})

	t.Run("shuffle", func(t *testing.T) {
		out := mustRender(t, b, about, `{{ len (shuffle (list 1 2 3)) }} {{ shuffle "abc" }}`)
		assert.Equal(t, "3 abc", out)
	})

	t.Run("helpers", func(t *testing.T) {
		out := mustRender(t, b, about, `{{ add 2 3 }} {{ sub 2 3 }} {{ .Doc.Fields.missing | default "none" }} {{ .Doc.Title | default "none" }}`)
		assert.Equal(t, "5 -1 none About", out)
	})
}

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		target, from, want string
	}{
		{"/team/", "/about/", "../team/"},
		{"/about/", "/about/", "./"},
		{"/", "/de/about/", "../../"},
		{"/de/about/team/", "/de/about/", "./team/"},
		{"/static/logo.png", "/de/about/", "../../static/logo.png"},
		{"//cdn.example.com/x.js", "/about/", "//cdn.example.com/x.js"},
		{"mailto:someone@example.com", "/about/", "mailto:someone@example.com"},
	}
	for _, tt := range tests {
		if got := relativeURL(tt.target, tt.from); got != tt.want {
			t.Errorf("relativeURL(%q, %q) = %q, want %q", tt.target, tt.from, got, tt.want)
		}
	}
}

func TestShuffleFilter_KeepsInput(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	out, err := shuffleFilter(t.Context(), Scope{}, Args{Positional: []any{in}})
	assert.NoError(t, err)
	assert.ElementsMatch(t, in, out)
	assert.Equal(t, []string{"a", "b", "c", "d"}, in)
}

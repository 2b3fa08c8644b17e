package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPodRoot = "../../pkg/pod/testdata/pod"

var siteTemplates = map[string]string{
	"page.tmpl.html": `<h1>{{ .Doc.Title }}</h1><p>{{ _ "Pages" }} {{ _ "Welcome" }}</p><img src="{{ (static "/static/logo.png").URL }}">` +
		`{{ template "footer.part.html" . }}`,
	"news.tmpl.html":   `<h1>{{ .Doc.Title }}</h1><p>{{ len (yaml "/data/nav.yaml") }} links</p>{{ template "footer.part.html" . }}`,
	"footer.part.html": `<footer>{{ .Doc.Locale }}</footer>`,
}

// testSite is a scratch directory holding templates, output, config and
// database for one test.
type testSite struct {
	dir string
}

func newTestSite(tb testing.TB) *testSite {
	tb.Helper()
	dir := tb.TempDir()
	views := filepath.Join(dir, "views")
	require.NoError(tb, os.MkdirAll(views, 0o755))
	for name, content := range siteTemplates {
		require.NoError(tb, os.WriteFile(filepath.Join(views, name), []byte(content), 0o644))
	}
	return &testSite{dir: dir}
}

func (s *testSite) path(elem ...string) string {
	return filepath.Join(append([]string{s.dir}, elem...)...)
}

// run executes podtags with the site's locations and returns its stdout.
func (s *testSite) run(tb testing.TB, args ...string) (string, error) {
	tb.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", s.path("podtags.json"),
		"--pod", testPodRoot,
		"--templates", s.path("views"),
		"--out", s.path("build"),
		"--db", s.path("deps.db"),
		"--log-level", "error",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (s *testSite) mustRun(tb testing.TB, args ...string) string {
	tb.Helper()
	out, err := s.run(tb, args...)
	require.NoError(tb, err, out)
	return out
}

package templating

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/CTAG07/podtags/pkg/pod"
)

// countingPod counts calls into the wrapped store so tests can tell memo hits
// from misses.
type countingPod struct {
	*pod.FS
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingPod) count(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
}

func (c *countingPod) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *countingPod) GetDoc(path, locale string) (*pod.Document, error) {
	c.count("GetDoc")
	return c.FS.GetDoc(path, locale)
}

func (c *countingPod) ListDocs(collection *pod.Collection, query pod.Query) ([]*pod.Document, error) {
	c.count("ListDocs")
	return c.FS.ListDocs(collection, query)
}

func (c *countingPod) ReadYAML(path string) (any, error) {
	c.count("ReadYAML")
	return c.FS.ReadYAML(path)
}

// recordingGraph keeps the distinct edges it is given.
type recordingGraph struct {
	mu    sync.Mutex
	edges map[[2]string]struct{}
	err   error
}

func newRecordingGraph() *recordingGraph {
	return &recordingGraph{edges: make(map[[2]string]struct{})}
}

func (g *recordingGraph) Add(_ context.Context, source, target string) error {
	if g.err != nil {
		return g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[[2]string{source, target}] = struct{}{}
	return nil
}

// Edges returns the recorded edges sorted by source, then target.
func (g *recordingGraph) Edges() [][2]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][2]string, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

var errGraphDown = errors.New("graph unavailable")

func openTestPod(tb testing.TB) *countingPod {
	tb.Helper()
	fs, err := pod.Open(filepath.Join("..", "pod", "testdata", "pod"))
	if err != nil {
		tb.Fatalf("failed to open test pod: %v", err)
	}
	return &countingPod{FS: fs, calls: make(map[string]int)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestManager writes templates into a temp dir and loads them.
func setupTestManager(tb testing.TB, config *TemplateConfig, templates map[string]string) *TemplateManager {
	tb.Helper()
	dir := tb.TempDir()
	for name, content := range templates {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			tb.Fatalf("failed to write template %s: %v", name, err)
		}
	}
	tm, err := NewTemplateManager(discardLogger(), config, dir)
	if err != nil {
		tb.Fatalf("NewTemplateManager failed: %v", err)
	}
	return tm
}

// setupTestBuild starts a build over the test pod with no views loaded.
func setupTestBuild(tb testing.TB) (*Build, *countingPod, *recordingGraph) {
	tb.Helper()
	tm := setupTestManager(tb, nil, nil)
	p := openTestPod(tb)
	g := newRecordingGraph()
	b := tm.BeginBuild(p, g)
	tb.Cleanup(func() { b.End() })
	return b, p, g
}

// getDoc loads a document from the test pod, failing the test on error.
func getDoc(tb testing.TB, p Pod, path, locale string) *pod.Document {
	tb.Helper()
	doc, err := p.GetDoc(path, locale)
	if err != nil {
		tb.Fatalf("GetDoc(%q, %q) failed: %v", path, locale, err)
	}
	return doc
}

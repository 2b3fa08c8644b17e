package templating

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/CTAG07/podtags/pkg/i18n"
	"github.com/CTAG07/podtags/pkg/pod"
	"github.com/google/uuid"
)

// ErrNoView is returned when a document names no view and no default is set.
var ErrNoView = errors.New("templating: no view to render")

// Build is one pass over a pod. Memoized tag results are shared by every
// document rendered in the build and dropped by End. All methods are safe for
// concurrent use.
type Build struct {
	ID      string
	Started time.Time

	manager *TemplateManager
	pod     Pod
	graph   DependencyGraph
	memo    *Memo
	config  TemplateConfig
	logger  *slog.Logger
	now     func() time.Time
}

// BuildInfo identifies the build a page was rendered in.
type BuildInfo struct {
	ID      string
	Started time.Time
}

// PageData is the data every view is executed with.
type PageData struct {
	Doc   *pod.Document
	Build BuildInfo
}

type renderDepthKey struct{}

// BeginBuild starts a build reading from p and recording dependencies in g.
// A nil g records nothing.
func (tm *TemplateManager) BeginBuild(p Pod, g DependencyGraph) *Build {
	config := tm.GetConfig()
	if g == nil {
		g = nopGraph{}
	}
	b := &Build{
		ID:      uuid.NewString(),
		Started: time.Now(),
		manager: tm,
		pod:     p,
		graph:   g,
		config:  config,
		logger:  tm.logger,
		now:     time.Now,
	}
	if config.MemoEnabled {
		b.memo = NewMemo(config.MemoMaxEntries)
	}
	b.logger.Info("Build started", "build", b.ID)
	return b
}

// Pod returns the pod the build reads from.
func (b *Build) Pod() Pod {
	return b.pod
}

// MemoStats returns the memo counters, or zeros when memoization is off.
func (b *Build) MemoStats() MemoStats {
	if b.memo == nil {
		return MemoStats{}
	}
	return b.memo.Stats()
}

func (b *Build) formatter() *i18n.Formatter {
	return b.manager.formatter
}

// Render executes doc's view, or the configured default view, and writes the
// result to w.
func (b *Build) Render(ctx context.Context, w io.Writer, doc *pod.Document) error {
	view := doc.View
	if view == "" {
		view = b.config.DefaultView
	}
	if view == "" {
		return fmt.Errorf("%w: %s", ErrNoView, doc.Path)
	}
	err := b.manager.execute(w, view, b.Tags(ctx, doc), b.pageData(doc))
	if err != nil {
		b.logger.Error("failed to render document", "build", b.ID, "doc", doc.Path, "locale", doc.Locale, "error", err)
		return fmt.Errorf("failed to render %s (%s): %w", doc.Path, doc.Locale, err)
	}
	b.logger.Debug("Rendered document", "build", b.ID, "doc", doc.Path, "locale", doc.Locale)
	return nil
}

// RenderString parses text as a template, with access to every view and
// partial, and executes it for doc. doc may be nil.
func (b *Build) RenderString(ctx context.Context, w io.Writer, doc *pod.Document, text string) error {
	depth, _ := ctx.Value(renderDepthKey{}).(int)
	if depth >= b.config.MaxRenderDepth {
		return fmt.Errorf("render nested more than %d levels deep", b.config.MaxRenderDepth)
	}
	ctx = context.WithValue(ctx, renderDepthKey{}, depth+1)
	return b.manager.executeString(w, text, b.Tags(ctx, doc), b.pageData(doc))
}

func (b *Build) pageData(doc *pod.Document) PageData {
	return PageData{Doc: doc, Build: BuildInfo{ID: b.ID, Started: b.Started}}
}

// End finishes the build, dropping its memo, and returns the memo counters.
func (b *Build) End() MemoStats {
	stats := b.MemoStats()
	if b.memo != nil {
		b.memo.Clear()
	}
	b.logger.Info("Build finished",
		"build", b.ID,
		"duration", time.Since(b.Started),
		slog.Int("memo_entries", stats.Entries),
		slog.Int("memo_hits", stats.Hits),
		slog.Int("memo_misses", stats.Misses),
	)
	return stats
}

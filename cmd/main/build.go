package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/CTAG07/podtags/pkg/depgraph"
	"github.com/CTAG07/podtags/pkg/pod"
	"github.com/CTAG07/podtags/pkg/templating"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type buildOptions struct {
	collections []string
	locales     []string
	skipStatics bool
}

func newBuildCmd(a *app) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every document of the pod into the output directory",
		Long: `Render every document of every collection, in every locale the collection
is published in, and copy static files alongside. Each document's recorded
dependencies are replaced by the ones seen in this build.

Examples:
  podtags build
  podtags build --collection /content/pages --locale de
  podtags build --workers 1 --out ./public`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(cmd.Context(), func(ctx context.Context, graph *depgraph.Graph) error {
				return a.runBuild(ctx, cmd.OutOrStdout(), graph, opts)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.collections, "collection", "c", nil, "only render these collections, as pod paths (/content/<name>)")
	flags.StringSliceVar(&opts.locales, "locale", nil, "only render these locales")
	flags.BoolVar(&opts.skipStatics, "skip-statics", false, "do not copy static files")
	flags.IntP("workers", "w", 0, "documents rendered in parallel")
	return cmd
}

func (a *app) runBuild(ctx context.Context, out io.Writer, graph *depgraph.Graph, opts *buildOptions) error {
	p, err := a.openPod()
	if err != nil {
		return err
	}
	tm, err := a.newTemplateManager()
	if err != nil {
		return err
	}
	docs, err := collectDocs(p, opts)
	if err != nil {
		return err
	}

	// Each source's edges are reset once, before any locale of it renders.
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if _, ok := seen[doc.Path]; ok {
			continue
		}
		seen[doc.Path] = struct{}{}
		if err = graph.RemoveSource(ctx, doc.Path); err != nil {
			return fmt.Errorf("failed to reset dependencies of %s: %w", doc.Path, err)
		}
	}

	build := tm.BeginBuild(p, graph)
	defer build.End()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Site.Workers)
	for _, doc := range docs {
		g.Go(func() error {
			return a.renderDoc(gctx, build, doc)
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	statics := 0
	if !opts.skipStatics {
		if statics, err = a.copyStatics(p, opts); err != nil {
			return err
		}
	}

	stats := p.TranslationStats()
	for _, locale := range stats.Locales() {
		if missing := stats.Missing(locale); len(missing) > 0 {
			a.logger.Warn("Missing translations", "locale", locale, slog.Int("count", len(missing)), "messages", missing)
		}
	}

	_, err = fmt.Fprintf(out, "Rendered %d documents and copied %d static files into %s (build %s)\n",
		len(docs), statics, a.config.Site.OutputDir, build.ID)
	return err
}

// collectDocs lists every document to render, one entry per locale.
func collectDocs(p *pod.FS, opts *buildOptions) ([]*pod.Document, error) {
	collections, err := p.ListCollections(opts.collections)
	if err != nil {
		return nil, err
	}
	var docs []*pod.Document
	for _, collection := range collections {
		for _, locale := range buildLocales(p, collection, opts.locales) {
			list, err := p.ListDocs(collection, pod.Query{Locale: locale, Recursive: true})
			if err != nil {
				return nil, fmt.Errorf("failed to list %s (%s): %w", collection.Path, locale, err)
			}
			docs = append(docs, list...)
		}
	}
	return docs, nil
}

// buildLocales returns the collection's locales, or the pod's when the
// collection names none. A non-empty only keeps just the locales it lists.
func buildLocales(p *pod.FS, collection *pod.Collection, only []string) []string {
	locales := collection.Locales
	if len(locales) == 0 {
		locales = p.Spec().Locales
	}
	if len(only) == 0 {
		return locales
	}
	var filtered []string
	for _, locale := range locales {
		if slices.Contains(only, locale) {
			filtered = append(filtered, locale)
		}
	}
	return filtered
}

func (a *app) renderDoc(ctx context.Context, build *templating.Build, doc *pod.Document) error {
	var buf bytes.Buffer
	if err := build.Render(ctx, &buf, doc); err != nil {
		return err
	}
	return a.writeOutput(doc.URL, &buf)
}

// copyStatics copies every visible static file, in every locale, to its URL.
func (a *app) copyStatics(p *pod.FS, opts *buildOptions) (int, error) {
	locales := p.Spec().Locales
	if len(opts.locales) > 0 {
		locales = opts.locales
	}
	copied := make(map[string]struct{})
	for _, locale := range locales {
		statics, err := p.ListStatics("/static", locale, false)
		if errors.Is(err, pod.ErrNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		for _, static := range statics {
			if _, ok := copied[static.URL]; ok {
				continue
			}
			if err = a.copyStatic(p, static); err != nil {
				return 0, err
			}
			copied[static.URL] = struct{}{}
		}
	}
	return len(copied), nil
}

func (a *app) copyStatic(p *pod.FS, static *pod.StaticFile) error {
	src, err := os.Open(filepath.Join(p.Root(), filepath.FromSlash(static.Path)))
	if err != nil {
		return fmt.Errorf("failed to open static file %s: %w", static.Path, err)
	}
	defer func(src *os.File) {
		_ = src.Close()
	}(src)
	return a.writeOutput(static.URL, src)
}

// writeOutput atomically writes r to the file serving url below the output
// directory.
func (a *app) writeOutput(url string, r io.Reader) error {
	target := outputPath(a.config.Site.OutputDir, url)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := atomic.WriteFile(target, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	a.logger.Debug("Wrote output", "url", url, "file", target)
	return nil
}

// outputPath maps a URL onto a file below outDir. URLs ending in "/" are
// written as index.html; the URL can never climb out of outDir.
func outputPath(outDir, url string) string {
	clean := path.Clean("/" + url)
	if url == "" || strings.HasSuffix(url, "/") {
		clean = path.Join(clean, "index.html")
	}
	return filepath.Join(outDir, filepath.FromSlash(clean))
}

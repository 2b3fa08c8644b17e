package templating

import (
	"context"
	"fmt"
	"html/template"

	"github.com/CTAG07/podtags/pkg/pod"
)

// Scope is what a tag is bound to: the build it runs in and the document
// being rendered, which is nil for ad-hoc renders.
type Scope struct {
	Build *Build
	Doc   *pod.Document
}

// TagFunc implements a tag or filter.
type TagFunc func(ctx context.Context, s Scope, args Args) (any, error)

// tagSpecs declares every tag and filter.
func tagSpecs() []TagSpec {
	return []TagSpec{
		// Content tags (funcs_content.go)
		{Name: "categories", Arity: 1, Keywords: []string{"reverse", "recursive", "locale"}, Fn: categoriesTag},
		{Name: "collection", Arity: 1, Kind: KindMemo, Fn: collectionTag},
		{Name: "collections", Keywords: []string{"paths"}, Kind: KindMemo, Fn: collectionsTag},
		{Name: "csv", Arity: 1, Keywords: []string{"locale"}, Kind: KindMemo | KindPathDep, Fn: csvTag},
		{Name: "toDate", Keywords: []string{"value", "from"}, Fn: toDateTag},
		{Name: "doc", Arity: 1, Keywords: []string{"locale"}, Kind: KindMemo | KindResultDep, Shape: ShapeSingle, Fn: docTag},
		{Name: "docs", Arity: 1, Keywords: []string{"locale", "order_by", "hidden", "recursive"}, Kind: KindMemo | KindResultDep, Shape: ShapeSequence, Fn: docsTag},
		{Name: "json", Arity: 1, Kind: KindMemo | KindPathDep, Fn: jsonTag},
		{Name: "locale", Arity: 1, Kind: KindMemo, Fn: localeTag},
		{Name: "locales", Arity: 1, Kind: KindMemo, Fn: localesTag},
		{Name: "nav", Arity: 1, Keywords: []string{"locale"}, Kind: KindMemo, Fn: navTag},
		{Name: "static", Arity: 1, Keywords: []string{"locale"}, Kind: KindMemo | KindResultDep, Shape: ShapeSingle, Fn: staticTag},
		{Name: "statics", Arity: 1, Keywords: []string{"locale", "hidden"}, Kind: KindMemo | KindResultDep, Shape: ShapeSequence, Fn: staticsTag},
		{Name: "url", Arity: 1, Keywords: []string{"locale"}, Kind: KindMemo | KindPathDep, Fn: urlTag},
		{Name: "yaml", Arity: 1, Kind: KindMemo | KindPathDep, Fn: yamlTag},
		{Name: "trackDependency", Arity: 1, Kind: KindPathDep, Fn: trackDependencyTag},

		// Locale-aware formatting (funcs_format.go)
		{Name: "currency", Arity: 1, Keywords: []string{"currency", "locale"}, Kind: KindLocale, Piped: true, Fn: currencyFilter},
		{Name: "date", Arity: 1, Keywords: []string{"format", "locale"}, Kind: KindLocale, Piped: true, Fn: dateFilter},
		{Name: "datetime", Arity: 1, Keywords: []string{"format", "locale"}, Kind: KindLocale, Piped: true, Fn: datetimeFilter},
		{Name: "decimal", Arity: 1, Keywords: []string{"locale"}, Kind: KindLocale, Piped: true, Fn: decimalFilter},
		{Name: "number", Arity: 1, Keywords: []string{"locale"}, Kind: KindLocale, Piped: true, Fn: numberFilter},
		{Name: "percent", Arity: 1, Keywords: []string{"locale"}, Kind: KindLocale, Piped: true, Fn: percentFilter},
		{Name: "time", Arity: 1, Keywords: []string{"format", "locale"}, Kind: KindLocale, Piped: true, Fn: timeFilter},

		// Translation (funcs_format.go)
		{Name: "deeptrans", Arity: 1, Piped: true, Fn: deeptransFilter},
		{Name: "gettext", Arity: 1, Piped: true, Fn: gettextFilter},
		{Name: "_", Arity: 1, Piped: true, Fn: gettextFilter},

		// Text and data (funcs_text.go)
		{Name: "jsonify", Arity: 1, Keywords: []string{"indent"}, Piped: true, Fn: jsonifyFilter},
		{Name: "markdown", Arity: 1, Piped: true, Fn: markdownFilter},
		{Name: "parseDatetime", Arity: 2, Piped: true, Fn: parseDatetimeFilter},
		{Name: "relative", Arity: 1, Piped: true, Fn: relativeFilter},
		{Name: "render", Arity: 1, Piped: true, Fn: renderFilter},
		{Name: "shuffle", Arity: 1, Piped: true, Fn: shuffleFilter},
		{Name: "slug", Arity: 1, Piped: true, Fn: slugFilter},
	}
}

// helperFuncs are plain functions that need no document.
func helperFuncs() template.FuncMap {
	return template.FuncMap{
		"kw":      kw,
		"list":    list,
		"add":     add,
		"sub":     sub,
		"default": defaultValue,
	}
}

// placeholderFuncs lets templates parse before any document is bound.
func placeholderFuncs() template.FuncMap {
	funcs := helperFuncs()
	for _, spec := range tagSpecs() {
		name := spec.Name
		funcs[name] = func(...any) (any, error) {
			return nil, fmt.Errorf("templating: %s called outside of a build", name)
		}
	}
	return funcs
}

// Tags returns the template functions for rendering doc in this build. doc
// may be nil, in which case nothing is recorded and locales are not defaulted.
func (b *Build) Tags(ctx context.Context, doc *pod.Document) template.FuncMap {
	funcs := helperFuncs()
	for _, spec := range tagSpecs() {
		funcs[spec.Name] = b.bind(ctx, doc, spec)
	}
	return funcs
}

// bind wraps a tag in the recorder, then the memo, then the call itself.
func (b *Build) bind(ctx context.Context, doc *pod.Document, spec TagSpec) func(...any) (any, error) {
	scope := Scope{Build: b, Doc: doc}
	call := func(ctx context.Context, args Args) (any, error) {
		return spec.Fn(ctx, scope, args)
	}
	if spec.Kind&KindMemo != 0 && b.memo != nil {
		call = memoized(b.memo, spec.Name, call)
	}
	switch {
	case spec.Kind&KindResultDep != 0:
		call = recordResult(b.graph, doc, spec.Shape, call)
	case spec.Kind&KindPathDep != 0:
		call = recordPath(b.graph, doc, call)
	case spec.Kind&KindLocale != 0:
		call = withLocale(doc, call)
	}
	return func(raw ...any) (any, error) {
		args, err := parseArgs(spec, raw)
		if err != nil {
			return nil, err
		}
		return call(ctx, args)
	}
}

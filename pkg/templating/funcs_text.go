package templating

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"math/rand/v2"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var slugRegex = regexp.MustCompile(`[^A-Za-z0-9\-._~]+`)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// jsonifyFilter encodes a value as JSON, indented when "indent" is positive.
func jsonifyFilter(_ context.Context, _ Scope, args Args) (any, error) {
	indent, err := args.Int("indent", 0)
	if err != nil {
		return nil, err
	}
	var data []byte
	if indent > 0 {
		data, err = json.MarshalIndent(args.Positional[0], "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(args.Positional[0])
	}
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func markdownFilter(_ context.Context, _ Scope, args Args) (any, error) {
	var src string
	switch v := args.Positional[0].(type) {
	case nil:
	case string:
		src = v
	case template.HTML:
		src = string(v)
	default:
		return nil, args.invalid("text", v)
	}
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &buf); err != nil {
		return nil, err
	}
	return template.HTML(buf.String()), nil
}

func parseDatetimeFilter(_ context.Context, _ Scope, args Args) (any, error) {
	value, err := args.PositionalString(0, "value")
	if err != nil {
		return nil, err
	}
	layout, err := args.PositionalString(1, "layout")
	if err != nil {
		return nil, err
	}
	return time.Parse(layout, value)
}

// relativeFilter rewrites a URL, or the pod path of a document or static
// file, relative to the current document's URL.
func relativeFilter(_ context.Context, s Scope, args Args) (any, error) {
	target, err := args.PositionalString(0, "url")
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(target, "/content/") || strings.HasPrefix(target, "/static/") {
		locale := ""
		if s.Doc != nil {
			locale = s.Doc.Locale
		}
		if target, err = s.Build.pod.GetURL(target, locale); err != nil {
			return nil, err
		}
	}
	if s.Doc == nil || s.Doc.URL == "" {
		return target, nil
	}
	return relativeURL(target, s.Doc.URL), nil
}

// relativeURL returns target relative to the directory URL from. Absolute
// URLs with a scheme or host are returned unchanged.
func relativeURL(target, from string) string {
	if strings.Contains(target, "://") || strings.HasPrefix(target, "//") || !strings.HasPrefix(target, "/") {
		return target
	}
	targetParts := splitURLPath(target)
	fromParts := splitURLPath(from)
	common := 0
	for common < len(targetParts) && common < len(fromParts) && targetParts[common] == fromParts[common] {
		common++
	}
	parts := make([]string, 0, len(fromParts)-common+len(targetParts)-common)
	for range fromParts[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[common:]...)

	rel := strings.Join(parts, "/")
	if rel == "" {
		return "./"
	}
	if strings.HasSuffix(target, "/") {
		rel += "/"
	}
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

func splitURLPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// renderFilter executes a string as a template with the current bindings.
func renderFilter(ctx context.Context, s Scope, args Args) (any, error) {
	text, err := args.PositionalString(0, "template")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err = s.Build.RenderString(ctx, &buf, s.Doc, text); err != nil {
		return nil, err
	}
	return template.HTML(buf.String()), nil
}

// shuffleFilter returns a shuffled copy of a slice. Other values are
// returned unchanged.
func shuffleFilter(_ context.Context, _ Scope, args Args) (any, error) {
	v := reflect.ValueOf(args.Positional[0])
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return args.Positional[0], nil
	}
	out := reflect.MakeSlice(reflect.SliceOf(v.Type().Elem()), v.Len(), v.Len())
	reflect.Copy(out, v)
	swap := reflect.Swapper(out.Interface())
	rand.Shuffle(out.Len(), swap)
	return out.Interface(), nil
}

func slugFilter(_ context.Context, _ Scope, args Args) (any, error) {
	value, err := args.PositionalString(0, "text")
	if err != nil {
		return nil, err
	}
	return slug(value), nil
}

func slug(value string) string {
	return strings.Trim(slugRegex.ReplaceAllString(strings.ToLower(value), "-"), "-")
}

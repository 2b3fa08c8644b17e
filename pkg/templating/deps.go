package templating

import (
	"context"
	"fmt"
	"reflect"

	"github.com/CTAG07/podtags/pkg/pod"
)

// invoker is a tag with its arguments already parsed.
type invoker func(ctx context.Context, args Args) (any, error)

type podPather interface {
	PodPath() string
}

// withLocale fills in the locale keyword from doc when the caller left it out
// or passed an empty string. Without a document the keyword stays unset.
func withLocale(doc *pod.Document, next invoker) invoker {
	return func(ctx context.Context, args Args) (any, error) {
		if doc != nil {
			if locale, _ := args.Keyword["locale"].(string); locale == "" {
				args = args.withKeyword("locale", doc.Locale)
			}
		}
		return next(ctx, args)
	}
}

// memoized answers repeated calls from memo.
func memoized(memo *Memo, name string, next invoker) invoker {
	return func(ctx context.Context, args Args) (any, error) {
		return memo.Call(name, args, func() (any, error) {
			return next(ctx, args)
		})
	}
}

// recordResult records the content a tag returns as a dependency of doc. The
// locale keyword is defaulted before next runs, so it is part of the memo key.
func recordResult(graph DependencyGraph, doc *pod.Document, shape Shape, next invoker) invoker {
	return withLocale(doc, func(ctx context.Context, args Args) (any, error) {
		result, err := next(ctx, args)
		if err != nil || doc == nil {
			return result, err
		}
		if err = recordContent(ctx, graph, doc.Path, result, shape); err != nil {
			return nil, err
		}
		return result, nil
	})
}

func recordContent(ctx context.Context, graph DependencyGraph, source string, result any, shape Shape) error {
	if shape == ShapeSequence {
		v := reflect.ValueOf(result)
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			for i := 0; i < v.Len(); i++ {
				if err := recordItem(ctx, graph, source, v.Index(i).Interface()); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return recordItem(ctx, graph, source, result)
}

func recordItem(ctx context.Context, graph DependencyGraph, source string, item any) error {
	target, ok := podPathOf(item)
	if !ok {
		return nil
	}
	if err := graph.Add(ctx, source, target); err != nil {
		return fmt.Errorf("failed to record dependency %s -> %s: %w", source, target, err)
	}
	return nil
}

func podPathOf(item any) (string, bool) {
	p, ok := item.(podPather)
	if !ok {
		return "", false
	}
	if v := reflect.ValueOf(item); v.Kind() == reflect.Pointer && v.IsNil() {
		return "", false
	}
	return p.PodPath(), true
}

// recordPath records the tag's first positional argument as a dependency of
// doc before the tag runs, so the edge exists even when the read fails.
func recordPath(graph DependencyGraph, doc *pod.Document, next invoker) invoker {
	return func(ctx context.Context, args Args) (any, error) {
		if doc != nil && len(args.Positional) > 0 {
			target, ok := args.Positional[0].(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s: path has unsupported type %T",
					ErrInvalidArgument, args.tag, args.Positional[0])
			}
			if err := graph.Add(ctx, doc.Path, target); err != nil {
				return nil, fmt.Errorf("failed to record dependency %s -> %s: %w", doc.Path, target, err)
			}
		}
		return next(ctx, args)
	}
}

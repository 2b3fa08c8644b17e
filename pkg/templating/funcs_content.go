package templating

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/CTAG07/podtags/pkg/i18n"
	"github.com/CTAG07/podtags/pkg/pod"
)

// CategoryGroup is one category of a collection with its documents in order.
type CategoryGroup struct {
	Category string
	Docs     []*pod.Document
}

// resolveCollection accepts a collection or its pod path.
func resolveCollection(s Scope, args Args, v any) (*pod.Collection, error) {
	switch c := v.(type) {
	case *pod.Collection:
		if c == nil {
			break
		}
		return c, nil
	case string:
		return s.Build.pod.GetCollection(c)
	}
	return nil, fmt.Errorf("%w: %s: collection must be a collection or a collection path, got %T",
		ErrInvalidArgument, args.tag, v)
}

// categoriesTag groups a collection's documents by category, following the
// collection's category order. Each group is sorted by document order.
func categoriesTag(_ context.Context, s Scope, args Args) (any, error) {
	collection, err := resolveCollection(s, args, args.Positional[0])
	if err != nil {
		return nil, err
	}
	query := pod.Query{OrderBy: "category"}
	if query.Reverse, err = args.Bool("reverse", false); err != nil {
		return nil, err
	}
	if query.Recursive, err = args.Bool("recursive", true); err != nil {
		return nil, err
	}
	if query.Locale, err = args.String("locale"); err != nil {
		return nil, err
	}
	docs, err := s.Build.pod.ListDocs(collection, query)
	if err != nil {
		return nil, err
	}

	var groups []CategoryGroup
	for _, doc := range docs {
		if n := len(groups); n > 0 && groups[n-1].Category == doc.Category {
			groups[n-1].Docs = append(groups[n-1].Docs, doc)
			continue
		}
		groups = append(groups, CategoryGroup{Category: doc.Category, Docs: []*pod.Document{doc}})
	}
	for _, group := range groups {
		slices.SortStableFunc(group.Docs, func(a, b *pod.Document) int {
			switch {
			case a.Order < b.Order:
				return -1
			case a.Order > b.Order:
				return 1
			}
			return 0
		})
	}
	return groups, nil
}

func collectionTag(_ context.Context, s Scope, args Args) (any, error) {
	return resolveCollection(s, args, args.Positional[0])
}

func collectionsTag(_ context.Context, s Scope, args Args) (any, error) {
	paths, err := args.Strings("paths")
	if err != nil {
		return nil, err
	}
	return s.Build.pod.ListCollections(paths)
}

func csvTag(_ context.Context, s Scope, args Args) (any, error) {
	path, err := args.PositionalString(0, "path")
	if err != nil {
		return nil, err
	}
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	return s.Build.pod.ReadCSV(path, locale)
}

// toDateTag returns the current time, the given time, or a string parsed
// with the "from" layout.
func toDateTag(_ context.Context, s Scope, args Args) (any, error) {
	value, ok := args.Keyword["value"]
	if !ok || value == nil {
		return s.Build.now(), nil
	}
	from, err := args.String("from")
	if err != nil {
		return nil, err
	}
	if str, isString := value.(string); isString && from != "" {
		return time.Parse(from, str)
	}
	return value, nil
}

func docTag(_ context.Context, s Scope, args Args) (any, error) {
	path, err := args.PositionalString(0, "path")
	if err != nil {
		return nil, err
	}
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	return s.Build.pod.GetDoc(path, locale)
}

func docsTag(_ context.Context, s Scope, args Args) (any, error) {
	collection, err := resolveCollection(s, args, args.Positional[0])
	if err != nil {
		return nil, err
	}
	var query pod.Query
	if query.Locale, err = args.String("locale"); err != nil {
		return nil, err
	}
	if query.OrderBy, err = args.String("order_by"); err != nil {
		return nil, err
	}
	if query.IncludeHidden, err = args.Bool("hidden", false); err != nil {
		return nil, err
	}
	if query.Recursive, err = args.Bool("recursive", true); err != nil {
		return nil, err
	}
	return s.Build.pod.ListDocs(collection, query)
}

func jsonTag(_ context.Context, s Scope, args Args) (any, error) {
	path, err := args.PositionalString(0, "path")
	if err != nil {
		return nil, err
	}
	return s.Build.pod.ReadJSON(path)
}

func yamlTag(_ context.Context, s Scope, args Args) (any, error) {
	path, err := args.PositionalString(0, "path")
	if err != nil {
		return nil, err
	}
	return s.Build.pod.ReadYAML(path)
}

func localeTag(_ context.Context, _ Scope, args Args) (any, error) {
	code, err := args.PositionalString(0, "code")
	if err != nil {
		return nil, err
	}
	return i18n.ParseLocale(code)
}

func localesTag(_ context.Context, _ Scope, args Args) (any, error) {
	codes, err := toStrings(args.Positional[0])
	if err != nil {
		return nil, args.invalid("codes", args.Positional[0])
	}
	return i18n.ParseLocales(codes)
}

// navTag builds a menu from a collection's documents in order. The collection
// may be named by its directory under /content.
func navTag(_ context.Context, s Scope, args Args) (any, error) {
	target := args.Positional[0]
	if name, ok := target.(string); ok && !strings.HasPrefix(name, "/") {
		target = "/content/" + name
	}
	collection, err := resolveCollection(s, args, target)
	if err != nil {
		return nil, err
	}
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	docs, err := s.Build.pod.ListDocs(collection, pod.Query{OrderBy: "order", Locale: locale})
	if err != nil {
		return nil, err
	}
	return NewMenu(docs), nil
}

func staticTag(_ context.Context, s Scope, args Args) (any, error) {
	path, err := args.PositionalString(0, "path")
	if err != nil {
		return nil, err
	}
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	return s.Build.pod.GetStatic(path, locale)
}

func staticsTag(_ context.Context, s Scope, args Args) (any, error) {
	path, err := args.PositionalString(0, "path")
	if err != nil {
		return nil, err
	}
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	hidden, err := args.Bool("hidden", false)
	if err != nil {
		return nil, err
	}
	return s.Build.pod.ListStatics(path, locale, hidden)
}

func urlTag(_ context.Context, s Scope, args Args) (any, error) {
	path, err := args.PositionalString(0, "path")
	if err != nil {
		return nil, err
	}
	locale, err := args.String("locale")
	if err != nil {
		return nil, err
	}
	return s.Build.pod.GetURL(path, locale)
}

// trackDependencyTag only exists for its recorded dependency.
func trackDependencyTag(context.Context, Scope, Args) (any, error) {
	return "", nil
}

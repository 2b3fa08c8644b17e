package templating

import (
	"context"

	"github.com/CTAG07/podtags/pkg/i18n"
	"github.com/CTAG07/podtags/pkg/pod"
)

// Pod is the content store tags read from. pod.FS implements it.
type Pod interface {
	GetDoc(path, locale string) (*pod.Document, error)
	GetCollection(path string) (*pod.Collection, error)
	ListCollections(paths []string) ([]*pod.Collection, error)
	ListDocs(collection *pod.Collection, query pod.Query) ([]*pod.Document, error)
	GetStatic(path, locale string) (*pod.StaticFile, error)
	ListStatics(path, locale string, includeHidden bool) ([]*pod.StaticFile, error)
	ReadJSON(path string) (any, error)
	ReadYAML(path string) (any, error)
	ReadCSV(path, locale string) ([]map[string]string, error)
	GetURL(path, locale string) (string, error)
	Catalog(locale string) i18n.Catalog
	TranslationStats() *i18n.TranslationStats
}

// DependencyGraph receives "source depends on target" edges while documents
// render. Add must be idempotent. depgraph.Graph implements it.
type DependencyGraph interface {
	Add(ctx context.Context, source, target string) error
}

type nopGraph struct{}

func (nopGraph) Add(context.Context, string, string) error { return nil }

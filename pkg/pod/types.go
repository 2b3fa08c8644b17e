package pod

import "errors"

var (
	// ErrNotFound is returned when a pod path does not resolve to content.
	ErrNotFound = errors.New("pod: not found")
	// ErrInvalidPath is returned for pod paths that escape the pod root or
	// point into the wrong area of the pod.
	ErrInvalidPath = errors.New("pod: invalid path")
	// ErrInvalidQuery is returned for queries with an unknown ordering.
	ErrInvalidQuery = errors.New("pod: invalid query")
)

// Document is a single piece of content in a given locale. Documents are
// compared by pointer: two loads of the same path are different values.
type Document struct {
	Path          string // pod path, e.g. /content/pages/about.yaml
	Collection    string // pod path of the owning collection
	Locale        string
	DefaultLocale string
	Parent        *Document // back-reference, not ownership
	Order         float64
	Category      string
	Title         string
	Hidden        bool
	View          string
	URL           string
	Base          string // file name without extension
	Fields        map[string]any
	Body          string
}

// PodPath returns the document's pod path.
func (d *Document) PodPath() string {
	return d.Path
}

// String returns the title, or the pod path for untitled documents.
func (d *Document) String() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Path
}

// Collection is a directory of documents sharing a blueprint.
type Collection struct {
	Path       string
	Title      string
	View       string
	URLPattern string
	Categories []string // category sort order
	Locales    []string
}

// PodPath returns the collection's pod path.
func (c *Collection) PodPath() string {
	return c.Path
}

// StaticFile is a file served as-is.
type StaticFile struct {
	Path   string // pod path of the file actually served
	Locale string
	URL    string
	Hidden bool
}

// PodPath returns the static file's pod path.
func (s *StaticFile) PodPath() string {
	return s.Path
}

// Query selects and orders the documents of a collection.
type Query struct {
	Locale        string
	OrderBy       string // "order", "category", "title" or "" / "path"
	Reverse       bool
	IncludeHidden bool
	Recursive     bool
}

// Spec is the pod-wide configuration read from podspec.yaml.
type Spec struct {
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
	Root          string   `yaml:"root"`
}

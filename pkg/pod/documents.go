package pod

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/CTAG07/podtags/pkg/i18n"
	"gopkg.in/yaml.v3"
)

const defaultURLPattern = "/{collection}/{base}/"

type blueprint struct {
	Title      string   `yaml:"$title"`
	View       string   `yaml:"$view"`
	Path       string   `yaml:"$path"`
	Categories []string `yaml:"$categories"`
	Locales    []string `yaml:"$locales"`
}

// GetCollection loads the collection rooted at podPath, e.g. /content/pages.
func (p *FS) GetCollection(podPath string) (*Collection, error) {
	podPath = strings.TrimSuffix(podPath, "/")
	if !strings.HasPrefix(podPath, contentDir+"/") || strings.Count(podPath, "/") != 2 {
		return nil, fmt.Errorf("%w: %q is not a collection", ErrInvalidPath, podPath)
	}
	data, err := p.readFile(podPath + "/" + blueprintFile)
	if err != nil {
		return nil, err
	}
	var bp blueprint
	if err = yaml.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint of %s: %w", podPath, err)
	}
	locales := bp.Locales
	if len(locales) == 0 {
		locales = append([]string(nil), p.spec.Locales...)
	}
	return &Collection{
		Path:       podPath,
		Title:      bp.Title,
		View:       bp.View,
		URLPattern: bp.Path,
		Categories: bp.Categories,
		Locales:    locales,
	}, nil
}

// ListCollections loads the named collections, or every collection in the
// pod when paths is empty. The result is sorted by path.
func (p *FS) ListCollections(paths []string) ([]*Collection, error) {
	if len(paths) == 0 {
		abs, err := p.abs(contentDir)
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(abs)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to list collections: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, err = os.Stat(filepath.Join(abs, entry.Name(), blueprintFile)); err == nil {
				paths = append(paths, contentDir+"/"+entry.Name())
			}
		}
	}

	collections := make([]*Collection, 0, len(paths))
	for _, podPath := range paths {
		collection, err := p.GetCollection(podPath)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}
	slices.SortFunc(collections, func(a, b *Collection) int {
		return strings.Compare(a.Path, b.Path)
	})
	return collections, nil
}

// GetDoc loads a single document. Its parent chain is loaded as well; each
// call returns fresh values.
func (p *FS) GetDoc(podPath, locale string) (*Document, error) {
	return p.getDoc(podPath, p.localeOrDefault(locale), make(map[string]*Document))
}

func (p *FS) getDoc(podPath, locale string, loaded map[string]*Document) (*Document, error) {
	if doc, ok := loaded[podPath]; ok {
		return doc, nil
	}
	doc, parentPath, err := p.readDoc(podPath, locale, nil)
	if err != nil {
		return nil, err
	}
	loaded[podPath] = doc
	if parentPath != "" {
		if doc.Parent, err = p.getDoc(parentPath, locale, loaded); err != nil {
			return nil, fmt.Errorf("failed to load parent of %s: %w", podPath, err)
		}
	}
	return doc, nil
}

// ListDocs loads the documents of a collection. Parents that are part of the
// result point at the same values the slice holds, so documents can be
// grouped by pointer.
func (p *FS) ListDocs(collection *Collection, query Query) ([]*Document, error) {
	locale := p.localeOrDefault(query.Locale)
	less, err := docOrdering(query.OrderBy, collection.Categories)
	if err != nil {
		return nil, err
	}
	paths, err := p.docPaths(collection.Path, query.Recursive)
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]*Document, len(paths))
	parents := make(map[*Document]string, len(paths))
	docs := make([]*Document, 0, len(paths))
	for _, podPath := range paths {
		doc, parentPath, err := p.readDoc(podPath, locale, collection)
		if err != nil {
			return nil, err
		}
		loaded[podPath] = doc
		parents[doc] = parentPath
		docs = append(docs, doc)
	}
	for _, doc := range docs {
		if parents[doc] == "" {
			continue
		}
		if doc.Parent, err = p.getDoc(parents[doc], locale, loaded); err != nil {
			return nil, fmt.Errorf("failed to load parent of %s: %w", doc.Path, err)
		}
	}

	if !query.IncludeHidden {
		docs = slices.DeleteFunc(docs, func(d *Document) bool { return d.Hidden })
	}
	slices.SortStableFunc(docs, less)
	if query.Reverse {
		slices.Reverse(docs)
	}
	p.logger.Debug("listed documents",
		"collection", collection.Path, "locale", locale, "count", len(docs))
	return docs, nil
}

func docOrdering(orderBy string, categories []string) (func(a, b *Document) int, error) {
	byPath := func(a, b *Document) int { return strings.Compare(a.Path, b.Path) }
	switch orderBy {
	case "", "path":
		return byPath, nil
	case "order":
		return func(a, b *Document) int {
			return cmp.Or(cmp.Compare(a.Order, b.Order), byPath(a, b))
		}, nil
	case "title":
		return func(a, b *Document) int {
			return cmp.Or(strings.Compare(a.Title, b.Title), byPath(a, b))
		}, nil
	case "category":
		rank := func(d *Document) int {
			if i := slices.Index(categories, d.Category); i >= 0 {
				return i
			}
			return len(categories)
		}
		return func(a, b *Document) int {
			return cmp.Or(
				cmp.Compare(rank(a), rank(b)),
				strings.Compare(a.Category, b.Category),
				cmp.Compare(a.Order, b.Order),
				byPath(a, b),
			)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown order_by %q", ErrInvalidQuery, orderBy)
	}
}

// docPaths lists document files below a collection, skipping files whose
// name starts with "_".
func (p *FS) docPaths(collectionPath string, recursive bool) ([]string, error) {
	abs, err := p.abs(collectionPath)
	if err != nil {
		return nil, err
	}
	var paths []string
	err = filepath.WalkDir(abs, func(file string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if file != abs && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(entry.Name(), "_") || !isDocFile(entry.Name()) {
			return nil
		}
		rel, err := filepath.Rel(abs, file)
		if err != nil {
			return err
		}
		paths = append(paths, collectionPath+"/"+filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, collectionPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collectionPath, err)
	}
	return paths, nil
}

func isDocFile(name string) bool {
	switch path.Ext(name) {
	case ".yaml", ".yml", ".md":
		return true
	}
	return false
}

// readDoc parses one document file and returns it with the pod path of its
// parent, which the caller resolves.
func (p *FS) readDoc(podPath, locale string, collection *Collection) (*Document, string, error) {
	if !strings.HasPrefix(podPath, contentDir+"/") || !isDocFile(podPath) {
		return nil, "", fmt.Errorf("%w: %q is not a document", ErrInvalidPath, podPath)
	}
	collectionPath := contentDir + "/" + strings.SplitN(strings.TrimPrefix(podPath, contentDir+"/"), "/", 2)[0]
	if collection == nil || collection.Path != collectionPath {
		var err error
		if collection, err = p.GetCollection(collectionPath); err != nil {
			return nil, "", err
		}
	}

	data, err := p.readFile(podPath)
	if err != nil {
		return nil, "", err
	}
	front, body, found := splitFrontMatter(data)
	if !found && path.Ext(podPath) == ".md" {
		front, body = nil, data
	}
	raw := make(map[string]any)
	if err = yaml.Unmarshal(front, &raw); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", podPath, err)
	}

	doc := &Document{
		Path:          podPath,
		Collection:    collection.Path,
		Locale:        locale,
		DefaultLocale: p.spec.DefaultLocale,
		View:          collection.View,
		Base:          strings.TrimSuffix(path.Base(podPath), path.Ext(podPath)),
		Fields:        make(map[string]any),
		Body:          string(body),
	}
	parentPath, urlPattern, err := doc.applyFields(untag(raw, locale))
	if err != nil {
		return nil, "", fmt.Errorf("invalid document %s: %w", podPath, err)
	}
	if urlPattern == "" {
		urlPattern = collection.URLPattern
	}
	doc.URL = p.docURL(urlPattern, path.Base(collection.Path), doc.Base, locale)
	return doc, parentPath, nil
}

// applyFields moves the built-in "$" keys onto the document and everything
// else into Fields.
func (d *Document) applyFields(fields map[string]any) (parentPath, urlPattern string, err error) {
	for key, value := range fields {
		if !strings.HasPrefix(key, "$") {
			d.Fields[key] = value
			continue
		}
		switch key {
		case "$title":
			d.Title = fmt.Sprint(value)
		case "$category":
			d.Category = fmt.Sprint(value)
		case "$view":
			d.View = fmt.Sprint(value)
		case "$parent":
			parentPath = fmt.Sprint(value)
		case "$path":
			urlPattern = fmt.Sprint(value)
		case "$hidden":
			hidden, ok := value.(bool)
			if !ok {
				return "", "", fmt.Errorf("$hidden must be a boolean, got %T", value)
			}
			d.Hidden = hidden
		case "$order":
			if d.Order, err = i18n.ToFloat(value); err != nil {
				return "", "", fmt.Errorf("$order: %w", err)
			}
		}
	}
	return parentPath, urlPattern, nil
}

// splitFrontMatter separates a "---" delimited YAML header from the body.
// Without a header the whole file is returned as front matter.
func splitFrontMatter(data []byte) (front, body []byte, found bool) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	rest, ok := bytes.CutPrefix(data, []byte("---\n"))
	if !ok {
		return data, nil, false
	}
	if after, ok := bytes.CutPrefix(rest, []byte("---")); ok {
		return nil, bytes.TrimLeft(after, "\n"), true
	}
	front, body, ok = bytes.Cut(rest, []byte("\n---"))
	if !ok {
		return data, nil, false
	}
	return front, bytes.TrimLeft(body, "\n"), true
}

// docURL expands a URL pattern. Documents in a non-default locale are served
// under /<locale>/ unless the pattern places the locale itself.
func (p *FS) docURL(pattern, collection, base, locale string) string {
	if pattern == "" {
		pattern = defaultURLPattern
	}
	if base == "index" {
		base = ""
	}
	url := strings.NewReplacer(
		"{collection}", collection,
		"{base}", base,
		"{locale}", locale,
	).Replace(pattern)
	if locale != p.spec.DefaultLocale && !strings.Contains(pattern, "{locale}") {
		url = "/" + locale + "/" + url
	}
	joined := p.url(url)
	if strings.HasSuffix(pattern, "/") && joined != "/" {
		joined += "/"
	}
	return joined
}

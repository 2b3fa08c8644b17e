package pod

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/CTAG07/podtags/pkg/i18n"
	"gopkg.in/yaml.v3"
)

const (
	specFile        = "podspec.yaml"
	contentDir      = "/content"
	staticDir       = "/static"
	translationsDir = "/translations"
	blueprintFile   = "_blueprint.yaml"
)

// FS is a pod stored in a directory tree. Documents are read from disk on
// every call; callers that need caching put it in front of FS. All methods
// are safe for concurrent use.
type FS struct {
	root     string
	spec     Spec
	stats    *i18n.TranslationStats
	logger   *slog.Logger
	mu       sync.Mutex
	catalogs map[string]i18n.MapCatalog
}

// Open reads podspec.yaml from root and returns the pod. A missing podspec is
// an error; a missing default_locale defaults to "en".
func Open(root string) (*FS, error) {
	data, err := os.ReadFile(filepath.Join(root, specFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", specFile, err)
	}
	var spec Spec
	if err = yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", specFile, err)
	}
	if spec.DefaultLocale == "" {
		spec.DefaultLocale = "en"
	}
	if !containsString(spec.Locales, spec.DefaultLocale) {
		spec.Locales = append([]string{spec.DefaultLocale}, spec.Locales...)
	}
	spec.Root = "/" + strings.Trim(spec.Root, "/")

	return &FS{
		root:     root,
		spec:     spec,
		stats:    i18n.NewTranslationStats(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		catalogs: make(map[string]i18n.MapCatalog),
	}, nil
}

// SetLogger sets the logger for the pod. By default, all logs are discarded.
func (p *FS) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Root returns the directory the pod was opened from.
func (p *FS) Root() string {
	return p.root
}

// Spec returns a copy of the pod configuration.
func (p *FS) Spec() Spec {
	spec := p.spec
	spec.Locales = append([]string(nil), p.spec.Locales...)
	return spec
}

// TranslationStats returns the statistics shared by every render of this pod.
func (p *FS) TranslationStats() *i18n.TranslationStats {
	return p.stats
}

// Catalog returns the translations for locale, loading them on first use.
// A locale without a translations file gets an empty catalog.
func (p *FS) Catalog(locale string) i18n.Catalog {
	p.mu.Lock()
	defer p.mu.Unlock()
	if catalog, ok := p.catalogs[locale]; ok {
		return catalog
	}
	catalog := make(i18n.MapCatalog)
	data, err := p.readFile(path.Join(translationsDir, locale+".yaml"))
	if err == nil {
		if err = yaml.Unmarshal(data, &catalog); err != nil {
			p.logger.Error("failed to parse translations", "locale", locale, "error", err)
			catalog = make(i18n.MapCatalog)
		}
	} else if !errors.Is(err, ErrNotFound) {
		p.logger.Error("failed to read translations", "locale", locale, "error", err)
	}
	p.catalogs[locale] = catalog
	return catalog
}

// ReadJSON decodes a JSON file.
func (p *FS) ReadJSON(podPath string) (any, error) {
	data, err := p.readFile(podPath)
	if err != nil {
		return nil, err
	}
	var value any
	if err = json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", podPath, err)
	}
	return value, nil
}

// ReadYAML decodes a YAML file.
func (p *FS) ReadYAML(podPath string) (any, error) {
	data, err := p.readFile(podPath)
	if err != nil {
		return nil, err
	}
	var value any
	if err = yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", podPath, err)
	}
	return value, nil
}

// ReadCSV reads a CSV file with a header row into one map per record. Columns
// tagged with locale ("title@de") replace their untagged column.
func (p *FS) ReadCSV(podPath, locale string) ([]map[string]string, error) {
	data, err := p.readFile(podPath)
	if err != nil {
		return nil, err
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", podPath, err)
	}
	if len(records) == 0 {
		return []map[string]string{}, nil
	}
	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		localized := untag(row, p.localeOrDefault(locale))
		out := make(map[string]string, len(localized))
		for k, v := range localized {
			out[k], _ = v.(string)
		}
		rows = append(rows, out)
	}
	return rows, nil
}

// GetURL returns the URL of a document or static file.
func (p *FS) GetURL(podPath, locale string) (string, error) {
	switch {
	case strings.HasPrefix(podPath, contentDir+"/"):
		doc, err := p.GetDoc(podPath, locale)
		if err != nil {
			return "", err
		}
		return doc.URL, nil
	case strings.HasPrefix(podPath, staticDir+"/"):
		static, err := p.GetStatic(podPath, locale)
		if err != nil {
			return "", err
		}
		return static.URL, nil
	default:
		return "", fmt.Errorf("%w: %s has no URL", ErrInvalidPath, podPath)
	}
}

func (p *FS) localeOrDefault(locale string) string {
	if locale == "" {
		return p.spec.DefaultLocale
	}
	return locale
}

// abs maps a pod path to a filesystem path, refusing paths that leave the root.
func (p *FS) abs(podPath string) (string, error) {
	if !strings.HasPrefix(podPath, "/") {
		return "", fmt.Errorf("%w: %q must start with /", ErrInvalidPath, podPath)
	}
	clean := path.Clean(podPath)
	if clean != podPath && clean+"/" != podPath {
		return "", fmt.Errorf("%w: %q is not clean", ErrInvalidPath, podPath)
	}
	return filepath.Join(p.root, filepath.FromSlash(clean)), nil
}

func (p *FS) readFile(podPath string) ([]byte, error) {
	abs, err := p.abs(podPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, podPath)
	}
	return data, err
}

func (p *FS) url(parts ...string) string {
	joined := path.Join(append([]string{p.spec.Root}, parts...)...)
	if joined == "" {
		return "/"
	}
	return joined
}

// untag resolves locale-tagged keys ("key@de") against locale, recursing into
// nested maps. Tags for other locales are dropped.
func untag(fields map[string]any, locale string) map[string]any {
	out := make(map[string]any, len(fields))
	tagged := make(map[string]any)
	for key, value := range fields {
		if nested, ok := value.(map[string]any); ok {
			value = untag(nested, locale)
		}
		name, tag, found := strings.Cut(key, "@")
		if !found {
			out[key] = value
			continue
		}
		if tag == locale {
			tagged[name] = value
		}
	}
	for name, value := range tagged {
		out[name] = value
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

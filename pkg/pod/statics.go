package pod

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// GetStatic resolves a static file. When locale is not the default and a
// localized variant exists ("logo@de.png" next to "logo.png"), the variant is
// returned.
func (p *FS) GetStatic(podPath, locale string) (*StaticFile, error) {
	if !strings.HasPrefix(podPath, staticDir+"/") {
		return nil, fmt.Errorf("%w: %q is not a static file", ErrInvalidPath, podPath)
	}
	locale = p.localeOrDefault(locale)
	served := podPath
	if locale != p.spec.DefaultLocale {
		if variant := localizedName(podPath, locale); p.isFile(variant) {
			served = variant
		}
	}
	if !p.isFile(served) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, podPath)
	}
	return &StaticFile{
		Path:   served,
		Locale: locale,
		URL:    p.url(served),
		Hidden: isHiddenName(path.Base(podPath)),
	}, nil
}

// ListStatics returns every static file below dir in lexical order. Localized
// variants are not listed on their own; they replace their base file.
func (p *FS) ListStatics(dir, locale string, includeHidden bool) ([]*StaticFile, error) {
	dir = strings.TrimSuffix(dir, "/")
	if dir != staticDir && !strings.HasPrefix(dir, staticDir+"/") {
		return nil, fmt.Errorf("%w: %q is not a static directory", ErrInvalidPath, dir)
	}
	abs, err := p.abs(dir)
	if err != nil {
		return nil, err
	}
	var statics []*StaticFile
	err = filepath.WalkDir(abs, func(file string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		name := entry.Name()
		if strings.Contains(name, "@") || (!includeHidden && isHiddenName(name)) {
			return nil
		}
		rel, err := filepath.Rel(abs, file)
		if err != nil {
			return err
		}
		static, err := p.GetStatic(dir+"/"+filepath.ToSlash(rel), locale)
		if err != nil {
			return err
		}
		statics = append(statics, static)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	return statics, nil
}

func (p *FS) isFile(podPath string) bool {
	abs, err := p.abs(podPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

func localizedName(podPath, locale string) string {
	ext := path.Ext(podPath)
	return strings.TrimSuffix(podPath, ext) + "@" + locale + ext
}

func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

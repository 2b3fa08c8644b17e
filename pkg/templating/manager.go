package templating

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/CTAG07/podtags/pkg/i18n"
)

// TemplateManager is the central controller for the templating engine.
// It manages the template set, configuration and function map, and is
// responsible for loading, parsing, and executing templates in a
// concurrent-safe manner. Templates are parsed once against placeholder
// functions; every render executes a clone bound to one document.
// All methods are concurrent-safe.
type TemplateManager struct {
	logger         *slog.Logger
	config         *TemplateConfig
	formatter      *i18n.Formatter
	templates      *template.Template
	cleanTemplates *template.Template
	templateNames  []string
	templateDir    string
	mu             sync.RWMutex
}

// NewTemplateManager creates, initializes, and returns a new TemplateManager.
// It loads every "*.tmpl.html" view and "*.part.html" partial found in
// templateDir. A nil config uses DefaultConfig.
func NewTemplateManager(logger *slog.Logger, config *TemplateConfig, templateDir string) (*TemplateManager, error) {
	if config == nil {
		def := DefaultConfig()
		config = &def
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tm := &TemplateManager{
		logger:      logger,
		config:      config,
		formatter:   i18n.NewFormatter(nil),
		templateDir: templateDir,
	}

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("Template manager initialized", "dir", templateDir)
	return tm, nil
}

// SetConfig applies a new configuration to the TemplateManager. Builds that
// are already running keep the configuration they started with.
func (tm *TemplateManager) SetConfig(config *TemplateConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.config = config
	return nil
}

// Refresh reloads all templates from the filesystem, allowing updates to
// templates without restarting the application.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	filePattern := filepath.Join(tm.templateDir, "*.tmpl.html")
	tm.logger.Info("Loading template files...")

	parsedFiles, err := template.New("").Funcs(placeholderFuncs()).ParseGlob(filePattern)
	var names []string
	if err != nil {
		if !strings.Contains(err.Error(), "pattern matches no files") {
			tm.logger.Error("failed to parse template files", "error", err)
			return err
		}
		// No view files, so the set starts out empty
		parsedFiles = template.New("").Funcs(placeholderFuncs())
		names = []string{}
	} else {
		for _, t := range parsedFiles.Templates() {
			// The root template has no name and is never executed
			if strings.HasSuffix(t.Name(), ".tmpl.html") {
				names = append(names, t.Name())
			}
		}
	}

	filePattern = filepath.Join(tm.templateDir, "*.part.html")
	tm.logger.Info("Loading partial files...")

	newParsedFiles, err := parsedFiles.ParseGlob(filePattern)
	if err != nil {
		if !strings.Contains(err.Error(), "pattern matches no files") {
			tm.logger.Error("failed to parse partial files", "error", err)
			return err
		}
		newParsedFiles = parsedFiles
	}

	if len(names) == 0 {
		tm.logger.Warn("No view files found", "dir", tm.templateDir)
	}

	tm.templates = newParsedFiles
	tm.templateNames = names
	tm.logger.Info("Loaded template and partial files", "count", len(newParsedFiles.Templates())-1)

	// Every render clones this set, so it must never be executed itself.
	tm.cleanTemplates, err = tm.templates.Clone()
	if err != nil {
		tm.logger.Error("failed to create a clean clone of templates", "error", err)
		return err
	}
	return nil
}

// boundSet returns a fresh clone of the template set using funcs.
func (tm *TemplateManager) boundSet(funcs template.FuncMap) (*template.Template, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	set, err := tm.cleanTemplates.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to clone clean templates: %w", err)
	}
	return set.Funcs(funcs), nil
}

// execute renders the named view with funcs bound.
func (tm *TemplateManager) execute(w io.Writer, name string, funcs template.FuncMap, data any) error {
	set, err := tm.boundSet(funcs)
	if err != nil {
		return err
	}
	return set.ExecuteTemplate(w, name, data)
}

// executeString parses and executes a raw template string with funcs bound.
func (tm *TemplateManager) executeString(w io.Writer, content string, funcs template.FuncMap, data any) error {
	set, err := tm.boundSet(funcs)
	if err != nil {
		return err
	}
	t, err := set.Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse string template: %w", err)
	}
	return t.Execute(w, data)
}

// HasTemplate reports whether a view or partial with the given name is loaded.
func (tm *TemplateManager) HasTemplate(name string) bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.Lookup(name) != nil
}

// GetConfig returns a copy of the current configuration.
// This mainly exists for concurrency-safety reasons.
func (tm *TemplateManager) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return *tm.config
}

// GetTemplateNames returns the names of the loaded views and partials.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	var names []string
	for _, t := range tm.templates.Templates() {
		// By default, there is a root template with no name. We don't want to return this in the list
		if strings.HasSuffix(t.Name(), ".html") {
			names = append(names, t.Name())
		}
	}
	return names
}

// GetViewNames returns the names of the loaded views, without partials.
func (tm *TemplateManager) GetViewNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return append([]string(nil), tm.templateNames...)
}

// GetTemplateDir returns the template dir that the TemplateManager uses.
func (tm *TemplateManager) GetTemplateDir() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templateDir
}

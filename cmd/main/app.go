package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CTAG07/podtags/pkg/depgraph"
	"github.com/CTAG07/podtags/pkg/pod"
	"github.com/CTAG07/podtags/pkg/templating"
	"github.com/spf13/pflag"
)

// app carries the loaded configuration and logger shared by all commands.
type app struct {
	configPath string
	config     *Config
	logger     *slog.Logger
}

func (a *app) load(flags *pflag.FlagSet) error {
	config, err := LoadConfig(a.configPath, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.config = config
	a.logger = newLogger(config.Site.LogLevel)
	return nil
}

func (a *app) openPod() (*pod.FS, error) {
	p, err := pod.Open(a.config.Site.PodRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open pod: %w", err)
	}
	p.SetLogger(a.logger)
	return p, nil
}

func (a *app) newTemplateManager() (*templating.TemplateManager, error) {
	tm, err := templating.NewTemplateManager(a.logger, a.config.Templates, a.config.Site.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create template manager: %w", err)
	}
	return tm, nil
}

// withGraph opens the dependency database, prepares its schema and hands the
// graph to fn. Everything is closed when fn returns.
func (a *app) withGraph(ctx context.Context, fn func(context.Context, *depgraph.Graph) error) error {
	db, err := initDB(a.config.Site.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
	}(db)

	if err = depgraph.SetupSchema(db); err != nil {
		return fmt.Errorf("failed to setup dependency schema: %w", err)
	}
	graph, err := depgraph.NewGraph(db)
	if err != nil {
		return fmt.Errorf("failed to prepare dependency graph: %w", err)
	}
	defer graph.Close()
	graph.SetLogger(a.logger)

	return fn(ctx, graph)
}

// openDB opens a SQLite database, creating its directory first. A single
// connection serializes writes from parallel renders.
func openDB(driver, dataSource string) (*sql.DB, error) {
	if dir := filepath.Dir(dataSource); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

package depgraph

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
)

// SetupSchema initializes the edge table and its indexes in the provided
// database. It is idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaEdges = `
CREATE TABLE IF NOT EXISTS dependency_edges (
    source_path TEXT NOT NULL,
    target_path TEXT NOT NULL,
    PRIMARY KEY (source_path, target_path)
);
`
		indexTargets = `
CREATE INDEX IF NOT EXISTS dependency_edges_target ON dependency_edges (target_path);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaEdges); err != nil {
		return fmt.Errorf("could not create edges schema: %w", err)
	}

	if _, err = tx.Exec(indexTargets); err != nil {
		return fmt.Errorf("could not create target index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Graph records and queries dependency edges. It holds prepared statements
// for every hot path and is safe for concurrent use.
type Graph struct {
	db                *sql.DB
	stmtAddEdge       *sql.Stmt
	stmtDependencies  *sql.Stmt
	stmtDependents    *sql.Stmt
	stmtRemoveSource  *sql.Stmt
	stmtCountEdges    *sql.Stmt
	stmtCountSources  *sql.Stmt
	stmtCountTargets  *sql.Stmt
	stmtTopDependents *sql.Stmt
	logger            *slog.Logger
}

// NewGraph creates a Graph on a database that has been prepared with
// SetupSchema. If any statement fails to prepare, the ones already prepared
// are closed and the error is returned.
func NewGraph(db *sql.DB) (g *Graph, err error) {
	var prepared []*sql.Stmt
	defer func() {
		if err != nil {
			for _, stmt := range prepared {
				_ = stmt.Close()
			}
		}
	}()
	prepare := func(query string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var stmt *sql.Stmt
		if stmt, err = db.Prepare(query); err != nil {
			err = fmt.Errorf("could not prepare statement: %w", err)
			return nil
		}
		prepared = append(prepared, stmt)
		return stmt
	}

	g = &Graph{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	g.stmtAddEdge = prepare(`INSERT OR IGNORE INTO dependency_edges (source_path, target_path) VALUES (?, ?);`)
	g.stmtDependencies = prepare(`SELECT target_path FROM dependency_edges WHERE source_path = ? ORDER BY target_path;`)
	g.stmtDependents = prepare(`SELECT source_path FROM dependency_edges WHERE target_path = ? ORDER BY source_path;`)
	g.stmtRemoveSource = prepare(`DELETE FROM dependency_edges WHERE source_path = ?;`)
	g.stmtCountEdges = prepare(`SELECT COUNT(*) FROM dependency_edges;`)
	g.stmtCountSources = prepare(`SELECT COUNT(DISTINCT source_path) FROM dependency_edges;`)
	g.stmtCountTargets = prepare(`SELECT COUNT(DISTINCT target_path) FROM dependency_edges;`)
	g.stmtTopDependents = prepare(`
SELECT target_path, COUNT(*) AS dependents FROM dependency_edges
GROUP BY target_path ORDER BY dependents DESC, target_path LIMIT ?;`)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Close releases the prepared statements held by the Graph.
func (g *Graph) Close() {
	_ = g.stmtAddEdge.Close()
	_ = g.stmtDependencies.Close()
	_ = g.stmtDependents.Close()
	_ = g.stmtRemoveSource.Close()
	_ = g.stmtCountEdges.Close()
	_ = g.stmtCountSources.Close()
	_ = g.stmtCountTargets.Close()
	_ = g.stmtTopDependents.Close()
}

// SetLogger sets the logger for the Graph. By default, all logs are discarded.
func (g *Graph) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Add records that source consumed target. Recording an existing edge is a no-op.
func (g *Graph) Add(ctx context.Context, source, target string) error {
	if source == "" || target == "" {
		return fmt.Errorf("%w: source=%q target=%q", ErrEmptyPath, source, target)
	}
	res, err := g.stmtAddEdge.ExecContext(ctx, source, target)
	if err != nil {
		return fmt.Errorf("could not add edge %s -> %s: %w", source, target, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		g.logger.DebugContext(ctx, "Dependency recorded",
			slog.String("source", source),
			slog.String("target", target),
		)
	}
	return nil
}

// Dependencies returns every path consumed by source, sorted.
func (g *Graph) Dependencies(ctx context.Context, source string) ([]string, error) {
	return g.queryPaths(ctx, g.stmtDependencies, source)
}

// Dependents returns every source that consumed target, sorted.
func (g *Graph) Dependents(ctx context.Context, target string) ([]string, error) {
	return g.queryPaths(ctx, g.stmtDependents, target)
}

// RemoveSource forgets every edge recorded for source, so the next render of
// that document starts from an empty dependency set.
func (g *Graph) RemoveSource(ctx context.Context, source string) error {
	res, err := g.stmtRemoveSource.ExecContext(ctx, source)
	if err != nil {
		return fmt.Errorf("could not remove edges for %s: %w", source, err)
	}
	removed, _ := res.RowsAffected()
	g.logger.DebugContext(ctx, "Dependencies cleared",
		slog.String("source", source),
		slog.Int64("edges_removed", removed),
	)
	return nil
}

func (g *Graph) queryPaths(ctx context.Context, stmt *sql.Stmt, key string) ([]string, error) {
	rows, err := stmt.QueryContext(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	paths := make([]string, 0)
	for rows.Next() {
		var path string
		if err = rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

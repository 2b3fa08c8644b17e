package depgraph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// ExportedGraph is the serializable representation of the edge table,
// used for JSON-based import and export.
type ExportedGraph struct {
	Edges []ExportedEdge `json:"edges"`
}

// ExportedEdge is a single source -> target dependency.
type ExportedEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Export writes every edge, ordered by source then target, as indented JSON.
func (g *Graph) Export(ctx context.Context, w io.Writer) error {
	rows, err := g.db.QueryContext(ctx, "SELECT source_path, target_path FROM dependency_edges ORDER BY source_path, target_path")
	if err != nil {
		return fmt.Errorf("could not query edges for export: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	exported := ExportedGraph{Edges: make([]ExportedEdge, 0)}
	for rows.Next() {
		var edge ExportedEdge
		if err := rows.Scan(&edge.Source, &edge.Target); err != nil {
			return err
		}
		exported.Edges = append(exported.Edges, edge)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "Dependency graph exported",
		slog.Int("edges_exported", len(exported.Edges)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// Import reads a JSON graph produced by Export and merges its edges into the
// database. Existing edges are kept; the whole import is one transaction.
func (g *Graph) Import(ctx context.Context, r io.Reader) error {
	var imported ExportedGraph
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return fmt.Errorf("failed to decode json graph: %w", err)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for import: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtAddEdge := tx.StmtContext(ctx, g.stmtAddEdge)
	var added int64
	for _, edge := range imported.Edges {
		if edge.Source == "" || edge.Target == "" {
			return fmt.Errorf("%w: import edge %q -> %q", ErrEmptyPath, edge.Source, edge.Target)
		}
		res, err := stmtAddEdge.ExecContext(ctx, edge.Source, edge.Target)
		if err != nil {
			return fmt.Errorf("failed to insert edge %s -> %s: %w", edge.Source, edge.Target, err)
		}
		n, _ := res.RowsAffected()
		added += n
	}

	g.logger.InfoContext(ctx, "Dependency graph imported",
		slog.Int("edges_read", len(imported.Edges)),
		slog.Int64("edges_added", added),
	)

	return tx.Commit()
}

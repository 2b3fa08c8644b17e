package depgraph

import (
	"context"
	"database/sql"
)

// Stats holds aggregated counts for the whole edge table.
type Stats struct {
	Edges   int           // Number of distinct (source, target) pairs
	Sources int           // Number of documents with at least one dependency
	Targets int           // Number of resources consumed by at least one document
	Hottest []TargetCount // Most-consumed resources, highest first
}

// TargetCount pairs a consumed resource with the number of documents using it.
type TargetCount struct {
	Target     string
	Dependents int
}

// GetStats returns a snapshot of graph statistics. The `top` most-consumed
// targets are included in Hottest.
func (g *Graph) GetStats(ctx context.Context, top int) (*Stats, error) {
	var stats Stats
	if err := g.stmtCountEdges.QueryRowContext(ctx).Scan(&stats.Edges); err != nil {
		return nil, err
	}
	if err := g.stmtCountSources.QueryRowContext(ctx).Scan(&stats.Sources); err != nil {
		return nil, err
	}
	if err := g.stmtCountTargets.QueryRowContext(ctx).Scan(&stats.Targets); err != nil {
		return nil, err
	}

	stats.Hottest = make([]TargetCount, 0, top)
	if top <= 0 {
		return &stats, nil
	}
	rows, err := g.stmtTopDependents.QueryContext(ctx, top)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)
	for rows.Next() {
		var tc TargetCount
		if err = rows.Scan(&tc.Target, &tc.Dependents); err != nil {
			return nil, err
		}
		stats.Hottest = append(stats.Hottest, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return &stats, nil
}

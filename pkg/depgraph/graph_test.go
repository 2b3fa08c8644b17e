package depgraph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSetupSchemaIdempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	if err := SetupSchema(db); err != nil {
		t.Fatalf("second SetupSchema() failed: %v", err)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	db, g := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := g.Add(ctx, "/content/a.yaml", "/content/b.yaml"); err != nil {
			t.Fatalf("Add() failed on attempt %d: %v", i, err)
		}
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dependency_edges").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 edge after repeated Add, got %d", count)
	}
}

func TestAddRejectsEmptyPaths(t *testing.T) {
	_, g := setupTestDB(t)
	err := g.Add(context.Background(), "", "/content/b.yaml")
	if !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
}

func TestDependenciesAndDependents(t *testing.T) {
	ctx, g := setupTestGraphWithEdges(t)

	deps, err := g.Dependencies(ctx, "/content/pages/about.yaml")
	if err != nil {
		t.Fatalf("Dependencies() failed: %v", err)
	}
	want := []string{"/data/nav.yaml", "/static/logo.png"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("Dependencies() = %v, want %v", deps, want)
	}

	users, err := g.Dependents(ctx, "/data/nav.yaml")
	if err != nil {
		t.Fatalf("Dependents() failed: %v", err)
	}
	want = []string{"/content/pages/about.yaml", "/content/pages/index.yaml"}
	if !reflect.DeepEqual(users, want) {
		t.Errorf("Dependents() = %v, want %v", users, want)
	}

	none, err := g.Dependents(ctx, "/nothing.yaml")
	if err != nil {
		t.Fatalf("Dependents() failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no dependents, got %v", none)
	}
}

func TestRemoveSource(t *testing.T) {
	ctx, g := setupTestGraphWithEdges(t)

	if err := g.RemoveSource(ctx, "/content/pages/about.yaml"); err != nil {
		t.Fatalf("RemoveSource() failed: %v", err)
	}

	deps, _ := g.Dependencies(ctx, "/content/pages/about.yaml")
	if len(deps) != 0 {
		t.Errorf("expected no dependencies after RemoveSource, got %v", deps)
	}

	// Edges of other sources are untouched.
	deps, _ = g.Dependencies(ctx, "/content/pages/index.yaml")
	if len(deps) != 2 {
		t.Errorf("expected index.yaml to keep 2 dependencies, got %v", deps)
	}
}

func TestGetStats(t *testing.T) {
	ctx, g := setupTestGraphWithEdges(t)

	stats, err := g.GetStats(ctx, 1)
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.Edges != 4 || stats.Sources != 2 || stats.Targets != 3 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if len(stats.Hottest) != 1 {
		t.Fatalf("expected 1 hottest target, got %d", len(stats.Hottest))
	}
	if stats.Hottest[0].Target != "/data/nav.yaml" || stats.Hottest[0].Dependents != 2 {
		t.Errorf("unexpected hottest target: %+v", stats.Hottest[0])
	}
}

func TestNewGraphWithoutSchema(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	g, err := NewGraph(db)
	if err == nil {
		g.Close()
		t.Fatal("expected NewGraph to fail without a schema")
	}
	if g != nil {
		t.Errorf("expected a nil Graph on error, got %v", g)
	}
}

func TestNewGraphClosesPreparedStatementsOnError(t *testing.T) {
	for failAt := 1; failAt <= 8; failAt++ {
		t.Run(fmt.Sprintf("fail at %d", failAt), func(t *testing.T) {
			conn := &stmtCountingConnector{failAt: failAt}
			db := sql.OpenDB(conn)
			t.Cleanup(func() { _ = db.Close() })

			_, err := NewGraph(db)
			if !errors.Is(err, errPrepareFailed) {
				t.Fatalf("expected errPrepareFailed, got %v", err)
			}
			if prepared, open := conn.counts(); prepared != failAt || open != 0 {
				t.Errorf("prepared %d statements and left %d open, want %d and 0", prepared, open, failAt)
			}
		})
	}
}

func TestNewGraphKeepsStatementsUntilClose(t *testing.T) {
	conn := &stmtCountingConnector{}
	db := sql.OpenDB(conn)
	t.Cleanup(func() { _ = db.Close() })

	g, err := NewGraph(db)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	if _, open := conn.counts(); open != 8 {
		t.Errorf("expected 8 open statements, got %d", open)
	}
	g.Close()
	if _, open := conn.counts(); open != 0 {
		t.Errorf("expected Close to release every statement, %d left", open)
	}
}

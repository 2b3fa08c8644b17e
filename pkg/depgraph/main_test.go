package depgraph

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a new SQLite database in a temp dir and a Graph for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) (*sql.DB, *Graph) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "deps.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	g, err := NewGraph(db)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	t.Cleanup(g.Close)

	return db, g
}

// setupTestGraphWithEdges is a convenience helper that records a small site:
// two pages sharing a nav partial and a data file.
func setupTestGraphWithEdges(t *testing.T) (context.Context, *Graph) {
	t.Helper()
	_, g := setupTestDB(t)
	ctx := context.Background()
	edges := [][2]string{
		{"/content/pages/index.yaml", "/content/pages/about.yaml"},
		{"/content/pages/index.yaml", "/data/nav.yaml"},
		{"/content/pages/about.yaml", "/data/nav.yaml"},
		{"/content/pages/about.yaml", "/static/logo.png"},
	}
	for _, e := range edges {
		if err := g.Add(ctx, e[0], e[1]); err != nil {
			t.Fatalf("setup: Add(%q, %q) failed: %v", e[0], e[1], err)
		}
	}
	return ctx, g
}

var errPrepareFailed = errors.New("prepare failed")

// stmtCountingConnector is a database/sql connector whose statements do
// nothing. It counts prepared and still open statements, and fails the
// failAt'th Prepare when failAt is set.
type stmtCountingConnector struct {
	failAt int

	mu       sync.Mutex
	prepared int
	open     int
}

func (c *stmtCountingConnector) Connect(context.Context) (driver.Conn, error) {
	return &countingConn{c: c}, nil
}

func (c *stmtCountingConnector) Driver() driver.Driver {
	return countingDriver{c: c}
}

func (c *stmtCountingConnector) counts() (prepared, open int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepared, c.open
}

type countingDriver struct {
	c *stmtCountingConnector
}

func (d countingDriver) Open(string) (driver.Conn, error) {
	return &countingConn{c: d.c}, nil
}

type countingConn struct {
	c *stmtCountingConnector
}

func (cn *countingConn) Prepare(string) (driver.Stmt, error) {
	cn.c.mu.Lock()
	defer cn.c.mu.Unlock()
	cn.c.prepared++
	if cn.c.prepared == cn.c.failAt {
		return nil, errPrepareFailed
	}
	cn.c.open++
	return &countingStmt{c: cn.c}, nil
}

func (cn *countingConn) Close() error { return nil }

func (cn *countingConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

type countingStmt struct {
	c *stmtCountingConnector
}

func (s *countingStmt) Close() error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.open--
	return nil
}

func (s *countingStmt) NumInput() int { return -1 }

func (s *countingStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errors.New("exec not supported")
}

func (s *countingStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("query not supported")
}

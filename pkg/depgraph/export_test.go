package depgraph

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx, g := setupTestGraphWithEdges(t)

	var buf bytes.Buffer
	if err := g.Export(ctx, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	_, g2 := setupTestDB(t)
	// An edge already present in the target database must survive the merge.
	if err := g2.Add(ctx, "/content/pages/contact.yaml", "/data/nav.yaml"); err != nil {
		t.Fatal(err)
	}
	if err := g2.Import(ctx, &buf); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	users, err := g2.Dependents(ctx, "/data/nav.yaml")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/content/pages/about.yaml", "/content/pages/contact.yaml", "/content/pages/index.yaml"}
	if !reflect.DeepEqual(users, want) {
		t.Errorf("Dependents() after import = %v, want %v", users, want)
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	_, g := setupTestDB(t)
	ctx := t.Context()

	if err := g.Import(ctx, strings.NewReader("not json")); err == nil {
		t.Error("expected an error for malformed json, got nil")
	}

	bad := `{"edges":[{"source":"/a.yaml","target":"/b.yaml"},{"source":"","target":"/c.yaml"}]}`
	if err := g.Import(ctx, strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for an empty source path, got nil")
	}
	// The failed import is rolled back as a whole.
	deps, _ := g.Dependencies(ctx, "/a.yaml")
	if len(deps) != 0 {
		t.Errorf("expected rollback to discard partial import, got %v", deps)
	}
}

package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

var exampleMigrations = []Migration{
	{
		Version:     1,
		Description: "Add example table",
		Up:          `CREATE TABLE IF NOT EXISTS example (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		Down:        `DROP TABLE IF EXISTS example`,
	},
	{
		Version:     2,
		Description: "Index example names",
		Up:          `CREATE INDEX IF NOT EXISTS idx_example_name ON example(name)`,
		Down:        `DROP INDEX IF EXISTS idx_example_name`,
	},
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyAndRollback(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	manager := NewManager(exampleMigrations...)

	if err := manager.Apply(ctx, db); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	version, err := Version(ctx, db)
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	if _, err := db.Exec("INSERT INTO example (id, name) VALUES (1, 'test')"); err != nil {
		t.Fatalf("example table not created: %v", err)
	}

	// Applying again is a no-op
	if err := manager.Apply(ctx, db); err != nil {
		t.Fatalf("second apply failed: %v", err)
	}

	if err := manager.Rollback(ctx, db); err != nil {
		t.Fatalf("failed to rollback: %v", err)
	}
	if version, _ = Version(ctx, db); version != 1 {
		t.Errorf("expected version 1 after rollback, got %d", version)
	}

	if err := manager.Rollback(ctx, db); err != nil {
		t.Fatalf("failed to rollback: %v", err)
	}
	if _, err := db.Exec("INSERT INTO example (id, name) VALUES (2, 'test')"); err == nil {
		t.Error("example table should have been dropped")
	}

	if err := manager.Rollback(ctx, db); err == nil {
		t.Error("expected error rolling back an empty database")
	}
}

func TestApplyIsIncremental(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := NewManager(exampleMigrations[0]).Apply(ctx, db); err != nil {
		t.Fatalf("failed to apply first migration: %v", err)
	}
	if err := NewManager(exampleMigrations...).Apply(ctx, db); err != nil {
		t.Fatalf("failed to apply remaining migrations: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("failed to count versions: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 version records, got %d", count)
	}
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	manager := NewManager(exampleMigrations[0], Migration{Version: 2, Description: "broken", Up: "NOT SQL"})
	if err := manager.Apply(ctx, db); err == nil {
		t.Fatal("expected broken migration to fail")
	}

	version, err := Version(ctx, db)
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}
}

func TestMigrationOrdering(t *testing.T) {
	manager := NewManager()
	manager.Register(Migration{Version: 3, Description: "Third"})
	manager.Register(Migration{Version: 1, Description: "First"})
	manager.Register(Migration{Version: 2, Description: "Second"})

	sorted := manager.sorted()
	if len(sorted) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(sorted))
	}
	for i, m := range sorted {
		if m.Version != i+1 {
			t.Errorf("position %d: expected version %d, got %d", i, i+1, m.Version)
		}
	}
	if manager.Latest() != 3 {
		t.Errorf("expected latest 3, got %d", manager.Latest())
	}
}

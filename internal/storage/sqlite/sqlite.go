package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/Sazadakthar786/Software-failure-detection/internal/storage/migrations"
)

// timeFormat is fixed width so stored timestamps sort chronologically
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStorage persists metric samples and action records in SQLite
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the database at path and applies the schema
func New(ctx context.Context, path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// WAL lets the background sampler and CLI commands share the file
	dsn := "file:" + path + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(wal)"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := schema().Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: path}, nil
}

func schema() *migrations.Manager {
	return migrations.NewManager(schemaMigrations...)
}

// SchemaVersion returns the applied schema version and the newest version
// this build knows about
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	current, err = migrations.Version(ctx, s.db)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return current, schema().Latest(), nil
}

// RollbackSchema reverts the most recently applied schema migration.
// The next New re-applies it.
func (s *SQLiteStorage) RollbackSchema(ctx context.Context) error {
	if err := schema().Rollback(ctx, s.db); err != nil {
		return fmt.Errorf("failed to rollback schema: %w", err)
	}
	return nil
}

// Path returns the database file path
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// VacuumDatabase runs the VACUUM command to reclaim disk space
func (s *SQLiteStorage) VacuumDatabase(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

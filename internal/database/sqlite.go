package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenSQLite creates or opens a SQLite database at the given path with WAL
// mode enabled.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	return db, nil
}

// MigrateSQLite runs the schema creation SQL. Safe to call multiple times.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchemaSQL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return nil
}

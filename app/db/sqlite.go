package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// sqliteSchema mirrors the Postgres migrations. SQLite has no uuid type, so ids
// are stored as text and assigned by the repositories.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS strategic_items (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_strategic_items_created_at ON strategic_items (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_strategic_items_created_by ON strategic_items (created_by);

CREATE TABLE IF NOT EXISTS analysis_data (
    year INTEGER PRIMARY KEY,
    trade REAL NOT NULL,
    defense REAL NOT NULL,
    alliances REAL NOT NULL
);
`

// InitSQLite opens (or creates) the SQLite database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func InitSQLite(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	logger.Info("Opening SQLite database", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening sqlite database: %w", err)
	}
	// modernc/sqlite serializes writes; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed pinging sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed applying sqlite schema: %w", err)
	}

	logger.Info("SQLite database ready")
	return db, nil
}

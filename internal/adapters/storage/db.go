package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations is the ordered schema history. Append only; never edit a
// released step.
var migrations = []migration{
	{
		version: 1,
		name:    "baseline",
		sql: `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS branch (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		street TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		total_members INTEGER NOT NULL DEFAULT 0,
		active_members INTEGER NOT NULL DEFAULT 0,
		total_trainers INTEGER NOT NULL DEFAULT 0,
		rating_average REAL NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS client_state (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
	`,
	},
	{
		version: 2,
		name:    "storefront",
		sql: `
	CREATE TABLE IF NOT EXISTS product (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price_cents INTEGER NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0
	);
	`,
	},
}

// LatestSchemaVersion returns the version the newest migration brings the schema to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the version recorded in the database, or 0 for a fresh database.
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL, applied_at TEXT NOT NULL)"); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every migration newer than the recorded version, each in
// its own transaction.
// PRE: db is a valid database connection
// POST: schema is at LatestSchemaVersion
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "db", dbPath, "version", m.version, "name", m.name)
	}
	return nil
}

func apply(db *sql.DB, m migration) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

// Package sqlite implements the repository interfaces using SQLite as
// the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need
// a C compiler installed and cross-compilation becomes painful.
// modernc.org/sqlite is a pure Go translation of the SQLite C code — no
// C compiler needed, works everywhere Go works.
//
// The correctness-critical pieces of the schema live here, not in the
// services:
//   - users.username is the PRIMARY KEY, so two concurrent registrations
//     for the same name cannot both succeed
//   - mark-read is a single-row UPDATE guarded by `read_at IS NULL`, so
//     read_at transitions at most once no matter how many requests race
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// Side-effect import: the sqlite package's init() registers itself
	// with database/sql as a driver named "sqlite".
	sqlite3 "modernc.org/sqlite"
)

// SQLite extended result codes for constraint violations.
// https://www.sqlite.org/rescode.html
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// DB wraps a sql.DB connection pool and implements both repository
// interfaces. One struct for both keeps the wiring flat — the services
// receive it through the interfaces they each need.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs the
// schema migrations.
//
// dbPath examples:
//   - "data/messagely.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect; Ping surfaces a bad path or
	// permissions problem now instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Messages reference
	// users, so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to
// New — it flushes the WAL and releases the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe
// to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username      TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			phone         TEXT NOT NULL DEFAULT '',
			join_at       DATETIME NOT NULL,
			last_login_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id            TEXT PRIMARY KEY,
			from_username TEXT NOT NULL REFERENCES users(username),
			to_username   TEXT NOT NULL REFERENCES users(username),
			body          TEXT NOT NULL,
			sent_at       DATETIME NOT NULL,
			read_at       DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_username);
		CREATE INDEX IF NOT EXISTS idx_messages_to   ON messages(to_username);
	`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a primary-key or unique
// constraint failure from the sqlite driver. The repositories translate
// these into the typed duplicate error rather than leaking driver
// errors to the services.
func isUniqueViolation(err error) bool {
	var se *sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqliteConstraintPrimaryKey || se.Code() == sqliteConstraintUnique
}

// Package rosterdb is the authoritative roster store: a SQLite database
// holding contacts, servers and groups. It sits on the far side of the
// bridge from the optimistic client layer; every write bumps a metadata
// timestamp inside the same transaction so watchers can detect pushes.
package rosterdb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deskroster/deskroster/internal/directory"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

var (
	// ErrExists is returned when inserting a record whose key is taken.
	ErrExists = errors.New("rosterdb: record already exists")

	// ErrNotFound is returned when a keyed operation misses.
	ErrNotFound = errors.New("rosterdb: record not found")
)

// DB wraps a SQLite database for roster persistence. Thread-safe for
// concurrent use from multiple goroutines within one process; multiple OS
// processes can safely read/write via WAL mode + busy timeout.
type DB struct {
	db *sql.DB
}

// Snapshot is one wholesale read of the entire roster, the unit pushed to
// the client layer whenever the store changes.
type Snapshot struct {
	Contacts []directory.Contact
	Servers  []directory.Server
	Groups   []directory.Group
	TakenAt  time.Time
}

// Open creates or opens a roster database at dbPath with WAL mode and busy
// timeout, and runs migrations.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("rosterdb: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("rosterdb: open: %w", err)
	}

	// WAL mode: concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("rosterdb: wal mode: %w", err)
	}

	// Wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("rosterdb: busy timeout: %w", err)
	}

	r := &DB{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close checkpoints WAL and closes the database.
func (r *DB) Close() error {
	_, _ = r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return r.db.Close()
}

func (r *DB) migrate() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("rosterdb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("rosterdb: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			email         TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			title         TEXT NOT NULL DEFAULT '',
			phone         TEXT NOT NULL DEFAULT '',
			business_area TEXT NOT NULL DEFAULT '',
			groups_json   TEXT NOT NULL DEFAULT '[]',
			notes_json    TEXT NOT NULL DEFAULT '[]',
			manual        INTEGER NOT NULL DEFAULT 0,
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("rosterdb: create contacts: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS servers (
			name          TEXT PRIMARY KEY,
			owner         TEXT NOT NULL DEFAULT '',
			business_area TEXT NOT NULL DEFAULT '',
			environment   TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			notes_json    TEXT NOT NULL DEFAULT '[]',
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("rosterdb: create servers: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS groups (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			members_json TEXT NOT NULL DEFAULT '[]',
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("rosterdb: create groups: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("rosterdb: set schema version: %w", err)
	}

	return tx.Commit()
}

// touch bumps the change-detection timestamp inside an open transaction.
func touch(tx *sql.Tx) error {
	_, err := tx.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('last_modified', ?)",
		fmt.Sprintf("%d", time.Now().UnixNano()),
	)
	return err
}

// LastModified returns the change-detection timestamp, 0 if never written.
func (r *DB) LastModified() (int64, error) {
	val, err := r.getMeta("last_modified")
	if err != nil || val == "" {
		return 0, err
	}
	var ts int64
	_, err = fmt.Sscanf(val, "%d", &ts)
	return ts, err
}

// SetMeta sets a key-value pair in the metadata table.
func (r *DB) SetMeta(key, value string) error {
	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

func (r *DB) getMeta(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// querier is the read surface shared by *sql.DB and *sql.Tx, so the
// collection loaders work standalone or inside a snapshot transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// Snapshot reads all three collections inside one read transaction, so a
// write landing mid-read can never produce a torn snapshot.
func (r *DB) Snapshot() (*Snapshot, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("rosterdb: begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	contacts, err := loadContacts(tx)
	if err != nil {
		return nil, err
	}
	servers, err := loadServers(tx)
	if err != nil {
		return nil, err
	}
	groups, err := loadGroups(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("rosterdb: commit snapshot: %w", err)
	}
	return &Snapshot{
		Contacts: contacts,
		Servers:  servers,
		Groups:   groups,
		TakenAt:  time.Now(),
	}, nil
}

func marshalJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return "[]"
	}
	return string(raw)
}

package rosterdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deskroster/deskroster/internal/directory"
)

// InsertServer adds a new server, failing with ErrExists when the name is
// already taken.
func (r *DB) InsertServer(s directory.Server) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRow("SELECT name FROM servers WHERE name = ?", s.Key()).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: server %q", ErrExists, s.Key())
	}
	if err != sql.ErrNoRows {
		return err
	}

	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if _, err := tx.Exec(`
		INSERT INTO servers (name, owner, business_area, environment, description, notes_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.Key(), s.Owner, s.BusinessArea, s.Environment, s.Description,
		marshalJSON(s.Notes), s.CreatedAt.Unix(), now.Unix(),
	); err != nil {
		return err
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// PutServer inserts or replaces a server unconditionally.
func (r *DB) PutServer(s directory.Server) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO servers (name, owner, business_area, environment, description, notes_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.Key(), s.Owner, s.BusinessArea, s.Environment, s.Description,
		marshalJSON(s.Notes), s.CreatedAt.Unix(), now.Unix(),
	); err != nil {
		return err
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// GetServer loads one server by key. ErrNotFound when missing.
func (r *DB) GetServer(key string) (directory.Server, error) {
	row := r.db.QueryRow(`
		SELECT name, owner, business_area, environment, description, notes_json, created_at, updated_at
		FROM servers WHERE name = ?
	`, key)

	s, err := scanServer(row)
	if err == sql.ErrNoRows {
		return directory.Server{}, fmt.Errorf("%w: server %q", ErrNotFound, key)
	}
	return s, err
}

// DeleteServer removes a server by key. ErrNotFound when nothing matched.
func (r *DB) DeleteServer(key string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("DELETE FROM servers WHERE name = ?", key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: server %q", ErrNotFound, key)
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadServers returns all servers ordered by name, re-ingested.
func (r *DB) LoadServers() ([]directory.Server, error) {
	return loadServers(r.db)
}

func loadServers(q querier) ([]directory.Server, error) {
	rows, err := q.Query(`
		SELECT name, owner, business_area, environment, description, notes_json, created_at, updated_at
		FROM servers ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []directory.Server
	for rows.Next() {
		s, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func scanServer(row rowScanner) (directory.Server, error) {
	var s directory.Server
	var notesJSON string
	var createdUnix, updatedUnix int64

	err := row.Scan(
		&s.Name, &s.Owner, &s.BusinessArea, &s.Environment, &s.Description,
		&notesJSON, &createdUnix, &updatedUnix,
	)
	if err != nil {
		return directory.Server{}, err
	}

	_ = json.Unmarshal([]byte(notesJSON), &s.Notes)
	s.CreatedAt = time.Unix(createdUnix, 0)
	s.UpdatedAt = time.Unix(updatedUnix, 0)
	return directory.IngestServer(s), nil
}

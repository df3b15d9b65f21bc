package rosterdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deskroster/deskroster/internal/directory"
)

// InsertGroup adds a new group, failing with ErrExists when the id is taken.
func (r *DB) InsertGroup(g directory.Group) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRow("SELECT id FROM groups WHERE id = ?", g.Key()).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: group %q", ErrExists, g.Key())
	}
	if err != sql.ErrNoRows {
		return err
	}

	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if _, err := tx.Exec(`
		INSERT INTO groups (id, name, description, members_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		g.Key(), g.Name, g.Description, marshalJSON(g.Members),
		g.CreatedAt.Unix(), now.Unix(),
	); err != nil {
		return err
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// PutGroup inserts or replaces a group unconditionally.
func (r *DB) PutGroup(g directory.Group) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO groups (id, name, description, members_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		g.Key(), g.Name, g.Description, marshalJSON(g.Members),
		g.CreatedAt.Unix(), now.Unix(),
	); err != nil {
		return err
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// GetGroup loads one group by key. ErrNotFound when missing.
func (r *DB) GetGroup(key string) (directory.Group, error) {
	row := r.db.QueryRow(`
		SELECT id, name, description, members_json, created_at, updated_at
		FROM groups WHERE id = ?
	`, key)

	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return directory.Group{}, fmt.Errorf("%w: group %q", ErrNotFound, key)
	}
	return g, err
}

// DeleteGroup removes a group by key. ErrNotFound when nothing matched.
func (r *DB) DeleteGroup(key string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("DELETE FROM groups WHERE id = ?", key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: group %q", ErrNotFound, key)
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadGroups returns all groups ordered by name, re-ingested.
func (r *DB) LoadGroups() ([]directory.Group, error) {
	return loadGroups(r.db)
}

func loadGroups(q querier) ([]directory.Group, error) {
	rows, err := q.Query(`
		SELECT id, name, description, members_json, created_at, updated_at
		FROM groups ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []directory.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func scanGroup(row rowScanner) (directory.Group, error) {
	var g directory.Group
	var membersJSON string
	var createdUnix, updatedUnix int64

	err := row.Scan(&g.ID, &g.Name, &g.Description, &membersJSON, &createdUnix, &updatedUnix)
	if err != nil {
		return directory.Group{}, err
	}

	_ = json.Unmarshal([]byte(membersJSON), &g.Members)
	g.CreatedAt = time.Unix(createdUnix, 0)
	g.UpdatedAt = time.Unix(updatedUnix, 0)
	return directory.IngestGroup(g), nil
}

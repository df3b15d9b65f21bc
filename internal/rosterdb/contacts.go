package rosterdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deskroster/deskroster/internal/directory"
)

// InsertContact adds a new contact, failing with ErrExists when the email
// is already taken.
func (r *DB) InsertContact(c directory.Contact) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRow("SELECT email FROM contacts WHERE email = ?", c.Key()).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: contact %q", ErrExists, c.Key())
	}
	if err != sql.ErrNoRows {
		return err
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if _, err := tx.Exec(`
		INSERT INTO contacts (email, name, title, phone, business_area, groups_json, notes_json, manual, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.Key(), c.Name, c.Title, c.Phone, c.BusinessArea,
		marshalJSON(c.Groups), marshalJSON(c.Notes), boolInt(c.Manual),
		c.CreatedAt.Unix(), now.Unix(),
	); err != nil {
		return err
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// PutContact inserts or replaces a contact unconditionally.
func (r *DB) PutContact(c directory.Contact) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO contacts (email, name, title, phone, business_area, groups_json, notes_json, manual, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.Key(), c.Name, c.Title, c.Phone, c.BusinessArea,
		marshalJSON(c.Groups), marshalJSON(c.Notes), boolInt(c.Manual),
		c.CreatedAt.Unix(), now.Unix(),
	); err != nil {
		return err
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// GetContact loads one contact by key. ErrNotFound when missing.
func (r *DB) GetContact(key string) (directory.Contact, error) {
	row := r.db.QueryRow(`
		SELECT email, name, title, phone, business_area, groups_json, notes_json, manual, created_at, updated_at
		FROM contacts WHERE email = ?
	`, key)

	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return directory.Contact{}, fmt.Errorf("%w: contact %q", ErrNotFound, key)
	}
	return c, err
}

// DeleteContact removes a contact by key. ErrNotFound when nothing matched.
func (r *DB) DeleteContact(key string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("DELETE FROM contacts WHERE email = ?", key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: contact %q", ErrNotFound, key)
	}
	if err := touch(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadContacts returns all contacts ordered by name, re-ingested so the
// derived search string is fresh.
func (r *DB) LoadContacts() ([]directory.Contact, error) {
	return loadContacts(r.db)
}

func loadContacts(q querier) ([]directory.Contact, error) {
	rows, err := q.Query(`
		SELECT email, name, title, phone, business_area, groups_json, notes_json, manual, created_at, updated_at
		FROM contacts ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []directory.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (directory.Contact, error) {
	var c directory.Contact
	var groupsJSON, notesJSON string
	var manual int
	var createdUnix, updatedUnix int64

	err := row.Scan(
		&c.Email, &c.Name, &c.Title, &c.Phone, &c.BusinessArea,
		&groupsJSON, &notesJSON, &manual, &createdUnix, &updatedUnix,
	)
	if err != nil {
		return directory.Contact{}, err
	}

	_ = json.Unmarshal([]byte(groupsJSON), &c.Groups)
	_ = json.Unmarshal([]byte(notesJSON), &c.Notes)
	c.Manual = manual != 0
	c.CreatedAt = time.Unix(createdUnix, 0)
	c.UpdatedAt = time.Unix(updatedUnix, 0)
	return directory.IngestContact(c), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

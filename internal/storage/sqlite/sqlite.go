// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It gives the record service persistence across restarts
// without changing a single handler.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the persistent implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at path, creates the records table if it
// does not already exist, and returns a ready-to-use *SQLite.
//
// The pool is capped at one connection, so database/sql queues every
// statement behind the previous one.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	// AUTOINCREMENT keeps the high-water mark in sqlite_sequence: ids of
	// deleted rows are never handed out again, even across restarts.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT    NOT NULL,
			age  INTEGER NOT NULL CHECK (age >= 0)
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Create inserts a new row and reads back the assigned primary key.
//
// Values go through ? placeholders, never string concatenation, so the
// driver treats user input as data and not as SQL.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Create(ctx context.Context, name string, age int) (types.Record, error) {
	if err := storage.ValidateName(name); err != nil {
		return types.Record{}, err
	}
	if err := storage.ValidateAge(age); err != nil {
		return types.Record{}, err
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO records (name, age) VALUES (?, ?)",
	)
	if err != nil {
		return types.Record{}, fmt.Errorf("Create: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, name, age)
	if err != nil {
		return types.Record{}, fmt.Errorf("Create: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Record{}, fmt.Errorf("Create: last insert id: %w", err)
	}

	return types.Record{ID: lastID, Name: name, Age: age}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Get fetches exactly one row matched by primary key.
//
// QueryRow never returns "no rows" by itself; the sql.ErrNoRows sentinel
// only surfaces from Scan, which is where it is translated into the
// store-level ErrNotFound.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Get(ctx context.Context, id int64) (types.Record, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, age FROM records WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Record{}, fmt.Errorf("Get: prepare: %w", err)
	}
	defer stmt.Close()

	var rec types.Record
	err = stmt.QueryRowContext(ctx, id).Scan(&rec.ID, &rec.Name, &rec.Age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Record{}, storage.NotFound(id)
		}
		return types.Record{}, fmt.Errorf("Get: scan: %w", err)
	}

	return rec, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// List returns all rows ordered by id.
//
// Always defer rows.Close() to give the connection back to the pool, and
// check rows.Err() after the loop: it reports failures that happened
// while iterating, which Scan never sees.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) List(ctx context.Context) ([]types.Record, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT id, name, age FROM records ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the handler encodes [] rather than null.
	records := make([]types.Record, 0)

	for rows.Next() {
		var rec types.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Age); err != nil {
			return nil, fmt.Errorf("List: scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows iteration: %w", err)
	}

	return records, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Update sets the age of a row and returns the stored result.
//
// RowsAffected tells us whether the id existed. Existence is checked
// before the age so a missing id reports ErrNotFound even when the new
// age is also invalid, matching the in-memory store.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Update(ctx context.Context, id int64, age int) (types.Record, error) {
	if age < 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return types.Record{}, err
		}
		return types.Record{}, storage.ValidateAge(age)
	}

	result, err := s.Db.ExecContext(ctx,
		"UPDATE records SET age = ? WHERE id = ?", age, id,
	)
	if err != nil {
		return types.Record{}, fmt.Errorf("Update: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Record{}, fmt.Errorf("Update: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Record{}, storage.NotFound(id)
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return s.Get(ctx, id)
}

// Delete removes a row by primary key.
func (s *SQLite) Delete(ctx context.Context, id int64) error {
	result, err := s.Db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("Delete: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.NotFound(id)
	}

	return nil
}

// Count returns the number of rows in the records table.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.Db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: scan: %w", err)
	}
	return n, nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

package configstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS system_configs (
	config_key   TEXT PRIMARY KEY,
	config_name  TEXT NOT NULL DEFAULT '',
	config_value TEXT NOT NULL,
	config_type  TEXT NOT NULL DEFAULT 'string',
	category     TEXT NOT NULL DEFAULT '',
	is_editable  INTEGER NOT NULL DEFAULT 1,
	updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);`

// SQLiteStore persists configuration in a system_configs table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a config store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("configstore: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("configstore: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an existing database handle. The schema is created
// if missing, so the store can share a catalog database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("configstore: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the handle so other stores can share the same file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Get returns the entry for key.
func (s *SQLiteStore) Get(key string) (Entry, bool) {
	var e Entry
	var editable int
	err := s.db.QueryRow(
		`SELECT config_key, config_name, config_value, config_type, category, is_editable
		 FROM system_configs WHERE config_key = ?`, key,
	).Scan(&e.Key, &e.Name, &e.Value, &e.Type, &e.Category, &editable)
	if err != nil {
		return Entry{}, false
	}
	e.Editable = editable != 0
	return e, true
}

// Set inserts or replaces an entry.
func (s *SQLiteStore) Set(e Entry) error {
	if e.Key == "" {
		return errors.New("configstore: empty key")
	}
	if e.Type == "" {
		e.Type = TypeString
	}
	editable := 0
	if e.Editable {
		editable = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO system_configs (config_key, config_name, config_value, config_type, category, is_editable, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(config_key) DO UPDATE SET
		   config_name = excluded.config_name,
		   config_value = excluded.config_value,
		   config_type = excluded.config_type,
		   category = excluded.category,
		   is_editable = excluded.is_editable,
		   updated_at = excluded.updated_at`,
		e.Key, e.Name, e.Value, string(e.Type), e.Category, editable,
	)
	if err != nil {
		return fmt.Errorf("configstore: set %q: %w", e.Key, err)
	}
	return nil
}

// Delete removes an entry. Removing a missing key is a no-op.
func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM system_configs WHERE config_key = ?`, key); err != nil {
		return fmt.Errorf("configstore: delete %q: %w", key, err)
	}
	return nil
}

// List returns entries, optionally filtered by category, ordered by key.
func (s *SQLiteStore) List(category string) ([]Entry, error) {
	query := `SELECT config_key, config_name, config_value, config_type, category, is_editable
	          FROM system_configs`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY config_key`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("configstore: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var editable int
		if err := rows.Scan(&e.Key, &e.Name, &e.Value, &e.Type, &e.Category, &editable); err != nil {
			return nil, fmt.Errorf("configstore: scan: %w", err)
		}
		e.Editable = editable != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

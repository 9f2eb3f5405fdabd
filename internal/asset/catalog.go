// Package asset is the data asset catalog: the inventory of tables,
// views and interfaces that transfer requests reference. The catalog
// answers level lookups for the gate and receives level writes from the
// classification engine.
package asset

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/finvault/datafence/internal/model"
)

// ErrNotFound signals that the referenced asset does not exist.
var ErrNotFound = errors.New("asset: not found")

const schema = `
CREATE TABLE IF NOT EXISTS data_assets (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_code        TEXT NOT NULL UNIQUE,
	asset_name        TEXT NOT NULL,
	asset_type        TEXT NOT NULL DEFAULT '',
	source_system     TEXT NOT NULL DEFAULT '',
	schema_name       TEXT NOT NULL DEFAULT '',
	table_name        TEXT NOT NULL DEFAULT '',
	data_level        TEXT NOT NULL DEFAULT 'internal',
	classification_id INTEGER NOT NULL DEFAULT 0,
	field_count       INTEGER NOT NULL DEFAULT 0,
	record_count      INTEGER NOT NULL DEFAULT 0,
	is_active         INTEGER NOT NULL DEFAULT 1,
	last_scan_at      TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_data_assets_level ON data_assets(data_level);`

// Catalog is a SQLite-backed asset repository.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) a catalog at path.
func Open(path string) (*Catalog, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("asset: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("asset: create schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// NewCatalog wraps an existing database handle, creating the schema if
// missing.
func NewCatalog(db *sql.DB) (*Catalog, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("asset: create schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// DB exposes the handle so sibling stores can share the database file.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Save inserts a new asset and returns it with its id set. The level
// defaults to Internal when unset.
func (c *Catalog) Save(a model.DataAsset) (model.DataAsset, error) {
	if a.Level == "" {
		a.Level = model.LevelInternal
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Active = true

	var lastScan any
	if a.LastScanAt != nil {
		lastScan = a.LastScanAt.Format(time.RFC3339Nano)
	}
	res, err := c.db.Exec(
		`INSERT INTO data_assets (asset_code, asset_name, asset_type, source_system, schema_name,
		   table_name, data_level, classification_id, field_count, record_count, is_active,
		   last_scan_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`,
		a.Code, a.Name, a.AssetType, a.SourceSystem, a.SchemaName, a.TableName,
		string(a.Level), a.ClassificationID, a.FieldCount, a.RecordCount,
		lastScan, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.DataAsset{}, fmt.Errorf("asset: insert %q: %w", a.Code, err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return model.DataAsset{}, fmt.Errorf("asset: last insert id: %w", err)
	}
	return a, nil
}

// Get returns one asset by id.
func (c *Catalog) Get(id int64) (model.DataAsset, error) {
	return c.scanOne(`WHERE id = ?`, id)
}

// GetByCode returns one asset by its unique code.
func (c *Catalog) GetByCode(code string) (model.DataAsset, error) {
	return c.scanOne(`WHERE asset_code = ?`, code)
}

const selectColumns = `SELECT id, asset_code, asset_name, asset_type, source_system, schema_name,
	table_name, data_level, classification_id, field_count, record_count, is_active,
	last_scan_at, created_at, updated_at FROM data_assets `

func (c *Catalog) scanOne(where string, args ...any) (model.DataAsset, error) {
	row := c.db.QueryRow(selectColumns+where, args...)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DataAsset{}, ErrNotFound
	}
	return a, err
}

// List returns assets, optionally restricted to active ones, by id.
func (c *Catalog) List(activeOnly bool) ([]model.DataAsset, error) {
	query := selectColumns
	if activeOnly {
		query += `WHERE is_active = 1 `
	}
	query += `ORDER BY id`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("asset: list: %w", err)
	}
	defer rows.Close()

	var out []model.DataAsset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetLevel writes a classification outcome onto an asset and stamps the
// scan time.
func (c *Catalog) SetLevel(id int64, level model.SensitivityLevel, classificationID int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := c.db.Exec(
		`UPDATE data_assets SET data_level = ?, classification_id = ?, last_scan_at = ?, updated_at = ?
		 WHERE id = ?`,
		string(level), classificationID, now, now, id,
	)
	if err != nil {
		return fmt.Errorf("asset: set level on %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("asset: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AssetLevel implements the gate's level resolver. Unknown or inactive
// assets report no level and are excluded from gate level checks.
func (c *Catalog) AssetLevel(id int64) (model.SensitivityLevel, bool) {
	var level string
	err := c.db.QueryRow(
		`SELECT data_level FROM data_assets WHERE id = ? AND is_active = 1`, id,
	).Scan(&level)
	if err != nil {
		return "", false
	}
	return model.ParseLevel(level), true
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (model.DataAsset, error) {
	var a model.DataAsset
	var level, createdAt, updatedAt string
	var lastScan sql.NullString
	var active int

	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.AssetType, &a.SourceSystem, &a.SchemaName,
		&a.TableName, &level, &a.ClassificationID, &a.FieldCount, &a.RecordCount, &active,
		&lastScan, &createdAt, &updatedAt)
	if err != nil {
		return model.DataAsset{}, err
	}

	a.Level = model.ParseLevel(level)
	a.Active = active != 0
	if lastScan.Valid {
		if t, err := time.Parse(time.RFC3339Nano, lastScan.String); err == nil {
			a.LastScanAt = &t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		a.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		a.UpdatedAt = t
	}
	return a, nil
}

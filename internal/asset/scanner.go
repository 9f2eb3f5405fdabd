package asset

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/finvault/datafence/internal/classify"
	"github.com/finvault/datafence/internal/model"
)

// ownTables are the governance system's own tables, never registered as
// scanned assets.
var ownTables = map[string]bool{
	"data_assets":        true,
	"system_configs":     true,
	"transfer_approvals": true,
	"risk_assessments":   true,
}

// Scanner discovers table metadata in a source database, registers
// unseen tables as catalog assets and classifies them. Classification
// runs during ingestion, asynchronously relative to transfer decisions.
type Scanner struct {
	catalog *Catalog
}

// NewScanner creates a scanner writing into catalog.
func NewScanner(catalog *Catalog) *Scanner {
	return &Scanner{catalog: catalog}
}

// Scan walks the source database's table metadata. Tables already in
// the catalog are skipped; new ones are saved with their classified
// level. Returns the newly registered assets.
func (s *Scanner) Scan(source *sql.DB, sourceSystem string) ([]model.DataAsset, error) {
	rows, err := source.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("asset: scan metadata: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("asset: scan table name: %w", err)
		}
		if !ownTables[name] {
			tables = append(tables, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var registered []model.DataAsset
	for _, table := range tables {
		code := strings.ToUpper(strings.ReplaceAll(table, ".", "_"))
		if _, err := s.catalog.GetByCode(code); err == nil {
			continue
		}

		fieldCount, err := countColumns(source, table)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		a := model.DataAsset{
			Code:         code,
			Name:         table,
			AssetType:    "table",
			SourceSystem: sourceSystem,
			TableName:    table,
			FieldCount:   fieldCount,
			LastScanAt:   &now,
		}
		result := classify.Classify(a)
		a.Level = result.Level
		a.ClassificationID = result.ClassificationID

		saved, err := s.catalog.Save(a)
		if err != nil {
			return nil, err
		}
		registered = append(registered, saved)
	}

	return registered, nil
}

// Reclassify re-runs the classification engine over every active asset
// and persists changed levels. Manually assigned Public stays untouched:
// the engine never assigns it, and a Public asset is skipped entirely.
func (s *Scanner) Reclassify() (int, error) {
	assets, err := s.catalog.List(true)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, a := range assets {
		if a.Level == model.LevelPublic {
			continue
		}
		result := classify.Classify(a)
		if result.Level == a.Level && result.ClassificationID == a.ClassificationID {
			continue
		}
		if err := s.catalog.SetLevel(a.ID, result.Level, result.ClassificationID); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func countColumns(db *sql.DB, table string) (int, error) {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return 0, fmt.Errorf("asset: table info for %s: %w", table, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	return count, rows.Err()
}

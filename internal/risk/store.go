package risk

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/finvault/datafence/internal/model"
)

// ErrNotFound signals caller misuse: the referenced assessment does not
// exist.
var ErrNotFound = errors.New("risk: assessment not found")

const schema = `
CREATE TABLE IF NOT EXISTS risk_assessments (
	id                           INTEGER PRIMARY KEY AUTOINCREMENT,
	name                         TEXT NOT NULL DEFAULT '',
	code                         TEXT NOT NULL DEFAULT '',
	scenario_id                  INTEGER NOT NULL DEFAULT 0,
	legal_environment_score      REAL,
	data_volume_score            REAL,
	security_measures_score      REAL,
	data_sensitivity_score       REAL,
	personal_info_count          INTEGER NOT NULL DEFAULT 0,
	sensitive_info_count         INTEGER NOT NULL DEFAULT 0,
	exceeds_personal_threshold   INTEGER NOT NULL DEFAULT 0,
	exceeds_sensitive_threshold  INTEGER NOT NULL DEFAULT 0,
	overall_score                REAL,
	risk_level                   TEXT NOT NULL DEFAULT '',
	requires_regulatory_approval INTEGER NOT NULL DEFAULT 0,
	status                       TEXT NOT NULL DEFAULT 'draft',
	created_at                   TEXT NOT NULL,
	updated_at                   TEXT NOT NULL,
	completed_at                 TEXT
);`

// Store persists risk assessments in SQLite. Scoring itself is pure;
// the store only keeps assessment state between calls.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) an assessment store at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("risk: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("risk: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle, creating the schema if
// missing so the store can share the catalog database.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("risk: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new draft assessment and returns it with its id set.
func (s *Store) Create(a model.RiskAssessment) (model.RiskAssessment, error) {
	now := time.Now().UTC()
	a.Status = model.AssessmentDraft
	a.CreatedAt = now
	a.UpdatedAt = now

	res, err := s.db.Exec(
		`INSERT INTO risk_assessments (name, code, scenario_id,
		   legal_environment_score, data_volume_score, security_measures_score, data_sensitivity_score,
		   personal_info_count, sensitive_info_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Code, a.ScenarioID,
		nullFloat(a.LegalEnvironmentScore), nullFloat(a.DataVolumeScore),
		nullFloat(a.SecurityMeasuresScore), nullFloat(a.DataSensitivityScore),
		a.PersonalInfoCount, a.SensitiveInfoCount,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("risk: insert assessment: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("risk: last insert id: %w", err)
	}
	return a, nil
}

// Get returns one assessment by id.
func (s *Store) Get(id int64) (model.RiskAssessment, error) {
	row := s.db.QueryRow(selectColumns+`WHERE id = ?`, id)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RiskAssessment{}, ErrNotFound
	}
	return a, err
}

// List returns all assessments, newest first.
func (s *Store) List() ([]model.RiskAssessment, error) {
	rows, err := s.db.Query(selectColumns + `ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("risk: list assessments: %w", err)
	}
	defer rows.Close()

	var out []model.RiskAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update writes the mutable assessment fields back, including scoring
// outcome. The row must exist.
func (s *Store) Update(a model.RiskAssessment) (model.RiskAssessment, error) {
	now := time.Now().UTC()
	a.UpdatedAt = now

	var completedAt any
	if a.CompletedAt != nil {
		completedAt = a.CompletedAt.Format(time.RFC3339Nano)
	}
	res, err := s.db.Exec(
		`UPDATE risk_assessments SET name = ?, code = ?, scenario_id = ?,
		   legal_environment_score = ?, data_volume_score = ?,
		   security_measures_score = ?, data_sensitivity_score = ?,
		   personal_info_count = ?, sensitive_info_count = ?,
		   exceeds_personal_threshold = ?, exceeds_sensitive_threshold = ?,
		   overall_score = ?, risk_level = ?, requires_regulatory_approval = ?,
		   status = ?, updated_at = ?, completed_at = ?
		 WHERE id = ?`,
		a.Name, a.Code, a.ScenarioID,
		nullFloat(a.LegalEnvironmentScore), nullFloat(a.DataVolumeScore),
		nullFloat(a.SecurityMeasuresScore), nullFloat(a.DataSensitivityScore),
		a.PersonalInfoCount, a.SensitiveInfoCount,
		boolInt(a.ExceedsPersonalThreshold), boolInt(a.ExceedsSensitiveThreshold),
		nullFloat(a.OverallScore), string(a.Level), boolInt(a.RequiresRegulatoryApproval),
		string(a.Status), now.Format(time.RFC3339Nano), completedAt,
		a.ID,
	)
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("risk: update assessment %d: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("risk: rows affected: %w", err)
	}
	if n == 0 {
		return model.RiskAssessment{}, ErrNotFound
	}
	return a, nil
}

const selectColumns = `SELECT id, name, code, scenario_id,
	legal_environment_score, data_volume_score, security_measures_score, data_sensitivity_score,
	personal_info_count, sensitive_info_count,
	exceeds_personal_threshold, exceeds_sensitive_threshold,
	overall_score, risk_level, requires_regulatory_approval,
	status, created_at, updated_at, completed_at FROM risk_assessments `

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (model.RiskAssessment, error) {
	var a model.RiskAssessment
	var legal, volume, security, sensitivity, overall sql.NullFloat64
	var level, status, createdAt, updatedAt string
	var completedAt sql.NullString
	var personalFlag, sensitiveFlag, regulatory int

	err := row.Scan(&a.ID, &a.Name, &a.Code, &a.ScenarioID,
		&legal, &volume, &security, &sensitivity,
		&a.PersonalInfoCount, &a.SensitiveInfoCount,
		&personalFlag, &sensitiveFlag,
		&overall, &level, &regulatory,
		&status, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		return model.RiskAssessment{}, err
	}

	a.LegalEnvironmentScore = floatPtr(legal)
	a.DataVolumeScore = floatPtr(volume)
	a.SecurityMeasuresScore = floatPtr(security)
	a.DataSensitivityScore = floatPtr(sensitivity)
	a.OverallScore = floatPtr(overall)
	a.ExceedsPersonalThreshold = personalFlag != 0
	a.ExceedsSensitiveThreshold = sensitiveFlag != 0
	a.RequiresRegulatoryApproval = regulatory != 0
	a.Level = model.RiskLevel(level)
	a.Status = model.AssessmentStatus(status)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		a.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		a.UpdatedAt = t
	}
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, completedAt.String); err == nil {
			a.CompletedAt = &t
		}
	}
	return a, nil
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

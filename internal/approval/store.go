// Package approval persists transfer approval records. The gate never
// reads this store directly: approved record ids are mirrored into the
// gate's allow set by the caller, and the store is re-read only to seed
// that set at startup.
package approval

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/finvault/datafence/internal/model"
)

// ErrNotFound signals caller misuse: the referenced record does not exist.
var ErrNotFound = errors.New("approval: record not found")

const schema = `
CREATE TABLE IF NOT EXISTS transfer_approvals (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	scenario_id     INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL DEFAULT 'pending',
	asset_ids       TEXT NOT NULL DEFAULT '[]',
	applicant_id    INTEGER NOT NULL DEFAULT 0,
	approver_id     INTEGER NOT NULL DEFAULT 0,
	comment         TEXT NOT NULL DEFAULT '',
	rejected_reason TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL,
	approved_at     TEXT,
	resolved_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_transfer_approvals_status ON transfer_approvals(status);`

// Store manages approval records in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) an approval store at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("approval: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("approval: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle, creating the schema if
// missing so the store can share the catalog database.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("approval: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new pending record and returns it with its id set.
func (s *Store) Create(scenarioID, applicantID int64, assetIDs []int64) (model.ApprovalRecord, error) {
	rec := model.ApprovalRecord{
		ScenarioID:  scenarioID,
		Status:      model.ApprovalPending,
		AssetIDs:    assetIDs,
		ApplicantID: applicantID,
		CreatedAt:   time.Now().UTC(),
	}
	assets, err := json.Marshal(rec.AssetIDs)
	if err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("approval: marshal asset ids: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO transfer_approvals (scenario_id, status, asset_ids, applicant_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ScenarioID, string(rec.Status), string(assets), rec.ApplicantID,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("approval: insert: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("approval: last insert id: %w", err)
	}
	return rec, nil
}

// Get returns one record by id.
func (s *Store) Get(id int64) (model.ApprovalRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, scenario_id, status, asset_ids, applicant_id, approver_id,
		        comment, rejected_reason, created_at, approved_at, resolved_at
		 FROM transfer_approvals WHERE id = ?`, id)
	return scanRecord(row)
}

// List returns records, optionally filtered by status, newest first.
func (s *Store) List(status model.ApprovalStatus) ([]model.ApprovalRecord, error) {
	query := `SELECT id, scenario_id, status, asset_ids, applicant_id, approver_id,
	                 comment, rejected_reason, created_at, approved_at, resolved_at
	          FROM transfer_approvals`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("approval: list: %w", err)
	}
	defer rows.Close()

	var out []model.ApprovalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ApprovedIDs returns the ids of all approved records, for seeding the
// gate allow set at startup.
func (s *Store) ApprovedIDs() ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT id FROM transfer_approvals WHERE status = ?`, string(model.ApprovalApproved))
	if err != nil {
		return nil, fmt.Errorf("approval: approved ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("approval: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Approve marks a pending record approved and returns the update.
func (s *Store) Approve(id, approverID int64, comment string) (model.ApprovalRecord, error) {
	return s.resolve(id, model.ApprovalApproved, approverID, comment, "")
}

// Reject marks a pending record rejected with a reason.
func (s *Store) Reject(id, approverID int64, reason string) (model.ApprovalRecord, error) {
	return s.resolve(id, model.ApprovalRejected, approverID, "", reason)
}

// Cancel withdraws a pending record.
func (s *Store) Cancel(id int64) (model.ApprovalRecord, error) {
	return s.resolve(id, model.ApprovalCancelled, 0, "", "")
}

// resolve transitions a record out of pending. Only pending records can
// be resolved; anything else is caller misuse.
func (s *Store) resolve(id int64, to model.ApprovalStatus, approverID int64, comment, reason string) (model.ApprovalRecord, error) {
	rec, err := s.Get(id)
	if err != nil {
		return model.ApprovalRecord{}, err
	}
	if rec.Status != model.ApprovalPending {
		return model.ApprovalRecord{}, fmt.Errorf("approval: record %d is %s, only pending records can be resolved", id, rec.Status)
	}

	now := time.Now().UTC()
	rec.Status = to
	rec.ResolvedAt = &now
	if to == model.ApprovalApproved {
		rec.ApprovedAt = &now
		rec.ApproverID = approverID
		rec.Comment = comment
	}
	if to == model.ApprovalRejected {
		rec.ApproverID = approverID
		rec.RejectedReason = reason
	}

	var approvedAt any
	if rec.ApprovedAt != nil {
		approvedAt = rec.ApprovedAt.Format(time.RFC3339Nano)
	}
	_, err = s.db.Exec(
		`UPDATE transfer_approvals
		 SET status = ?, approver_id = ?, comment = ?, rejected_reason = ?, approved_at = ?, resolved_at = ?
		 WHERE id = ?`,
		string(rec.Status), rec.ApproverID, rec.Comment, rec.RejectedReason,
		approvedAt, now.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("approval: update %d: %w", id, err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.ApprovalRecord, error) {
	var rec model.ApprovalRecord
	var assets, createdAt string
	var approvedAt, resolvedAt sql.NullString

	err := row.Scan(&rec.ID, &rec.ScenarioID, &rec.Status, &assets, &rec.ApplicantID,
		&rec.ApproverID, &rec.Comment, &rec.RejectedReason, &createdAt, &approvedAt, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ApprovalRecord{}, ErrNotFound
	}
	if err != nil {
		return model.ApprovalRecord{}, fmt.Errorf("approval: scan: %w", err)
	}

	if err := json.Unmarshal([]byte(assets), &rec.AssetIDs); err != nil {
		rec.AssetIDs = nil
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if approvedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, approvedAt.String); err == nil {
			rec.ApprovedAt = &t
		}
	}
	if resolvedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, resolvedAt.String); err == nil {
			rec.ResolvedAt = &t
		}
	}
	return rec, nil
}

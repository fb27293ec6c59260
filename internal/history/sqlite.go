package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite assessment history store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanAssessment scans a row into an Assessment struct.
func scanAssessment(s scanner) (*Assessment, error) {
	a := &Assessment{}
	err := s.Scan(
		&a.ID, &a.PatientID, &a.AgentID, &a.Phenotype,
		&a.Success, &a.Summary, &a.Response,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_id TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		phenotype TEXT DEFAULT '',
		success INTEGER NOT NULL DEFAULT 0,
		summary TEXT DEFAULT '',
		response TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_patient_id ON assessments(patient_id);
	CREATE INDEX IF NOT EXISTS idx_assessments_agent_id ON assessments(agent_id);
	CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save appends an assessment run.
func (s *SQLiteStore) Save(ctx context.Context, assessment *Assessment) error {
	now := time.Now()
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = now
	}
	assessment.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			patient_id, agent_id, phenotype, success,
			summary, response, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		assessment.PatientID,
		assessment.AgentID,
		assessment.Phenotype,
		assessment.Success,
		assessment.Summary,
		assessment.Response,
		assessment.CreatedAt,
		assessment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	assessment.ID = id

	return nil
}

// Get retrieves the most recent assessment for a patient and agent.
func (s *SQLiteStore) Get(ctx context.Context, patientID, agentID string) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, agent_id, phenotype, success,
			summary, response, created_at, updated_at
		FROM assessments
		WHERE patient_id = ? AND agent_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, patientID, agentID)

	a, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return a, nil
}

// List returns assessments newest first with pagination.
func (s *SQLiteStore) List(ctx context.Context, patientID string, limit, offset int) ([]*Assessment, error) {
	query := `
		SELECT id, patient_id, agent_id, phenotype, success,
			summary, response, created_at, updated_at
		FROM assessments
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	args := []any{limit, offset}

	if patientID != "" {
		query = `
			SELECT id, patient_id, agent_id, phenotype, success,
				summary, response, created_at, updated_at
			FROM assessments
			WHERE patient_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ? OFFSET ?
		`
		args = []any{patientID, limit, offset}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Count returns the total number of recorded assessments.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	return count, err
}

// Delete removes an assessment by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = ?", id)
	return err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all assessments to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, "", maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list assessments: %w", err)
	}

	export := &AssessmentExport{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Count:       len(all),
		Assessments: all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON imports assessments from a JSON reader. Entries matching
// an existing (patient, agent, created_at) row are skipped so repeated
// imports of the same export are idempotent.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export AssessmentExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, a := range export.Assessments {
		var existing int64
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM assessments
			WHERE patient_id = ? AND agent_id = ? AND created_at = ?
		`, a.PatientID, a.AgentID, a.CreatedAt).Scan(&existing)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}

		if existing > 0 {
			skipped++
			continue
		}

		if err := s.Save(ctx, a); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

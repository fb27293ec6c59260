package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL assessment history store.
// It expects the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL assessment history
// store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save appends an assessment run.
func (s *PostgresStore) Save(ctx context.Context, assessment *Assessment) error {
	now := time.Now()
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = now
	}
	assessment.UpdatedAt = now

	query := `
		INSERT INTO assessments (
			patient_id, agent_id, phenotype, success,
			summary, response, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		assessment.PatientID,
		assessment.AgentID,
		assessment.Phenotype,
		assessment.Success,
		assessment.Summary,
		assessment.Response,
		assessment.CreatedAt,
		assessment.UpdatedAt,
	).Scan(&assessment.ID)

	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	return nil
}

// Get retrieves the most recent assessment for a patient and agent.
func (s *PostgresStore) Get(ctx context.Context, patientID, agentID string) (*Assessment, error) {
	query := `
		SELECT id, patient_id, agent_id, phenotype, success,
			summary, response, created_at, updated_at
		FROM assessments
		WHERE patient_id = $1 AND agent_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	a := &Assessment{}
	err := s.db.QueryRowContext(ctx, query, patientID, agentID).Scan(
		&a.ID, &a.PatientID, &a.AgentID, &a.Phenotype,
		&a.Success, &a.Summary, &a.Response,
		&a.CreatedAt, &a.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

// List returns assessments newest first with pagination.
func (s *PostgresStore) List(ctx context.Context, patientID string, limit, offset int) ([]*Assessment, error) {
	query := `
		SELECT id, patient_id, agent_id, phenotype, success,
			summary, response, created_at, updated_at
		FROM assessments
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	args := []any{limit, offset}

	if patientID != "" {
		query = `
			SELECT id, patient_id, agent_id, phenotype, success,
				summary, response, created_at, updated_at
			FROM assessments
			WHERE patient_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2 OFFSET $3
		`
		args = []any{patientID, limit, offset}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var result []*Assessment
	for rows.Next() {
		a := &Assessment{}
		err := rows.Scan(
			&a.ID, &a.PatientID, &a.AgentID, &a.Phenotype,
			&a.Success, &a.Summary, &a.Response,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, a)
	}

	return result, rows.Err()
}

// Count returns the total number of recorded assessments.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

// Delete removes an assessment by ID.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	return nil
}

// pgMaxExportLimit is the maximum number of entries to export at once.
const pgMaxExportLimit = 1000000

// ExportJSON exports all assessments to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, "", pgMaxExportLimit, 0)
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
// an existing (patient, agent, created_at) row are skipped.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export AssessmentExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, a := range export.Assessments {
		var existing int64
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM assessments
			WHERE patient_id = $1 AND agent_id = $2 AND created_at = $3
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

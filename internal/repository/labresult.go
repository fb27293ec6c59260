package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// LabResultRepository handles persistence of interpreted lab measurements
type LabResultRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewLabResultRepository creates a new lab result repository
func NewLabResultRepository(db *pgxpool.Pool, logger *logrus.Logger) *LabResultRepository {
	return &LabResultRepository{
		db:  db,
		log: logger,
	}
}

// SaveReport inserts the interpreted entries of one lab upload. Entries
// without an ID are assigned one.
func (r *LabResultRepository) SaveReport(ctx context.Context, results []*domain.PatientLabResult) error {
	if len(results) == 0 {
		return nil
	}

	query := `
		INSERT INTO lab_results (
			id, patient_id, test_name, value, unit,
			reference_range, status, pcos_related, collected_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	for _, result := range results {
		if result.ID == "" {
			result.ID = uuid.New().String()
		}

		_, err := r.db.Exec(ctx, query,
			result.ID,
			result.PatientID,
			result.TestName,
			result.Value,
			result.Unit,
			result.ReferenceRange,
			result.Status,
			result.PCOSRelated,
			result.CollectedAt,
		)

		if err != nil {
			r.log.WithFields(logrus.Fields{
				"patient_id": result.PatientID,
				"test_name":  result.TestName,
				"error":      err,
			}).Error("Failed to save lab result")
			return fmt.Errorf("saving lab result: %w", err)
		}
	}

	r.log.WithFields(logrus.Fields{
		"patient_id":   results[0].PatientID,
		"result_count": len(results),
	}).Info("Lab report saved successfully")

	return nil
}

// ListByPatient retrieves a patient's lab results with pagination, most
// recently collected first
func (r *LabResultRepository) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*domain.PatientLabResult, error) {
	query := `
		SELECT id, patient_id, test_name, value, unit,
			   reference_range, status, pcos_related, collected_at, created_at, updated_at
		FROM lab_results
		WHERE patient_id = $1
		ORDER BY collected_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, patientID, limit, offset)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      err,
		}).Error("Failed to list lab results")
		return nil, fmt.Errorf("listing lab results: %w", err)
	}
	defer rows.Close()

	var results []*domain.PatientLabResult
	for rows.Next() {
		var result domain.PatientLabResult

		err := rows.Scan(
			&result.ID,
			&result.PatientID,
			&result.TestName,
			&result.Value,
			&result.Unit,
			&result.ReferenceRange,
			&result.Status,
			&result.PCOSRelated,
			&result.CollectedAt,
			&result.CreatedAt,
			&result.UpdatedAt,
		)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"patient_id": patientID,
				"error":      err,
			}).Error("Failed to scan lab result row")
			return nil, fmt.Errorf("scanning lab result row: %w", err)
		}

		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lab result rows: %w", err)
	}

	return results, nil
}

// LatestCollectedAt returns the collection time of the patient's most
// recent lab result
func (r *LabResultRepository) LatestCollectedAt(ctx context.Context, patientID string) (time.Time, error) {
	query := `
		SELECT collected_at
		FROM lab_results
		WHERE patient_id = $1
		ORDER BY collected_at DESC
		LIMIT 1`

	var collectedAt time.Time

	err := r.db.QueryRow(ctx, query, patientID).Scan(&collectedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return time.Time{}, fmt.Errorf("no lab results recorded: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      err,
		}).Error("Failed to get latest lab collection time")
		return time.Time{}, fmt.Errorf("getting latest lab collection time: %w", err)
	}

	return collectedAt, nil
}

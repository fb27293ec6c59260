// Package history provides persistent storage for completed assessment
// runs. Each agent invocation that produces a result is recorded so
// clinicians can review how a patient's workup evolved over time.
package history

import (
	"context"
	"io"
	"time"
)

// Assessment is one recorded agent run for a patient. Response holds
// the full serialized agent envelope; Phenotype and Summary are
// denormalized from it for listing without JSON decoding.
type Assessment struct {
	ID        int64     `json:"id,omitempty"`
	PatientID string    `json:"patient_id"`
	AgentID   string    `json:"agent_id"`
	Phenotype string    `json:"phenotype,omitempty"`
	Success   bool      `json:"success"`
	Summary   string    `json:"summary,omitempty"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for assessment history storage.
type Store interface {
	// Save appends an assessment run. A zero CreatedAt is stamped with
	// the current time; a non-zero one (imports) is preserved.
	Save(ctx context.Context, assessment *Assessment) error

	// Get retrieves the most recent assessment for a patient and agent.
	// Returns nil without error when none exists.
	Get(ctx context.Context, patientID, agentID string) (*Assessment, error)

	// List returns assessments newest first with pagination. An empty
	// patientID lists across all patients.
	List(ctx context.Context, patientID string, limit, offset int) ([]*Assessment, error)

	// Count returns the total number of recorded assessments.
	Count(ctx context.Context) (int64, error)

	// Delete removes an assessment by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all assessments to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports assessments from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// AssessmentExport represents the JSON export format.
type AssessmentExport struct {
	Version     string        `json:"version"`
	ExportedAt  time.Time     `json:"exported_at"`
	Count       int           `json:"count"`
	Assessments []*Assessment `json:"assessments"`
}

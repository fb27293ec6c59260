package domain

import (
	"time"
)

// PatientLabResult represents a lab measurement persisted for longitudinal
// tracking, after interpretation against its reference range.
type PatientLabResult struct {
	ID             string    `json:"id" db:"id"`
	PatientID      string    `json:"patient_id" db:"patient_id"`
	TestName       string    `json:"test_name" db:"test_name"`
	Value          float64   `json:"value" db:"value"`
	Unit           string    `json:"unit" db:"unit"`
	ReferenceRange string    `json:"reference_range" db:"reference_range"`
	Status         LabStatus `json:"status" db:"status"`
	PCOSRelated    bool      `json:"pcos_related" db:"pcos_related"`
	CollectedAt    time.Time `json:"collected_at" db:"collected_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// ProcessRequest represents an incoming agent invocation over HTTP. The
// patient data mapping is handed to the agent unmodified.
type ProcessRequest struct {
	PatientData map[string]any    `json:"patient_data" binding:"required"`
	RequestID   string            `json:"request_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// LabReportRequest represents an uploaded batch of lab results for one
// patient.
type LabReportRequest struct {
	PatientID  string      `json:"patient_id" binding:"required"`
	LabResults []LabResult `json:"lab_results" binding:"required"`
}

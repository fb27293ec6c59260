package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/history"
)

// ErrHistoryNotConfigured reports that the service runs without a history
// store, so listing operations have nothing to read.
var ErrHistoryNotConfigured = errors.New("assessment history is not configured")

// AgentDispatcher runs a registered care-pathway agent against a patient
// record. Satisfied by the agent registry.
type AgentDispatcher interface {
	Process(ctx context.Context, agentID string, record domain.PatientRecord) (*domain.AgentResponse, error)
}

// AssessmentService dispatches patient records to care-pathway agents and
// records completed runs in the assessment history
type AssessmentService struct {
	logger     *logrus.Logger
	dispatcher AgentDispatcher
	store      history.Store
}

// NewAssessmentService creates a new assessment service. A nil store disables
// history recording.
func NewAssessmentService(logger *logrus.Logger, dispatcher AgentDispatcher, store history.Store) *AssessmentService {
	return &AssessmentService{
		logger:     logger,
		dispatcher: dispatcher,
		store:      store,
	}
}

// Assess performs the complete assess-and-record workflow for one agent run
func (s *AssessmentService) Assess(ctx context.Context, params *AssessParams) (*AssessResult, error) {
	startTime := time.Now()

	if err := s.validateAssessInput(params); err != nil {
		return nil, fmt.Errorf("invalid input parameters: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"agent_id":    params.AgentID,
		"field_count": len(params.Record),
	}).Info("Starting patient assessment")

	// Step 1: Dispatch the record to the requested agent
	response, err := s.dispatcher.Process(ctx, params.AgentID, params.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch record: %w", err)
	}

	// Step 2: Extract the identifiers the history entry is keyed on
	patientID := params.Record.String("patient_id")
	phenotype := extractPhenotype(response)

	// Step 3: Record the completed run in the assessment history
	recorded, assessmentID := s.recordRun(ctx, patientID, params.AgentID, phenotype, response)

	result := &AssessResult{
		AssessmentID:   assessmentID,
		AgentID:        params.AgentID,
		PatientID:      patientID,
		Phenotype:      phenotype,
		Response:       response,
		Recorded:       recorded,
		ProcessingTime: time.Since(startTime),
	}

	s.logger.WithFields(logrus.Fields{
		"agent_id":        result.AgentID,
		"patient_id":      result.PatientID,
		"success":         response.Success,
		"recorded":        result.Recorded,
		"processing_time": result.ProcessingTime,
	}).Info("Patient assessment completed")

	return result, nil
}

// History lists recorded assessments, newest first
func (s *AssessmentService) History(ctx context.Context, params *HistoryParams) (*HistoryResult, error) {
	if s.store == nil {
		return nil, ErrHistoryNotConfigured
	}

	limit, offset := params.Limit, params.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	s.logger.WithFields(logrus.Fields{
		"patient_id": params.PatientID,
		"limit":      limit,
		"offset":     offset,
	}).Debug("Listing assessment history")

	assessments, err := s.store.List(ctx, params.PatientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	total, _ := s.store.Count(ctx)
	return &HistoryResult{
		Assessments: assessments,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	}, nil
}

// validateAssessInput ensures the request names a target agent
func (s *AssessmentService) validateAssessInput(params *AssessParams) error {
	if params == nil || params.AgentID == "" {
		return fmt.Errorf("agent id is required. Examples: 'patient_intake' or 'identify_phenotype'")
	}
	return nil
}

// recordRun persists a completed agent run. Storage failures downgrade to a
// warning so the assessment still returns to the caller.
func (s *AssessmentService) recordRun(ctx context.Context, patientID, agentID, phenotype string, response *domain.AgentResponse) (bool, int64) {
	if s.store == nil {
		return false, 0
	}

	payload, err := response.JSON()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to serialize agent response, skipping history entry")
		return false, 0
	}

	assessment := &history.Assessment{
		PatientID: patientID,
		AgentID:   agentID,
		Phenotype: phenotype,
		Success:   response.Success,
		Summary:   response.Message,
		Response:  payload,
	}
	if err := s.store.Save(ctx, assessment); err != nil {
		s.logger.WithError(err).Warn("Failed to record assessment, proceeding without history entry")
		return false, 0
	}

	return true, assessment.ID
}

// extractPhenotype pulls the phenotype label out of an agent response when the
// agent produced one. The in-process value is a domain.Phenotype; responses
// that round-tripped through JSON carry a plain string.
func extractPhenotype(response *domain.AgentResponse) string {
	if response == nil || response.Data == nil {
		return ""
	}
	switch v := response.Data["phenotype"].(type) {
	case domain.Phenotype:
		return string(v)
	case string:
		return v
	}
	return ""
}

// Data structures for the service API

// AssessParams parameters for running an agent assessment
type AssessParams struct {
	AgentID string               `json:"agent_id"`
	Record  domain.PatientRecord `json:"record"`
}

// AssessResult result of an agent assessment
type AssessResult struct {
	AssessmentID   int64                 `json:"assessment_id,omitempty"`
	AgentID        string                `json:"agent_id"`
	PatientID      string                `json:"patient_id,omitempty"`
	Phenotype      string                `json:"phenotype,omitempty"`
	Response       *domain.AgentResponse `json:"response"`
	Recorded       bool                  `json:"recorded"`
	ProcessingTime time.Duration         `json:"processing_time"`
}

// HistoryParams parameters for listing recorded assessments
type HistoryParams struct {
	PatientID string `json:"patient_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// HistoryResult one page of recorded assessments
type HistoryResult struct {
	Assessments []*history.Assessment `json:"assessments"`
	Total       int64                 `json:"total"`
	Limit       int                   `json:"limit"`
	Offset      int                   `json:"offset"`
}

package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// UploadLabsAgent ingests uploaded lab results, normalizes and
// classifies each test and reports which core PCOS labs are still
// missing from the workup.
type UploadLabsAgent struct {
	logger    *logrus.Logger
	processor *service.LabReportProcessor
	required  []string
}

// NewUploadLabsAgent creates the lab upload agent and its report
// processor.
func NewUploadLabsAgent(logger *logrus.Logger) *UploadLabsAgent {
	return &UploadLabsAgent{
		logger:    logger,
		processor: service.NewLabReportProcessor(logger),
		required:  []string{"lab_results", "patient_id"},
	}
}

func (a *UploadLabsAgent) Name() string { return "Upload Labs Agent" }

func (a *UploadLabsAgent) Description() string {
	return "Manages the upload and processing of lab results"
}

func (a *UploadLabsAgent) RequiredData() []string { return a.required }

// Process validates that lab results were supplied and runs the report
// processor. Malformed individual entries do not fail the upload; they
// are reported per-entry inside processed_results. When core PCOS labs
// are still missing, recommend_labs is suggested as a follow-up step.
func (a *UploadLabsAgent) Process(ctx context.Context, record domain.PatientRecord) *domain.AgentResponse {
	a.logger.WithField("agent", StepProcessLabReport).Debug("Processing agent request")

	rawLabs, ok := record["lab_results"].([]any)
	if !ok || len(rawLabs) == 0 {
		return &domain.AgentResponse{
			Success: false,
			Message: "No lab results provided",
		}
	}

	report := a.processor.Process(ctx, rawLabs)

	nextSteps := []string{StepIdentifyPhenotype}
	if len(report.MissingCoreLabs) > 0 {
		nextSteps = append(nextSteps, StepRecommendLabs)
	}

	return domain.NewSuccessResponse(
		"Lab results processed successfully",
		map[string]any{
			"processed_results":     report.ProcessedPayloads(),
			"summary":               report.Summary,
			"missing_required_labs": report.MissingCoreLabs,
		},
		nextSteps,
	)
}

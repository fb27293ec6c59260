package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/knowledge"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// LabsAgent recommends the lab panels a patient should complete next,
// based on symptoms, history and how recent their previous workup is.
type LabsAgent struct {
	logger      *logrus.Logger
	recommender *service.LabRecommender
	required    []string
}

// NewLabsAgent creates the labs agent and its panel recommender.
func NewLabsAgent(logger *logrus.Logger, cfg domain.CDSConfig) *LabsAgent {
	return &LabsAgent{
		logger:      logger,
		recommender: service.NewLabRecommender(logger, cfg),
		required: []string{
			"patient_id", "previous_labs", "symptoms",
			"medical_history", "current_medications",
		},
	}
}

func (a *LabsAgent) Name() string { return "Labs Agent" }

func (a *LabsAgent) Description() string {
	return "Recommends necessary lab tests based on patient profile and missing information"
}

func (a *LabsAgent) RequiredData() []string { return a.required }

// Process selects the indicated lab panels and pairs them with
// preparation and scheduling instructions. Unparseable previous-lab
// dates surface as a fault response.
func (a *LabsAgent) Process(ctx context.Context, record domain.PatientRecord) *domain.AgentResponse {
	a.logger.WithField("agent", StepRecommendLabs).Debug("Processing agent request")

	if missing := record.MissingFields(a.required); len(missing) > 0 {
		return domain.NewMissingDataResponse("lab recommendations", missing)
	}

	panels, err := a.recommender.Recommend(ctx, record)
	if err != nil {
		return domain.NewFaultResponse("generating lab recommendations", err)
	}

	return domain.NewSuccessResponse(
		"Lab recommendations generated successfully",
		map[string]any{
			"recommended_labs":       panels,
			"follow_up_instructions": a.recommender.FollowUpInstructions(panels),
			"all_lab_panels":         knowledge.LabPanelIndex(),
		},
		[]string{StepNutritionPlan, StepGynecologyReview},
	)
}

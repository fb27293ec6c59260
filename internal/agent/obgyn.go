package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// OBGYNAgent runs the gynecological review: menstrual health,
// contraception fit, fertility status, symptom management and
// preventive screenings.
type OBGYNAgent struct {
	logger   *logrus.Logger
	gyn      *service.GynecologyService
	required []string
}

// NewOBGYNAgent creates the OBGYN agent and its review service.
func NewOBGYNAgent(logger *logrus.Logger) *OBGYNAgent {
	return &OBGYNAgent{
		logger: logger,
		gyn:    service.NewGynecologyService(logger),
		required: []string{
			"age", "menstrual_history", "contraception_needs",
			"fertility_goals", "current_symptoms", "medical_history",
			"previous_treatments",
		},
	}
}

func (a *OBGYNAgent) Name() string { return "OBGYN Agent" }

func (a *OBGYNAgent) Description() string {
	return "Provides specialized gynecological care and support for PCOS patients"
}

func (a *OBGYNAgent) RequiredData() []string { return a.required }

// Process runs the full gynecology review. Patients planning a
// pregnancy additionally get a fertility specialist referral in the
// suggested next steps.
func (a *OBGYNAgent) Process(ctx context.Context, record domain.PatientRecord) *domain.AgentResponse {
	a.logger.WithField("agent", StepGynecologyReview).Debug("Processing agent request")

	if missing := record.MissingFields(a.required); len(missing) > 0 {
		return domain.NewMissingDataResponse("OBGYN recommendations", missing)
	}

	review := a.gyn.Review(ctx, record)

	nextSteps := []string{StepNutritionPlan, StepFitnessCoach}
	if record.SectionBool("fertility_goals", "planning_pregnancy") {
		nextSteps = append(nextSteps, StepFertilitySpecialist)
	}

	return domain.NewSuccessResponse(
		"OBGYN recommendations generated successfully",
		review,
		nextSteps,
	)
}

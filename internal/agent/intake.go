package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// IntakeAgent performs the initial biological assessment of a new
// patient: BMI, symptom screening and baseline risk factors.
type IntakeAgent struct {
	logger   *logrus.Logger
	intake   *service.IntakeService
	required []string
}

// NewIntakeAgent creates the intake agent and its assessment service.
func NewIntakeAgent(logger *logrus.Logger) *IntakeAgent {
	return &IntakeAgent{
		logger: logger,
		intake: service.NewIntakeService(logger),
		required: []string{
			"age", "weight", "height", "menstrual_cycle_regularity",
			"symptoms", "medical_history", "family_history",
		},
	}
}

func (a *IntakeAgent) Name() string { return "Biology Agent" }

func (a *IntakeAgent) Description() string {
	return "Handles initial patient intake and biological assessment"
}

func (a *IntakeAgent) RequiredData() []string { return a.required }

// Process validates the intake record and runs the biological
// assessment. Non-numeric anthropometrics surface as a fault response.
func (a *IntakeAgent) Process(ctx context.Context, record domain.PatientRecord) *domain.AgentResponse {
	a.logger.WithField("agent", StepPatientIntake).Debug("Processing agent request")

	if missing := record.MissingFields(a.required); len(missing) > 0 {
		return domain.NewMissingDataResponse("", missing)
	}

	result, err := a.intake.Assess(ctx, record)
	if err != nil {
		return domain.NewFaultResponse("processing biological data", err)
	}

	return domain.NewSuccessResponse(
		"Biological assessment completed",
		map[string]any{
			"assessment": result.Assessment,
			"bmi":        result.BMI,
		},
		[]string{StepProcessLabReport, StepIdentifyPhenotype},
	)
}

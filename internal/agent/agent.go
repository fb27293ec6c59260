package agent

import (
	"context"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// Care-pathway step identifiers. Every agent registers under one of
// these, and NextSteps in agent responses reference them. The referral
// steps at the bottom have no agent behind them; they are suggestions
// for the caller to route to an external specialist.
const (
	StepPatientIntake     = "patient_intake"
	StepProcessLabReport  = "process_lab_report"
	StepIdentifyPhenotype = "identify_phenotype"
	StepRootCauseAnalysis = "root_cause_analysis"
	StepRecommendLabs     = "recommend_labs"
	StepNutritionPlan     = "nutrition_plan"
	StepGynecologyReview  = "gynecology_review"

	StepFitnessCoach        = "fitness_coach"
	StepFertilitySpecialist = "fertility_specialist"
)

// Agent is one specialist in the PCOS care pathway. Process never
// returns a Go error: validation failures and evaluation faults are
// reported through the response envelope so every caller sees a
// uniform shape.
type Agent interface {
	// Name returns the human-readable agent name.
	Name() string

	// Description returns a one-line summary of what the agent does.
	Description() string

	// RequiredData lists the top-level record fields the agent expects.
	// Absent fields produce a missing-data response from Process.
	RequiredData() []string

	// Process evaluates the patient record and returns the agent's
	// findings, recommendations and suggested next steps.
	Process(ctx context.Context, record domain.PatientRecord) *domain.AgentResponse
}

// Info describes a registered agent for discovery endpoints.
type Info struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	RequiredData []string `json:"required_data"`
}

// Describe builds the discovery record for an agent registered under id.
func Describe(id string, a Agent) Info {
	return Info{
		ID:           id,
		Name:         a.Name(),
		Description:  a.Description(),
		RequiredData: a.RequiredData(),
	}
}

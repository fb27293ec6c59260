package agent

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/knowledge"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// PhenotypeAgent classifies a patient record into one of the four
// Rotterdam PCOS phenotypes and attaches phenotype-appropriate
// management guidance.
type PhenotypeAgent struct {
	logger     *logrus.Logger
	classifier *service.RotterdamClassifier
	required   []string
}

// NewPhenotypeAgent creates the phenotype agent and its classifier.
func NewPhenotypeAgent(logger *logrus.Logger) *PhenotypeAgent {
	return &PhenotypeAgent{
		logger:     logger,
		classifier: service.NewRotterdamClassifier(logger),
		required: []string{
			"menstrual_cycle_regularity", "clinical_hyperandrogenism",
			"biochemical_hyperandrogenism", "ultrasound_results",
		},
	}
}

func (a *PhenotypeAgent) Name() string { return "Identify Phenotype Agent" }

func (a *PhenotypeAgent) Description() string {
	return "Identifies the PCOS phenotype based on symptoms and test results"
}

func (a *PhenotypeAgent) RequiredData() []string { return a.required }

// Process evaluates the Rotterdam criteria and returns the phenotype
// label, the criteria that supported it, the management plan and the
// full phenotype reference for client display.
func (a *PhenotypeAgent) Process(ctx context.Context, record domain.PatientRecord) *domain.AgentResponse {
	a.logger.WithField("agent", StepIdentifyPhenotype).Debug("Processing agent request")

	if missing := record.MissingFields(a.required); len(missing) > 0 {
		return domain.NewMissingDataResponse("phenotype identification", missing)
	}

	result := a.classifier.ClassifyRecord(ctx, record)
	management := a.classifier.ManagementRecommendations(result.Phenotype, record)

	return domain.NewSuccessResponse(
		fmt.Sprintf("Phenotype identification complete: %s", result.Phenotype),
		map[string]any{
			"phenotype":    result.Phenotype,
			"criteria_met": result.Criteria,
			"management_recommendations": map[string]any{
				"lifestyle":  management.Lifestyle,
				"medical":    management.Medical,
				"monitoring": management.Monitoring,
			},
			"all_phenotypes": knowledge.PhenotypeProfiles(),
		},
		[]string{StepRootCauseAnalysis, StepNutritionPlan},
	)
}

package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// DieticianAgent produces phenotype-tailored dietary guidance, a sample
// meal plan, recipe suggestions and practical tips.
type DieticianAgent struct {
	logger   *logrus.Logger
	planner  *service.NutritionPlanner
	required []string
}

// NewDieticianAgent creates the dietician agent and its meal planner.
func NewDieticianAgent(logger *logrus.Logger) *DieticianAgent {
	return &DieticianAgent{
		logger:  logger,
		planner: service.NewNutritionPlanner(logger),
		required: []string{
			"pcos_phenotype", "dietary_preferences", "food_allergies",
			"weight_goals", "current_diet",
		},
	}
}

func (a *DieticianAgent) Name() string { return "Dietician Agent" }

func (a *DieticianAgent) Description() string {
	return "Provides personalized dietary recommendations for PCOS management"
}

func (a *DieticianAgent) RequiredData() []string { return a.required }

// Process assembles the full nutrition package for the record's
// phenotype, honoring dietary preferences and allergies.
func (a *DieticianAgent) Process(ctx context.Context, record domain.PatientRecord) *domain.AgentResponse {
	a.logger.WithField("agent", StepNutritionPlan).Debug("Processing agent request")

	if missing := record.MissingFields(a.required); len(missing) > 0 {
		return domain.NewMissingDataResponse("dietary recommendations", missing)
	}

	return domain.NewSuccessResponse(
		"Dietary recommendations generated successfully",
		map[string]any{
			"dietary_recommendations": a.planner.Guidance(ctx, record),
			"sample_meal_plan":        a.planner.MealPlan(ctx, record),
			"recipe_suggestions":      a.planner.RecipeSuggestions(),
			"helpful_tips":            a.planner.HelpfulTips(record),
		},
		[]string{StepFitnessCoach, StepGynecologyReview},
	)
}

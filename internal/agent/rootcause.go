package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/knowledge"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// RootCauseAgent ranks the physiological drivers that best explain a
// patient's PCOS presentation and derives targeted recommendations for
// the strongest candidates.
type RootCauseAgent struct {
	logger   *logrus.Logger
	analyzer *service.RootCauseAnalyzer
	required []string
}

// NewRootCauseAgent creates the root cause agent and its analyzer.
func NewRootCauseAgent(logger *logrus.Logger, cfg domain.CDSConfig) *RootCauseAgent {
	return &RootCauseAgent{
		logger:   logger,
		analyzer: service.NewRootCauseAnalyzer(logger, cfg),
		required: []string{
			"symptoms", "lab_results", "medical_history", "lifestyle_factors",
		},
	}
}

func (a *RootCauseAgent) Name() string { return "Root Cause Analysis Agent" }

func (a *RootCauseAgent) Description() string {
	return "Identifies underlying causes and contributing factors to PCOS symptoms"
}

func (a *RootCauseAgent) RequiredData() []string { return a.required }

// Process scores every known root cause against the record's evidence
// and returns the ranked list, channelized recommendations and the full
// cause reference for client display.
func (a *RootCauseAgent) Process(ctx context.Context, record domain.PatientRecord) *domain.AgentResponse {
	a.logger.WithField("agent", StepRootCauseAnalysis).Debug("Processing agent request")

	if missing := record.MissingFields(a.required); len(missing) > 0 {
		return domain.NewMissingDataResponse("root cause analysis", missing)
	}

	causes := a.analyzer.Analyze(ctx, record)
	recommendations := a.analyzer.Recommendations(causes)

	return domain.NewSuccessResponse(
		"Root cause analysis completed",
		map[string]any{
			"root_causes":         causes,
			"recommendations":     recommendations.Map(),
			"all_possible_causes": knowledge.RootCauseIndex(),
		},
		[]string{StepRecommendLabs, StepNutritionPlan},
	)
}

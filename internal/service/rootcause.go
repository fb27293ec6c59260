package service

import (
	"context"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/knowledge"
)

// RootCauseAnalyzer scores the catalogued root causes of PCOS symptoms
// against a patient record and turns the ranking into a four-channel
// care plan.
type RootCauseAnalyzer struct {
	logger        *logrus.Logger
	evaluator     *EvidenceEvaluator
	topCauses     int
	minConfidence float64
}

// NewRootCauseAnalyzer creates a root-cause analyzer. topCauses bounds
// how many leading causes receive cause-specific recommendations and
// minConfidence is the score floor for that advice.
func NewRootCauseAnalyzer(logger *logrus.Logger, cfg domain.CDSConfig) *RootCauseAnalyzer {
	return &RootCauseAnalyzer{
		logger:        logger,
		evaluator:     NewEvidenceEvaluator(),
		topCauses:     cfg.ElaborateTopCauses,
		minConfidence: cfg.ElaborateMinConfidence,
	}
}

// Analyze scores every catalogued cause against the record and returns
// those with any supporting evidence, ranked by confidence. Ties keep
// the catalogue order; the sort is stable.
func (a *RootCauseAnalyzer) Analyze(ctx context.Context, record domain.PatientRecord) []domain.ScoredCause {
	a.logger.Debug("Analyzing potential root causes")

	causes := knowledge.RootCauses()
	scored := make([]domain.ScoredCause, 0, len(causes))

	for _, cause := range causes {
		findings, found := a.evaluator.EvaluateAll(record, cause.EvidenceRequired)
		total := len(cause.EvidenceRequired)
		confidence := roundToTenth(float64(found) / float64(total) * 100)

		scored = append(scored, domain.ScoredCause{
			ID:               cause.ID,
			Name:             cause.Name,
			Description:      cause.Description,
			Prevalence:       cause.Prevalence,
			EvidenceRequired: cause.EvidenceRequired,
			Evidence:         findings,
			Confidence:       confidence,
			EvidenceFound:    found,
			TotalEvidence:    total,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})

	ranked := make([]domain.ScoredCause, 0, len(scored))
	for _, cause := range scored {
		if cause.Confidence > 0 {
			ranked = append(ranked, cause)
		}
	}

	a.logger.WithFields(logrus.Fields{
		"causes_evaluated": len(scored),
		"causes_supported": len(ranked),
	}).Info("Completed root cause analysis")

	return ranked
}

// Recommendations builds the care plan from the ranked causes. General
// lifestyle advice comes first, then cause-specific advice for the top
// causes that clear the confidence floor, then general monitoring.
// Duplicate lines are removed while preserving order.
func (a *RootCauseAnalyzer) Recommendations(causes []domain.ScoredCause) domain.RecommendationSet {
	recs := domain.RecommendationSet{
		Testing:    []string{},
		Lifestyle:  []string{},
		Medical:    []string{},
		Monitoring: []string{},
	}

	recs.Lifestyle = append(recs.Lifestyle,
		"Maintain a balanced diet with adequate protein and fiber",
		"Engage in regular physical activity (both aerobic and resistance training)",
		"Practice stress-reduction techniques (mindfulness, yoga, meditation)",
		"Ensure adequate and consistent sleep (7-9 hours per night)",
	)

	top := causes
	if len(top) > a.topCauses {
		top = top[:a.topCauses]
	}
	for _, cause := range top {
		if cause.Confidence < a.minConfidence {
			continue
		}
		switch cause.ID {
		case knowledge.CauseInsulinResistance:
			recs.Lifestyle = append(recs.Lifestyle,
				"Follow a low-glycemic index diet to manage blood sugar levels",
				"Incorporate regular physical activity, especially after meals",
			)
			recs.Testing = append(recs.Testing,
				"Fasting insulin and glucose levels",
				"Oral glucose tolerance test (OGTT)",
				"HbA1c test",
			)
			recs.Medical = append(recs.Medical,
				"Consider consultation for metformin or inositol supplements",
			)
		case knowledge.CauseChronicInflammation:
			recs.Lifestyle = append(recs.Lifestyle,
				"Incorporate anti-inflammatory foods (fatty fish, leafy greens, berries, nuts, olive oil)",
				"Consider an elimination diet to identify food sensitivities",
			)
			recs.Testing = append(recs.Testing,
				"High-sensitivity C-reactive protein (hs-CRP)",
				"Fasting insulin",
				"Complete blood count (CBC)",
			)
			recs.Medical = append(recs.Medical,
				"Consider omega-3 fatty acid supplementation",
			)
		}
	}

	recs.Monitoring = append(recs.Monitoring,
		"Track menstrual cycles and symptoms",
		"Regular monitoring of weight and waist circumference",
		"Annual comprehensive metabolic panel and lipid profile",
	)

	recs.Testing = dedupe(recs.Testing)
	recs.Lifestyle = dedupe(recs.Lifestyle)
	recs.Medical = dedupe(recs.Medical)
	recs.Monitoring = dedupe(recs.Monitoring)

	return recs
}

// dedupe removes duplicate lines while preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// roundToTenth rounds to one decimal place. Evidence denominators are
// small enough that no half-way cases arise.
func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/knowledge"
)

// LabRecommender selects the lab panels a patient still needs, based on
// symptoms, history and how complete their previous testing was.
type LabRecommender struct {
	logger            *logrus.Logger
	coverageThreshold float64
	recencyWindow     time.Duration
}

// NewLabRecommender creates a lab recommender. coverageThreshold is the
// share of the initial panel a previous workup must cover to count as
// comprehensive; recencyDays bounds how old that workup may be.
func NewLabRecommender(logger *logrus.Logger, cfg domain.CDSConfig) *LabRecommender {
	return &LabRecommender{
		logger:            logger,
		coverageThreshold: cfg.PanelCoverageThreshold,
		recencyWindow:     time.Duration(cfg.LabRecencyDays) * 24 * time.Hour,
	}
}

// Recommend determines which panels the patient needs and orders them
// by priority, then name. It fails only when a previous lab entry
// carries an unparseable date.
func (s *LabRecommender) Recommend(ctx context.Context, record domain.PatientRecord) ([]RecommendedPanel, error) {
	s.logger.Debug("Determining needed lab panels")

	comprehensive, err := s.hasComprehensiveEvaluation(record)
	if err != nil {
		return nil, err
	}

	var needed []RecommendedPanel
	add := func(panelID string, priority domain.LabPriority, reason string) {
		panel, ok := knowledge.LabPanelByID(panelID)
		if !ok {
			return
		}
		needed = append(needed, RecommendedPanel{LabPanel: panel, Priority: priority, Reason: reason})
	}

	if !comprehensive {
		add(knowledge.PanelInitialEvaluation, domain.PriorityHigh,
			"No previous comprehensive PCOS evaluation found")
	}

	if record.SymptomFlag("weight_gain") ||
		record.SymptomFlag("acanthosis_nigricans") ||
		record.SectionBool("medical_history", "prediabetes") ||
		record.SectionBool("medical_history", "diabetes") ||
		record.HasCondition("insulin_resistance") {
		add(knowledge.PanelInsulinResistance, domain.PriorityHigh,
			"Signs or history suggesting insulin resistance")
	}

	if record.SymptomFlag("hirsutism") ||
		record.SymptomFlag("acne") ||
		record.SymptomFlag("androgenic_alopecia") {
		add(knowledge.PanelAndrogen, domain.PriorityMedium,
			"Signs of hyperandrogenism present")
	}

	if record.SymptomFlag("fatigue") ||
		record.SymptomFlag("joint_pain") ||
		record.SectionBool("medical_history", "autoimmune_disease") ||
		record.HasCondition("inflammation") {
		add(knowledge.PanelInflammation, domain.PriorityMedium,
			"Signs of chronic inflammation")
	}

	if record.SectionBool("reproductive_goals", "pregnancy_planning") {
		add(knowledge.PanelFertility, domain.PriorityHigh,
			"Pregnancy planning or fertility concerns")
	}

	// Nutrient screening applies to every PCOS patient
	add(knowledge.PanelNutrientDeficiency, domain.PriorityMedium,
		"Routine screening for common PCOS nutrient deficiencies")

	if record.SectionBool("medical_history", "hypertension") ||
		record.SectionBool("medical_history", "high_cholesterol") ||
		record.SectionBool("medical_history", "heart_disease") ||
		record.SectionBool("family_history", "heart_disease") ||
		record.SectionBool("lifestyle_factors", "smoking") {
		add(knowledge.PanelCardiovascularRisk, domain.PriorityHigh,
			"Cardiovascular risk factors present")
	}

	needed = dedupeByName(needed)

	sort.Slice(needed, func(i, j int) bool {
		ri, rj := needed[i].Priority.Rank(), needed[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return needed[i].Name < needed[j].Name
	})

	s.logger.WithField("panel_count", len(needed)).Info("Completed lab panel recommendation")

	return needed, nil
}

// hasComprehensiveEvaluation reports whether a previous lab workup
// covers enough of the initial panel, recently enough, to skip the
// comprehensive evaluation.
func (s *LabRecommender) hasComprehensiveEvaluation(record domain.PatientRecord) (bool, error) {
	previous, ok := record["previous_labs"].([]any)
	if !ok || len(previous) == 0 {
		return false, nil
	}

	initial, _ := knowledge.LabPanelByID(knowledge.PanelInitialEvaluation)
	required := make(map[string]struct{}, len(initial.Tests))
	for _, test := range initial.Tests {
		required[strings.ToLower(test)] = struct{}{}
	}

	for _, entry := range previous {
		labSet, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		completed := make(map[string]struct{})
		tests, _ := labSet["tests"].([]any)
		for _, test := range tests {
			tm, ok := test.(map[string]any)
			if !ok {
				continue
			}
			if name, ok := tm["name"].(string); ok {
				completed[strings.ToLower(name)] = struct{}{}
			}
		}

		overlap := 0
		for name := range required {
			if _, ok := completed[name]; ok {
				overlap++
			}
		}
		if float64(overlap)/float64(len(required)) < s.coverageThreshold {
			continue
		}

		dateStr, ok := labSet["date"].(string)
		if !ok {
			dateStr = "2000-01-01"
		}
		labDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return false, fmt.Errorf("parsing previous lab date %q: %w", dateStr, err)
		}
		if time.Since(labDate) < s.recencyWindow {
			return true, nil
		}
	}

	return false, nil
}

// FollowUpInstructions derives patient preparation guidance from the
// recommended panels' collection notes. The fasting check is a
// case-insensitive substring match, so panels noting "Fasting not
// required" also trigger the preparation line.
func (s *LabRecommender) FollowUpInstructions(panels []RecommendedPanel) map[string]any {
	preparation := []string{}
	timing := []string{}

	for _, panel := range panels {
		if strings.Contains(strings.ToLower(panel.Notes), "fasting") {
			preparation = append(preparation,
				"Fast for 8-12 hours before testing (water is allowed). Schedule early morning appointments when possible.")
			break
		}
	}

	for _, panel := range panels {
		if strings.Contains(panel.Notes, "menstrual cycle") {
			timing = append(timing,
				"Schedule hormone tests (LH, FSH, estradiol) on days 3-5 of your menstrual cycle. "+
					"Progesterone should be tested on day 21 of a 28-day cycle.")
			break
		}
	}

	schedule := []string{
		"Schedule a follow-up appointment 1-2 weeks after completing lab tests to review results",
		"Bring copies of any previous lab results for comparison",
		"If any results are abnormal, additional testing or specialist referral may be recommended",
	}

	return map[string]any{
		"pre_test_preparation":  preparation,
		"timing_considerations": timing,
		"follow_up_schedule":    schedule,
	}
}

func dedupeByName(panels []RecommendedPanel) []RecommendedPanel {
	seen := make(map[string]struct{}, len(panels))
	out := make([]RecommendedPanel, 0, len(panels))
	for _, panel := range panels {
		if _, ok := seen[panel.Name]; ok {
			continue
		}
		seen[panel.Name] = struct{}{}
		out = append(out, panel)
	}
	return out
}

// RecommendedPanel is a catalogue panel annotated with why it was
// recommended and how urgently it should be drawn.
type RecommendedPanel struct {
	knowledge.LabPanel
	Priority domain.LabPriority `json:"priority"`
	Reason   string             `json:"reason"`
}

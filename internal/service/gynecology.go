package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/knowledge"
)

// GynecologyService reviews menstrual health, contraception, fertility
// and screening needs for PCOS patients.
type GynecologyService struct {
	logger *logrus.Logger
}

// NewGynecologyService creates a gynecology review service.
func NewGynecologyService(logger *logrus.Logger) *GynecologyService {
	return &GynecologyService{logger: logger}
}

// Review assembles the full gynecological recommendation set. The
// contraception and fertility blocks stay empty unless the record asks
// for them.
func (s *GynecologyService) Review(ctx context.Context, record domain.PatientRecord) map[string]any {
	needsContraception := record.SectionBool("contraception_needs", "needs_contraception")
	planningPregnancy := record.SectionBool("fertility_goals", "planning_pregnancy")

	s.logger.WithFields(logrus.Fields{
		"needs_contraception": needsContraception,
		"planning_pregnancy":  planningPregnancy,
	}).Debug("Building gynecology review")

	review := map[string]any{
		"menstrual_health":          s.AssessMenstrualHealth(record),
		"contraception":             map[string]any{},
		"fertility":                 map[string]any{},
		"symptom_management":        s.ManageSymptoms(record),
		"screening_recommendations": s.ScreeningRecommendations(record),
	}
	if needsContraception {
		review["contraception"] = s.RecommendContraception(record)
	}
	if planningPregnancy {
		review["fertility"] = s.AssessFertility(record)
	}

	s.logger.Info("Completed gynecology review")
	return review
}

// AssessMenstrualHealth evaluates cycle regularity and bleeding
// patterns from the menstrual history.
func (s *GynecologyService) AssessMenstrualHealth(record domain.PatientRecord) MenstrualAssessment {
	assessment := MenstrualAssessment{Concerns: []string{}, Recommendations: []string{}}

	if length, ok := record.SectionFloat("menstrual_history", "average_cycle_length"); ok && length != 0 {
		if length >= 21 && length <= 35 {
			assessment.CycleRegularity = "Regular"
		} else {
			assessment.CycleRegularity = "Irregular"
			assessment.Concerns = append(assessment.Concerns,
				fmt.Sprintf("Irregular cycle length (%s days)", strconv.FormatFloat(length, 'f', -1, 64)))
		}
	}

	if record.SectionBool("menstrual_history", "heavy_bleeding") {
		assessment.Concerns = append(assessment.Concerns, "Heavy menstrual bleeding")
		assessment.Recommendations = append(assessment.Recommendations,
			"Consider iron supplementation if heavy bleeding continues",
			"NSAIDs can help reduce bleeding and cramping",
		)
	}

	if record.SectionBool("menstrual_history", "absent_periods") {
		assessment.Concerns = append(assessment.Concerns, "Absent periods (amenorrhea)")
		assessment.Recommendations = append(assessment.Recommendations,
			"Hormonal therapy may be needed to induce periods")
	}

	if len(assessment.Recommendations) == 0 && assessment.CycleRegularity == "Regular" {
		assessment.Recommendations = append(assessment.Recommendations,
			"Your menstrual cycle appears to be within normal parameters.")
	}

	return assessment
}

// RecommendContraception filters the contraception catalogue by the
// patient's preferences and clotting history. Hormonal methods are
// offered unless the preferences opt out.
func (s *GynecologyService) RecommendContraception(record domain.PatientRecord) ContraceptionGuidance {
	options := knowledge.ContraceptionOptions()

	hormonalOK := true
	if prefs, ok := record.Section("contraception_needs")["preferences"].(map[string]any); ok {
		if v, present := prefs["hormonal_ok"]; present {
			hormonalOK = domain.Truthy(v)
		}
	}

	guidance := ContraceptionGuidance{Methods: []ContraceptionRecommendation{}}

	if hormonalOK {
		if !record.SectionBool("medical_history", "history_of_blood_clots") {
			combined := options[knowledge.ContraceptionCombinedHormonal]
			guidance.Methods = append(guidance.Methods, ContraceptionRecommendation{
				Type:           "Combined hormonal methods",
				Options:        combined.Types,
				Benefits:       combined.Benefits,
				Considerations: "Ideal for women who also want to manage PCOS symptoms",
			})
		}
		progestin := options[knowledge.ContraceptionProgestinOnly]
		guidance.Methods = append(guidance.Methods, ContraceptionRecommendation{
			Type:           "Progestin-only methods",
			Options:        progestin.Types,
			Benefits:       progestin.Benefits,
			Considerations: "Good option for women who cannot take estrogen",
		})
	}

	nonHormonal := options[knowledge.ContraceptionNonHormonal]
	guidance.Methods = append(guidance.Methods, ContraceptionRecommendation{
		Type:           "Non-hormonal methods",
		Options:        nonHormonal.Types,
		Benefits:       nonHormonal.Benefits,
		Considerations: "No impact on PCOS symptoms but no hormonal side effects",
	})

	guidance.Considerations = []string{
		"The most effective method is the one you'll use consistently and correctly",
		"Consider your future fertility plans when choosing a method",
		"Discuss any concerns about side effects with your healthcare provider",
	}

	return guidance
}

// AssessFertility stages the patient by time spent trying to conceive
// and lists the standard treatment ladder.
func (s *GynecologyService) AssessFertility(record domain.PatientRecord) FertilityAssessment {
	monthsTrying, _ := record.SectionFloat("fertility_goals", "months_trying_to_conceive")

	assessment := FertilityAssessment{Recommendations: []string{}}
	switch {
	case monthsTrying < 6:
		assessment.FertilityStatus = "Early stage of trying to conceive"
		assessment.Recommendations = append(assessment.Recommendations,
			"Track ovulation using basal body temperature or ovulation predictor kits",
			"Have regular, unprotected intercourse during your fertile window",
			"Consider preconception counseling if you have concerns",
		)
	case monthsTrying < 12:
		assessment.FertilityStatus = "Moderate duration of trying to conceive"
		assessment.Recommendations = append(assessment.Recommendations,
			"Consider a basic fertility evaluation")
	default:
		assessment.FertilityStatus = "Prolonged time trying to conceive"
		assessment.Recommendations = append(assessment.Recommendations,
			"Recommend formal fertility evaluation")
	}

	assessment.Recommendations = append(assessment.Recommendations,
		"Weight management can improve fertility in women with PCOS",
		"Ovulation induction is often first-line treatment for anovulatory PCOS",
		"Consider seeing a reproductive endocrinologist if not pregnant within 6 months of trying",
	)

	assessment.TreatmentOptions = []TreatmentOption{}
	for _, id := range []string{"lifestyle_modifications", "ovulation_induction", "in_vitro_fertilization"} {
		treatment, ok := knowledge.FertilityTreatmentByID(id)
		if !ok {
			continue
		}
		assessment.TreatmentOptions = append(assessment.TreatmentOptions, TreatmentOption{
			Name:        treatment.Name,
			Description: treatment.Description,
			SuccessRate: treatment.SuccessRate,
		})
	}

	return assessment
}

// ManageSymptoms maps each reported current symptom to its catalogue
// guide. Symptoms without a guide are skipped.
func (s *GynecologyService) ManageSymptoms(record domain.PatientRecord) map[string]knowledge.SymptomGuide {
	guides := knowledge.SymptomManagement()

	management := map[string]knowledge.SymptomGuide{}
	for symptom := range record.Section("current_symptoms") {
		guide, ok := guides[symptom]
		if !ok {
			continue
		}
		if len(guide.SelfCare) == 0 {
			guide.SelfCare = knowledge.DefaultSelfCareTips()
		}
		management[symptom] = guide
	}
	return management
}

// ScreeningRecommendations builds the preventive screening schedule.
// Age falls back to 25 when the record's value is not numeric.
func (s *GynecologyService) ScreeningRecommendations(record domain.PatientRecord) []Screening {
	age, ok := record.Float("age")
	if !ok {
		age = 25
	}

	screenings := []Screening{
		{
			Name:       "Blood Pressure",
			Frequency:  "Annually",
			Importance: "High blood pressure is more common in women with PCOS",
		},
		{
			Name:       "Cholesterol/Lipid Profile",
			Frequency:  "Every 1-3 years",
			Importance: "Women with PCOS are at higher risk for dyslipidemia",
		},
	}

	if record.SectionBool("medical_history", "obesity") ||
		record.SectionBool("family_history", "diabetes") ||
		record.Bool("previous_glucose_intolerance") {
		screenings = append(screenings, Screening{
			Name:       "Diabetes Screening (OGTT or A1C)",
			Frequency:  "Every 1-3 years",
			Importance: "PCOS increases risk of insulin resistance and type 2 diabetes",
		})
	}

	if record.SectionBool("menstrual_history", "irregular_periods") &&
		record.SectionBool("menstrual_history", "absent_periods") &&
		age >= 35 {
		screenings = append(screenings, Screening{
			Name:       "Endometrial Biopsy",
			Frequency:  "As recommended by your doctor",
			Importance: "To rule out endometrial hyperplasia or cancer in women with prolonged amenorrhea",
		})
	}

	screenings = append(screenings, Screening{
		Name:       "Mental Health Screening",
		Frequency:  "Annually",
		Importance: "Higher rates of depression and anxiety in women with PCOS",
	})

	if record.SymptomFlag("daytime_sleepiness") || record.SymptomFlag("loud_snoring") {
		screenings = append(screenings, Screening{
			Name:       "Sleep Apnea Screening",
			Frequency:  "As needed",
			Importance: "Higher risk of sleep apnea in women with PCOS",
		})
	}

	return screenings
}

// MenstrualAssessment summarizes cycle regularity findings.
type MenstrualAssessment struct {
	CycleRegularity string   `json:"cycle_regularity"`
	Concerns        []string `json:"concerns"`
	Recommendations []string `json:"recommendations"`
}

// ContraceptionGuidance lists suitable method groups plus general
// decision considerations.
type ContraceptionGuidance struct {
	Methods        []ContraceptionRecommendation `json:"methods"`
	Considerations []string                      `json:"considerations"`
}

// ContraceptionRecommendation is one offered method group.
type ContraceptionRecommendation struct {
	Type           string   `json:"type"`
	Options        []string `json:"options"`
	Benefits       []string `json:"benefits"`
	Considerations string   `json:"considerations"`
}

// FertilityAssessment stages conception efforts and lists treatments.
type FertilityAssessment struct {
	FertilityStatus  string            `json:"fertility_status"`
	Recommendations  []string          `json:"recommendations"`
	TreatmentOptions []TreatmentOption `json:"treatment_options"`
}

// TreatmentOption is the summary form of a fertility treatment.
type TreatmentOption struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SuccessRate string `json:"success_rate"`
}

// Screening is one recommended preventive check.
type Screening struct {
	Name       string `json:"name"`
	Frequency  string `json:"frequency"`
	Importance string `json:"importance"`
}

package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// commonIntakeSymptoms are the classic presenting symptoms scored
// during intake. Severity is the fraction of these a patient reports.
var commonIntakeSymptoms = []string{
	"irregular_periods", "hirsutism", "acne", "hair_loss",
	"weight_gain", "fatigue", "mood_swings", "infertility",
}

// IntakeService performs the initial biological assessment of a new
// patient record.
type IntakeService struct {
	logger *logrus.Logger
}

// NewIntakeService creates an intake service.
func NewIntakeService(logger *logrus.Logger) *IntakeService {
	return &IntakeService{logger: logger}
}

// Assess computes BMI, scores presenting symptoms and flags risk
// factors. Non-numeric anthropometrics are an error.
func (s *IntakeService) Assess(ctx context.Context, record domain.PatientRecord) (*IntakeResult, error) {
	s.logger.Debug("Starting biological intake assessment")

	weight, ok := record.Float("weight")
	if !ok {
		return nil, fmt.Errorf("weight must be a number")
	}
	height, ok := record.Float("height")
	if !ok {
		return nil, fmt.Errorf("height must be a number")
	}
	if height == 0 {
		return nil, fmt.Errorf("height cannot be zero")
	}
	age, ok := record.Float("age")
	if !ok {
		return nil, fmt.Errorf("age must be a number")
	}

	bmi := calculateBMI(weight, height)
	result := &IntakeResult{
		BMI: bmi,
		Assessment: IntakeAssessment{
			BMICategory:      bmiCategory(bmi),
			SymptomsAnalysis: s.analyzeSymptoms(record),
			RiskFactors:      s.identifyRiskFactors(record, bmi, age),
		},
	}

	s.logger.WithFields(logrus.Fields{
		"bmi":          bmi,
		"bmi_category": result.Assessment.BMICategory,
		"risk_factors": len(result.Assessment.RiskFactors),
	}).Info("Completed biological intake assessment")

	return result, nil
}

// calculateBMI converts weight in kilograms and height in centimeters
// to BMI rounded to one decimal.
func calculateBMI(weightKg, heightCm float64) float64 {
	heightM := heightCm / 100
	return roundToTenth(weightKg / (heightM * heightM))
}

func bmiCategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// analyzeSymptoms scores reported symptoms against the classic
// presentation. List input keeps its reported order; flag-map input is
// scanned in catalogue order.
func (s *IntakeService) analyzeSymptoms(record domain.PatientRecord) SymptomAnalysis {
	present := []string{}
	switch record["symptoms"].(type) {
	case map[string]any:
		for _, name := range commonIntakeSymptoms {
			if record.HasSymptom(name) {
				present = append(present, name)
			}
		}
	default:
		for _, name := range record.StringList("symptoms") {
			if slices.Contains(commonIntakeSymptoms, name) {
				present = append(present, name)
			}
		}
	}

	severity := float64(len(present)) / float64(len(commonIntakeSymptoms))
	concern := "moderate"
	if severity > 0.5 {
		concern = "high"
	}

	return SymptomAnalysis{
		PresentSymptoms: present,
		SymptomSeverity: severity,
		ConcernLevel:    concern,
	}
}

func (s *IntakeService) identifyRiskFactors(record domain.PatientRecord, bmi, age float64) []string {
	risks := []string{}

	if record.SectionBool("family_history", "pcos") {
		risks = append(risks, "Family history of PCOS")
	}
	if bmi >= 25 {
		risks = append(risks, fmt.Sprintf("Elevated BMI (%.1f)", bmi))
	}
	if age < 18 {
		risks = append(risks, "Adolescent patient - special considerations needed")
	} else if age > 35 {
		risks = append(risks, "Advanced maternal age - fertility considerations")
	}

	return risks
}

// IntakeResult pairs the assessment block with the computed BMI.
type IntakeResult struct {
	Assessment IntakeAssessment `json:"assessment"`
	BMI        float64          `json:"bmi"`
}

// IntakeAssessment is the initial evaluation of a patient record.
type IntakeAssessment struct {
	BMICategory      string          `json:"bmi_category"`
	SymptomsAnalysis SymptomAnalysis `json:"symptoms_analysis"`
	RiskFactors      []string        `json:"risk_factors"`
}

// SymptomAnalysis scores the classic PCOS presentation.
type SymptomAnalysis struct {
	PresentSymptoms []string `json:"present_symptoms"`
	SymptomSeverity float64  `json:"symptom_severity"`
	ConcernLevel    string   `json:"concern_level"`
}

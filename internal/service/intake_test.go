package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

func testIntakeService() *IntakeService {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	return NewIntakeService(logger)
}

func intakeRecord(overrides map[string]any) domain.PatientRecord {
	record := domain.PatientRecord{
		"age":                        28,
		"weight":                     70,
		"height":                     170,
		"menstrual_cycle_regularity": "oligomenorrhea",
		"symptoms":                   []any{"irregular_periods", "acne"},
		"medical_history":            map[string]any{},
		"family_history":             map[string]any{},
	}
	for key, value := range overrides {
		record[key] = value
	}
	return record
}

func TestIntakeService_Assess(t *testing.T) {
	service := testIntakeService()
	ctx := context.Background()

	t.Run("BMI rounds to one decimal", func(t *testing.T) {
		tests := []struct {
			weight, height float64
			wantBMI        float64
			wantCategory   string
		}{
			{70, 170, 24.2, "Normal weight"},
			{85, 165, 31.2, "Obese"},
			{47, 165, 17.3, "Underweight"},
			{75, 164, 27.9, "Overweight"},
		}

		for _, tt := range tests {
			record := intakeRecord(map[string]any{"weight": tt.weight, "height": tt.height})
			result, err := service.Assess(ctx, record)
			if err != nil {
				t.Fatalf("Assess() error = %v", err)
			}
			if result.BMI != tt.wantBMI {
				t.Errorf("BMI(%v, %v) = %v, want %v", tt.weight, tt.height, result.BMI, tt.wantBMI)
			}
			if result.Assessment.BMICategory != tt.wantCategory {
				t.Errorf("category(%v) = %q, want %q", result.BMI, result.Assessment.BMICategory, tt.wantCategory)
			}
		}
	})

	t.Run("Zero height is an error", func(t *testing.T) {
		_, err := service.Assess(ctx, intakeRecord(map[string]any{"height": 0}))
		if err == nil {
			t.Fatal("Assess() expected error for zero height")
		}
	})

	t.Run("Non-numeric weight is an error", func(t *testing.T) {
		_, err := service.Assess(ctx, intakeRecord(map[string]any{"weight": "seventy"}))
		if err == nil {
			t.Fatal("Assess() expected error for non-numeric weight")
		}
	})

	t.Run("Non-numeric age is an error", func(t *testing.T) {
		_, err := service.Assess(ctx, intakeRecord(map[string]any{"age": "adult"}))
		if err == nil {
			t.Fatal("Assess() expected error for non-numeric age")
		}
	})
}

func TestIntakeService_SymptomAnalysis(t *testing.T) {
	service := testIntakeService()
	ctx := context.Background()

	t.Run("Severity is the fraction of classic symptoms", func(t *testing.T) {
		record := intakeRecord(map[string]any{
			"symptoms": []any{"irregular_periods", "hirsutism", "acne"},
		})
		result, err := service.Assess(ctx, record)
		if err != nil {
			t.Fatalf("Assess() error = %v", err)
		}

		analysis := result.Assessment.SymptomsAnalysis
		if len(analysis.PresentSymptoms) != 3 {
			t.Errorf("present symptoms = %v, want 3", analysis.PresentSymptoms)
		}
		if analysis.SymptomSeverity != 0.375 {
			t.Errorf("severity = %v, want 0.375", analysis.SymptomSeverity)
		}
		if analysis.ConcernLevel != "moderate" {
			t.Errorf("concern = %q, want moderate", analysis.ConcernLevel)
		}
	})

	t.Run("More than half the symptoms is high concern", func(t *testing.T) {
		record := intakeRecord(map[string]any{
			"symptoms": []any{"irregular_periods", "hirsutism", "acne", "hair_loss", "fatigue"},
		})
		result, _ := service.Assess(ctx, record)
		if result.Assessment.SymptomsAnalysis.ConcernLevel != "high" {
			t.Errorf("concern = %q, want high", result.Assessment.SymptomsAnalysis.ConcernLevel)
		}
	})

	t.Run("Exactly half stays moderate", func(t *testing.T) {
		record := intakeRecord(map[string]any{
			"symptoms": []any{"irregular_periods", "hirsutism", "acne", "hair_loss"},
		})
		result, _ := service.Assess(ctx, record)
		analysis := result.Assessment.SymptomsAnalysis
		if analysis.SymptomSeverity != 0.5 || analysis.ConcernLevel != "moderate" {
			t.Errorf("got severity %v concern %q, want 0.5 moderate", analysis.SymptomSeverity, analysis.ConcernLevel)
		}
	})

	t.Run("Unrecognized symptoms are ignored", func(t *testing.T) {
		record := intakeRecord(map[string]any{
			"symptoms": []any{"irregular_periods", "headache", "nausea"},
		})
		result, _ := service.Assess(ctx, record)
		analysis := result.Assessment.SymptomsAnalysis
		if len(analysis.PresentSymptoms) != 1 || analysis.PresentSymptoms[0] != "irregular_periods" {
			t.Errorf("present symptoms = %v", analysis.PresentSymptoms)
		}
	})

	t.Run("Flag-map symptoms are scanned in catalogue order", func(t *testing.T) {
		record := intakeRecord(map[string]any{
			"symptoms": map[string]any{
				"acne":              true,
				"irregular_periods": true,
				"hirsutism":         false,
			},
		})
		result, _ := service.Assess(ctx, record)
		analysis := result.Assessment.SymptomsAnalysis

		want := []string{"irregular_periods", "hirsutism", "acne"}
		if len(analysis.PresentSymptoms) != len(want) {
			t.Fatalf("present symptoms = %v, want %v", analysis.PresentSymptoms, want)
		}
		for i := range want {
			if analysis.PresentSymptoms[i] != want[i] {
				t.Errorf("present[%d] = %q, want %q", i, analysis.PresentSymptoms[i], want[i])
			}
		}
	})
}

func TestIntakeService_RiskFactors(t *testing.T) {
	service := testIntakeService()
	ctx := context.Background()

	t.Run("No risk factors", func(t *testing.T) {
		result, err := service.Assess(ctx, intakeRecord(nil))
		if err != nil {
			t.Fatalf("Assess() error = %v", err)
		}
		if len(result.Assessment.RiskFactors) != 0 {
			t.Errorf("risk factors = %v, want none", result.Assessment.RiskFactors)
		}
	})

	t.Run("Family history of PCOS", func(t *testing.T) {
		record := intakeRecord(map[string]any{
			"family_history": map[string]any{"pcos": true},
		})
		result, _ := service.Assess(ctx, record)
		if !containsLine(result.Assessment.RiskFactors, "Family history of PCOS") {
			t.Errorf("risk factors = %v", result.Assessment.RiskFactors)
		}
	})

	t.Run("Elevated BMI names the value", func(t *testing.T) {
		record := intakeRecord(map[string]any{"weight": 75, "height": 164})
		result, _ := service.Assess(ctx, record)
		if !containsLine(result.Assessment.RiskFactors, "Elevated BMI (27.9)") {
			t.Errorf("risk factors = %v", result.Assessment.RiskFactors)
		}
	})

	t.Run("Age brackets", func(t *testing.T) {
		result, _ := service.Assess(ctx, intakeRecord(map[string]any{"age": 17}))
		if !containsLine(result.Assessment.RiskFactors, "Adolescent patient - special considerations needed") {
			t.Errorf("risk factors = %v", result.Assessment.RiskFactors)
		}

		result, _ = service.Assess(ctx, intakeRecord(map[string]any{"age": 36}))
		if !containsLine(result.Assessment.RiskFactors, "Advanced maternal age - fertility considerations") {
			t.Errorf("risk factors = %v", result.Assessment.RiskFactors)
		}

		result, _ = service.Assess(ctx, intakeRecord(map[string]any{"age": 35}))
		for _, risk := range result.Assessment.RiskFactors {
			if risk == "Advanced maternal age - fertility considerations" {
				t.Error("age 35 should not trigger the advanced-age factor")
			}
		}
	})
}

func TestBMICategory(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{16.0, "Underweight"},
		{18.4, "Underweight"},
		{18.5, "Normal weight"},
		{24.9, "Normal weight"},
		{25.0, "Overweight"},
		{29.9, "Overweight"},
		{30.0, "Obese"},
		{42.0, "Obese"},
	}

	for _, tt := range tests {
		if got := bmiCategory(tt.bmi); got != tt.want {
			t.Errorf("bmiCategory(%v) = %q, want %q", tt.bmi, got, tt.want)
		}
	}
}

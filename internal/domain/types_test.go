package domain

import (
	"testing"
)

func TestPhenotypeConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    Phenotype
		expected string
	}{
		{"Phenotype A", PHENOTYPE_A, "A"},
		{"Phenotype B", PHENOTYPE_B, "B"},
		{"Phenotype C", PHENOTYPE_C, "C"},
		{"Phenotype D", PHENOTYPE_D, "D"},
		{"Non-PCOS", NON_PCOS, "Non-PCOS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
		})
	}
}

func TestPhenotypeIsValid(t *testing.T) {
	tests := []struct {
		name     string
		value    Phenotype
		expected bool
	}{
		{"Phenotype A valid", PHENOTYPE_A, true},
		{"Non-PCOS valid", NON_PCOS, true},
		{"Empty invalid", Phenotype(""), false},
		{"Unknown invalid", Phenotype("E"), false},
		{"Lowercase invalid", Phenotype("a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.IsValid() != tt.expected {
				t.Errorf("Expected IsValid()=%v for %q", tt.expected, string(tt.value))
			}
		})
	}
}

func TestPhenotypeDiagnosticAxes(t *testing.T) {
	tests := []struct {
		name            string
		value           Phenotype
		diagnosis       bool
		hyperandrogenic bool
		oligoOvulatory  bool
	}{
		{"Phenotype A", PHENOTYPE_A, true, true, true},
		{"Phenotype B", PHENOTYPE_B, true, true, false},
		{"Phenotype C", PHENOTYPE_C, true, true, true},
		{"Phenotype D", PHENOTYPE_D, true, false, true},
		{"Non-PCOS", NON_PCOS, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.MeetsDiagnosticCriteria() != tt.diagnosis {
				t.Errorf("Expected MeetsDiagnosticCriteria()=%v", tt.diagnosis)
			}
			if tt.value.IsHyperandrogenic() != tt.hyperandrogenic {
				t.Errorf("Expected IsHyperandrogenic()=%v", tt.hyperandrogenic)
			}
			if tt.value.IsOligoOvulatory() != tt.oligoOvulatory {
				t.Errorf("Expected IsOligoOvulatory()=%v", tt.oligoOvulatory)
			}
		})
	}
}

func TestEvidenceSourceConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    EvidenceSource
		expected string
	}{
		{"Symptoms", SourceSymptoms, "symptoms"},
		{"Lab results", SourceLabResults, "lab_results"},
		{"Medical history", SourceMedicalHistory, "medical_history"},
		{"Lifestyle factors", SourceLifestyleFactors, "lifestyle_factors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
			if !tt.value.IsValid() {
				t.Errorf("Expected %s to be valid", tt.expected)
			}
		})
	}
}

func TestCyclePatternIndicatesOligoAnovulation(t *testing.T) {
	tests := []struct {
		name     string
		value    CyclePattern
		expected bool
	}{
		{"Regular", CycleRegular, false},
		{"Oligomenorrhea", CycleOligomenorrhea, true},
		{"Amenorrhea", CycleAmenorrhea, true},
		{"Unknown", CyclePattern("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.IndicatesOligoAnovulation() != tt.expected {
				t.Errorf("Expected IndicatesOligoAnovulation()=%v for %q", tt.expected, string(tt.value))
			}
		})
	}
}

func TestLabPriorityRank(t *testing.T) {
	tests := []struct {
		name     string
		value    LabPriority
		expected int
	}{
		{"High first", PriorityHigh, 0},
		{"Medium second", PriorityMedium, 1},
		{"Low last", PriorityLow, 2},
		{"Unknown ranks last", LabPriority("urgent"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Rank() != tt.expected {
				t.Errorf("Expected Rank()=%d, got %d", tt.expected, tt.value.Rank())
			}
		})
	}
}

func TestRotterdamCriteriaCount(t *testing.T) {
	tests := []struct {
		name     string
		criteria RotterdamCriteria
		expected int
	}{
		{"None met", RotterdamCriteria{}, 0},
		{"One met", RotterdamCriteria{OligoAnovulation: true}, 1},
		{"Two met", RotterdamCriteria{Hyperandrogenism: true, PolycysticOvaries: true}, 2},
		{"All met", RotterdamCriteria{OligoAnovulation: true, Hyperandrogenism: true, PolycysticOvaries: true}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.criteria.Count() != tt.expected {
				t.Errorf("Expected Count()=%d, got %d", tt.expected, tt.criteria.Count())
			}
		})
	}
}

func TestCriteriaInputCollapsesHyperandrogenism(t *testing.T) {
	tests := []struct {
		name     string
		input    CriteriaInput
		expected bool
	}{
		{"Neither", CriteriaInput{}, false},
		{"Clinical only", CriteriaInput{ClinicalHyperandrogenism: true}, true},
		{"Biochemical only", CriteriaInput{BiochemHyperandrogenism: true}, true},
		{"Both", CriteriaInput{ClinicalHyperandrogenism: true, BiochemHyperandrogenism: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.input.Criteria().Hyperandrogenism != tt.expected {
				t.Errorf("Expected Hyperandrogenism=%v", tt.expected)
			}
		})
	}
}

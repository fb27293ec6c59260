package domain

import (
	"testing"
)

func TestParseReferenceRange(t *testing.T) {
	parser := NewLabValueParser()

	tests := []struct {
		name    string
		input   string
		low     float64
		high    float64
		wantErr bool
	}{
		{"Integer bounds", "70-100", 70, 100, false},
		{"Decimal bounds", "0.4-4.0", 0.4, 4.0, false},
		{"Spaced bounds", " 2 - 20 ", 2, 20, false},
		{"Missing high", "70-", 0, 0, true},
		{"Not a range", "normal", 0, 0, true},
		{"Empty", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, err := parser.ParseReferenceRange(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.input, err)
			}
			if rr.Low != tt.low || rr.High != tt.high {
				t.Errorf("Expected [%v, %v], got [%v, %v]", tt.low, tt.high, rr.Low, rr.High)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	parser := NewLabValueParser()

	tests := []struct {
		name     string
		input    any
		expected float64
		wantErr  bool
	}{
		{"Float passthrough", float64(85.5), 85.5, false},
		{"Integer widened", 85, 85, false},
		{"Numeric string", "85.5", 85.5, false},
		{"Padded string", " 12 ", 12, false},
		{"Word string", "high", 0, true},
		{"Nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parser.ParseValue(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %v", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if v != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, v)
			}
		})
	}
}

func TestReferenceRangeClassify(t *testing.T) {
	rr := ReferenceRange{Low: 70, High: 100}

	tests := []struct {
		name     string
		value    float64
		expected LabStatus
	}{
		{"Below range", 65, LabStatusLow},
		{"At low bound", 70, LabStatusNormal},
		{"Inside range", 85, LabStatusNormal},
		{"At high bound", 100, LabStatusNormal},
		{"Above range", 125, LabStatusHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rr.Classify(tt.value); got != tt.expected {
				t.Errorf("Expected %s for %v, got %s", tt.expected, tt.value, got)
			}
		})
	}
}

func TestNormalizeTestName(t *testing.T) {
	parser := NewLabValueParser()

	if got := parser.NormalizeTestName("  Fasting_Insulin "); got != "fasting_insulin" {
		t.Errorf("Expected normalized name, got %q", got)
	}
}

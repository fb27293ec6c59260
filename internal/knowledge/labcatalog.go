package knowledge

import (
	"fmt"
	"strings"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// CommonPCOSLabs returns the canonical lowercase names of the lab tests
// routinely ordered in a PCOS workup. Uploaded results are matched
// against this list to flag PCOS-relevant findings and to compute which
// core tests are still outstanding.
func CommonPCOSLabs() []string {
	return []string{
		"testosterone_total", "testosterone_free", "dheas", "shbg",
		"fsh", "lh", "prolactin", "tsh", "fasting_glucose", "fasting_insulin",
		"hba1c", "lipid_panel", "vitamin_d", "amh",
	}
}

// IsCommonPCOSLab reports whether the (case-insensitive) test name is
// part of the routine PCOS workup.
func IsCommonPCOSLab(testName string) bool {
	lowered := strings.ToLower(testName)
	for _, name := range CommonPCOSLabs() {
		if lowered == name {
			return true
		}
	}
	return false
}

// labInterpretations holds per-test clinical interpretation text keyed
// by test name, then by result status.
func labInterpretations() map[string]map[domain.LabStatus]string {
	return map[string]map[domain.LabStatus]string{
		"testosterone_total": {
			domain.LabStatusHigh:   "Elevated testosterone may indicate hyperandrogenism, common in PCOS.",
			domain.LabStatusNormal: "Testosterone levels within normal range.",
			domain.LabStatusLow:    "Low testosterone levels, may need further evaluation.",
		},
		"fasting_insulin": {
			domain.LabStatusHigh:   "Elevated insulin levels may indicate insulin resistance, common in PCOS.",
			domain.LabStatusNormal: "Insulin levels within normal range.",
			domain.LabStatusLow:    "Low insulin levels, may not indicate insulin resistance.",
		},
		"hba1c": {
			domain.LabStatusHigh:   "Elevated HbA1c may indicate prediabetes or diabetes, monitor glucose metabolism.",
			domain.LabStatusNormal: "HbA1c within normal range.",
			domain.LabStatusLow:    "Low HbA1c may indicate hypoglycemia or other conditions.",
		},
		"lh": {
			domain.LabStatusHigh:   "Elevated LH with normal/low FSH may suggest PCOS (LH:FSH ratio > 2:1).",
			domain.LabStatusNormal: "LH levels within normal range.",
			domain.LabStatusLow:    "Low LH levels, may indicate other endocrine issues.",
		},
	}
}

// InterpretLabResult returns the clinical interpretation for a test
// result. Tests without dedicated interpretation text get a generic
// line built from the status.
func InterpretLabResult(testName string, status domain.LabStatus) string {
	byStatus, ok := labInterpretations()[strings.ToLower(testName)]
	if !ok {
		return fmt.Sprintf("%s result. Consult with healthcare provider for interpretation.", capitalize(string(status)))
	}
	text, ok := byStatus[status]
	if !ok {
		return "Result interpretation not available."
	}
	return text
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

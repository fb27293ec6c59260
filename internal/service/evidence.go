package service

import (
	"strings"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// EvidenceEvaluator locates root-cause evidence inside a patient record.
// Each evidence key is searched across the record sections in a fixed
// priority order: reported symptoms, then lab results, then medical
// history conditions, then lifestyle factors. The first section that
// contains the key is reported as the finding's source.
type EvidenceEvaluator struct{}

// NewEvidenceEvaluator creates an evidence evaluator.
func NewEvidenceEvaluator() *EvidenceEvaluator {
	return &EvidenceEvaluator{}
}

// Evaluate checks a single evidence key against the record. Symptom,
// condition and lifestyle checks are membership checks; lab results
// match on the lowercased test name.
func (e *EvidenceEvaluator) Evaluate(record domain.PatientRecord, key string) domain.EvidenceFinding {
	if record.HasSymptom(key) {
		return domain.EvidenceFinding{Present: true, Source: domain.SourceSymptoms}
	}
	if e.hasLabResult(record, key) {
		return domain.EvidenceFinding{Present: true, Source: domain.SourceLabResults}
	}
	if record.HasCondition(key) {
		return domain.EvidenceFinding{Present: true, Source: domain.SourceMedicalHistory}
	}
	if record.HasLifestyleFactor(key) {
		return domain.EvidenceFinding{Present: true, Source: domain.SourceLifestyleFactors}
	}
	return domain.EvidenceFinding{}
}

// EvaluateAll checks every evidence key against the record and returns
// the findings keyed by evidence name, plus how many were present.
func (e *EvidenceEvaluator) EvaluateAll(record domain.PatientRecord, keys []string) (map[string]domain.EvidenceFinding, int) {
	findings := make(map[string]domain.EvidenceFinding, len(keys))
	found := 0
	for _, key := range keys {
		finding := e.Evaluate(record, key)
		findings[key] = finding
		if finding.Present {
			found++
		}
	}
	return findings, found
}

func (e *EvidenceEvaluator) hasLabResult(record domain.PatientRecord, key string) bool {
	for _, lab := range record.LabResults() {
		if strings.ToLower(lab.TestName) == key {
			return true
		}
	}
	return false
}

// Package domain contains core business entities and types for PCOS phenotype
// classification and root-cause analysis following the Rotterdam consensus criteria.
//
// Reference: Rotterdam ESHRE/ASRM-Sponsored PCOS Consensus Workshop Group (2004).
// Revised 2003 consensus on diagnostic criteria and long-term health risks related
// to polycystic ovary syndrome. Fertil Steril. 81(1):19-25.
package domain

import (
	"errors"
)

// Phenotype represents the PCOS phenotype assigned by the Rotterdam classifier.
// Exactly one of these five labels is produced per classification; phenotypes
// A-D require at least two of the three Rotterdam criteria.
type Phenotype string

const (
	PHENOTYPE_A Phenotype = "A"
	PHENOTYPE_B Phenotype = "B"
	PHENOTYPE_C Phenotype = "C"
	PHENOTYPE_D Phenotype = "D"
	NON_PCOS    Phenotype = "Non-PCOS"
)

// EvidenceSource identifies which section of the patient record satisfied an
// evidence criterion. The declaration order below is the evaluation priority
// order; the first source containing a criterion wins.
type EvidenceSource string

const (
	SourceSymptoms         EvidenceSource = "symptoms"
	SourceLabResults       EvidenceSource = "lab_results"
	SourceMedicalHistory   EvidenceSource = "medical_history"
	SourceLifestyleFactors EvidenceSource = "lifestyle_factors"
)

// CyclePattern represents reported menstrual cycle regularity. Oligomenorrhea
// and amenorrhea both satisfy the Rotterdam oligo/anovulation criterion.
type CyclePattern string

const (
	CycleRegular        CyclePattern = "regular"
	CycleOligomenorrhea CyclePattern = "oligomenorrhea"
	CycleAmenorrhea     CyclePattern = "amenorrhea"
)

// LabPriority represents the urgency attached to a recommended lab panel.
type LabPriority string

const (
	PriorityHigh   LabPriority = "high"
	PriorityMedium LabPriority = "medium"
	PriorityLow    LabPriority = "low"
)

// LabStatus represents where a measured lab value sits relative to its
// reference range.
type LabStatus string

const (
	LabStatusNormal LabStatus = "normal"
	LabStatusLow    LabStatus = "low"
	LabStatusHigh   LabStatus = "high"
	LabStatusError  LabStatus = "error"
)

// Sentinel errors for clinical data integrity
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidPhenotype = errors.New("invalid PCOS phenotype")
	ErrInvalidSource    = errors.New("invalid evidence source")
	ErrInvalidPriority  = errors.New("invalid lab priority")
)

// IsValid validates that the Phenotype is one of the five Rotterdam labels.
// Only valid labels may enter clinical decision-making or the audit trail.
func (p Phenotype) IsValid() bool {
	switch p {
	case PHENOTYPE_A, PHENOTYPE_B, PHENOTYPE_C, PHENOTYPE_D, NON_PCOS:
		return true
	default:
		return false
	}
}

// String returns the string representation of the phenotype.
func (p Phenotype) String() string {
	return string(p)
}

// MeetsDiagnosticCriteria reports whether the phenotype represents a positive
// PCOS diagnosis under the Rotterdam criteria.
func (p Phenotype) MeetsDiagnosticCriteria() bool {
	switch p {
	case PHENOTYPE_A, PHENOTYPE_B, PHENOTYPE_C, PHENOTYPE_D:
		return true
	default:
		return false
	}
}

// IsHyperandrogenic reports whether the phenotype includes the
// hyperandrogenism criterion. Relevant for anti-androgen therapy decisions.
func (p Phenotype) IsHyperandrogenic() bool {
	switch p {
	case PHENOTYPE_A, PHENOTYPE_B, PHENOTYPE_C:
		return true
	default:
		return false
	}
}

// IsOligoOvulatory reports whether the phenotype includes the
// oligo/anovulation criterion. Relevant for cycle-regulation and fertility
// decisions.
func (p Phenotype) IsOligoOvulatory() bool {
	switch p {
	case PHENOTYPE_A, PHENOTYPE_C, PHENOTYPE_D:
		return true
	default:
		return false
	}
}

// LogFields returns structured logging fields for audit trails.
// Returns strongly-typed fields so classification events remain traceable.
func (p Phenotype) LogFields() map[string]any {
	return map[string]any{
		"phenotype":         string(p),
		"is_valid":          p.IsValid(),
		"pcos_diagnosis":    p.MeetsDiagnosticCriteria(),
		"hyperandrogenic":   p.IsHyperandrogenic(),
		"oligo_ovulatory":   p.IsOligoOvulatory(),
		"requires_followup": p.MeetsDiagnosticCriteria(),
	}
}

// IsValid validates the evidence source tag.
func (s EvidenceSource) IsValid() bool {
	switch s {
	case SourceSymptoms, SourceLabResults, SourceMedicalHistory, SourceLifestyleFactors:
		return true
	default:
		return false
	}
}

// IsValid validates the cycle pattern. Unknown strings are treated as neither
// regular nor oligo/anovulatory by the classifier, so validity here only
// gates what may be stored.
func (cp CyclePattern) IsValid() bool {
	switch cp {
	case CycleRegular, CycleOligomenorrhea, CycleAmenorrhea:
		return true
	default:
		return false
	}
}

// IndicatesOligoAnovulation reports whether the pattern satisfies the
// Rotterdam oligo/anovulation criterion.
func (cp CyclePattern) IndicatesOligoAnovulation() bool {
	return cp == CycleOligomenorrhea || cp == CycleAmenorrhea
}

// IsValid validates the lab priority.
func (lp LabPriority) IsValid() bool {
	switch lp {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank returns the sort rank of the priority; lower sorts first. Unknown
// priorities rank last.
func (lp LabPriority) Rank() int {
	switch lp {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 2
	}
}

// EvidenceFinding records the outcome of evaluating a single evidence
// criterion against a patient record. Source is empty when Present is false.
type EvidenceFinding struct {
	Present bool           `json:"present"`
	Source  EvidenceSource `json:"source,omitempty"`
}

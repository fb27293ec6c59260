package domain

// ClassificationResult is the outcome of a Rotterdam classification: the
// chosen label plus which criteria were satisfied.
type ClassificationResult struct {
	Phenotype Phenotype         `json:"phenotype"`
	Criteria  RotterdamCriteria `json:"criteria_met"`
}

// ScoredCause is one entry of a ranked root-cause list. Confidence is the
// percentage of the cause's required evidence found in the record, in
// [0, 100] rounded to one decimal place.
type ScoredCause struct {
	ID               string                     `json:"id"`
	Name             string                     `json:"name"`
	Description      string                     `json:"description"`
	Prevalence       string                     `json:"prevalence,omitempty"`
	EvidenceRequired []string                   `json:"evidence_required"`
	Evidence         map[string]EvidenceFinding `json:"evidence"`
	Confidence       float64                    `json:"confidence_score"`
	EvidenceFound    int                        `json:"evidence_found"`
	TotalEvidence    int                        `json:"total_evidence"`
}

// RecommendationSet groups the actionable output of a root-cause analysis
// into the four channels a care plan is organized around.
type RecommendationSet struct {
	Testing    []string `json:"testing"`
	Lifestyle  []string `json:"lifestyle"`
	Medical    []string `json:"medical"`
	Monitoring []string `json:"monitoring"`
}

// Map returns the recommendation channels as a name->list mapping for
// response payloads.
func (rs RecommendationSet) Map() map[string]any {
	return map[string]any{
		"testing":    stringListOrEmpty(rs.Testing),
		"lifestyle":  stringListOrEmpty(rs.Lifestyle),
		"medical":    stringListOrEmpty(rs.Medical),
		"monitoring": stringListOrEmpty(rs.Monitoring),
	}
}

func stringListOrEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

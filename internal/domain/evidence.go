package domain

// CriteriaInput carries the four raw diagnostic observations fed into the
// Rotterdam classifier. Clinical and biochemical hyperandrogenism are kept
// separate here; the classifier ORs them.
type CriteriaInput struct {
	OligoAnovulation          bool `json:"oligo_anovulation"`
	ClinicalHyperandrogenism  bool `json:"clinical_hyperandrogenism"`
	BiochemHyperandrogenism   bool `json:"biochemical_hyperandrogenism"`
	PolycysticOvaryMorphology bool `json:"polycystic_ovary_morphology"`
}

// Criteria collapses the input into the three Rotterdam criteria.
func (ci CriteriaInput) Criteria() RotterdamCriteria {
	return RotterdamCriteria{
		OligoAnovulation:  ci.OligoAnovulation,
		Hyperandrogenism:  ci.ClinicalHyperandrogenism || ci.BiochemHyperandrogenism,
		PolycysticOvaries: ci.PolycysticOvaryMorphology,
	}
}

// RotterdamCriteria holds the evaluated state of the three Rotterdam criteria
// for one patient record. Hyperandrogenism is already the OR of the clinical
// and biochemical sub-criteria.
type RotterdamCriteria struct {
	OligoAnovulation  bool `json:"oligo_anovulation"`
	Hyperandrogenism  bool `json:"hyperandrogenism"`
	PolycysticOvaries bool `json:"polycystic_ovaries"`
}

// Count returns how many of the three criteria are satisfied.
func (rc RotterdamCriteria) Count() int {
	n := 0
	if rc.OligoAnovulation {
		n++
	}
	if rc.Hyperandrogenism {
		n++
	}
	if rc.PolycysticOvaries {
		n++
	}
	return n
}

// Map returns the criteria as a name->bool map for response payloads.
func (rc RotterdamCriteria) Map() map[string]bool {
	return map[string]bool{
		"oligo_anovulation":  rc.OligoAnovulation,
		"hyperandrogenism":   rc.Hyperandrogenism,
		"polycystic_ovaries": rc.PolycysticOvaries,
	}
}

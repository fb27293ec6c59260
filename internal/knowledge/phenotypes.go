// Package knowledge holds the static clinical reference tables the
// decision-support services draw from: Rotterdam phenotype profiles,
// root-cause definitions, laboratory panels and test interpretations,
// nutrition catalogues and gynecological care options.
//
// Every accessor rebuilds its table on each call, so callers receive
// private copies and can annotate or filter them freely. None of the
// tables carry per-patient state.
package knowledge

import "github.com/pcos-cds-mcp-server/internal/domain"

// PhenotypeProfile describes one Rotterdam phenotype for patient-facing
// output.
type PhenotypeProfile struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Prevalence      string   `json:"prevalence,omitempty"`
	Characteristics []string `json:"characteristics"`
}

// PhenotypeProfiles returns the full phenotype reference keyed by
// phenotype label, including the Non-PCOS entry that callers fall back
// to when fewer than two criteria are met.
func PhenotypeProfiles() map[domain.Phenotype]PhenotypeProfile {
	return map[domain.Phenotype]PhenotypeProfile{
		domain.PHENOTYPE_A: {
			Name:        "Classic PCOS (Hyperandrogenic, Oligo-ovulatory, Polycystic Ovaries)",
			Description: "Classic PCOS with all three Rotterdam criteria met",
			Prevalence:  "~50% of PCOS cases",
			Characteristics: []string{
				"Irregular or absent periods",
				"Elevated androgens (clinical or biochemical)",
				"Polycystic ovaries on ultrasound",
				"Often associated with insulin resistance",
			},
		},
		domain.PHENOTYPE_B: {
			Name:        "Ovulatory PCOS (Hyperandrogenic, Ovulatory, Polycystic Ovaries)",
			Description: "PCOS with hyperandrogenism and polycystic ovaries but regular cycles",
			Prevalence:  "~20% of PCOS cases",
			Characteristics: []string{
				"Regular menstrual cycles",
				"Signs of hyperandrogenism (hirsutism, acne, etc.)",
				"Polycystic ovaries on ultrasound",
			},
		},
		domain.PHENOTYPE_C: {
			Name:        "Non-Polycystic Ovary PCOS (Hyperandrogenic, Oligo-ovulatory, Normal Ovaries)",
			Description: "PCOS with hyperandrogenism and ovulatory dysfunction but normal ovaries",
			Prevalence:  "~20% of PCOS cases",
			Characteristics: []string{
				"Irregular or absent periods",
				"Signs of hyperandrogenism",
				"Normal ovarian morphology on ultrasound",
			},
		},
		domain.PHENOTYPE_D: {
			Name:        "Non-Hyperandrogenic PCOS (Normoandrogenic, Oligo-ovulatory, Polycystic Ovaries)",
			Description: "PCOS with ovulatory dysfunction and polycystic ovaries but no hyperandrogenism",
			Prevalence:  "~10% of PCOS cases",
			Characteristics: []string{
				"Irregular or absent periods",
				"No clinical or biochemical hyperandrogenism",
				"Polycystic ovaries on ultrasound",
			},
		},
		domain.NON_PCOS: {
			Name:        "No PCOS Diagnosis",
			Description: "Insufficient evidence for PCOS diagnosis",
			Characteristics: []string{
				"Does not meet Rotterdam criteria",
				"May need evaluation for other conditions",
			},
		},
	}
}

// ProfileFor looks up a single phenotype profile.
func ProfileFor(p domain.Phenotype) (PhenotypeProfile, bool) {
	profile, ok := PhenotypeProfiles()[p]
	return profile, ok
}

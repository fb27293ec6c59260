package knowledge

// RootCause defines one candidate driver of PCOS symptoms together
// with the evidence keys that support it. Confidence scoring divides
// evidence found by len(EvidenceRequired), so the evidence list is the
// denominator as well as the checklist.
type RootCause struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	EvidenceRequired []string `json:"evidence_required"`
	Prevalence       string   `json:"prevalence"`
}

// Root cause identifiers. The recommendation engine keys its
// cause-specific advice off these.
const (
	CauseInsulinResistance       = "insulin_resistance"
	CauseChronicInflammation     = "chronic_inflammation"
	CauseAdrenalHyperandrogenism = "adrenal_hyperandrogenism"
	CauseThyroidDysfunction      = "thyroid_dysfunction"
	CauseVitaminDDeficiency      = "vitamin_d_deficiency"
	CauseGutDysbiosis            = "gut_dysbiosis"
	CauseSleepApnea              = "sleep_apnea"
)

// RootCauses returns the cause catalogue in its canonical order.
// The order matters: causes with equal confidence scores keep this
// relative order after the stable sort by confidence.
func RootCauses() []RootCause {
	return []RootCause{
		{
			ID:          CauseInsulinResistance,
			Name:        "Insulin Resistance",
			Description: "Impaired ability of cells to respond to insulin, leading to compensatory hyperinsulinemia",
			EvidenceRequired: []string{
				"elevated_fasting_insulin",
				"elevated_hba1c",
				"acanthosis_nigricans",
				"weight_gain_around_abdomen",
			},
			Prevalence: "70-80% of PCOS cases",
		},
		{
			ID:          CauseChronicInflammation,
			Name:        "Chronic Low-Grade Inflammation",
			Description: "Elevated inflammatory markers contributing to metabolic and reproductive dysfunction",
			EvidenceRequired: []string{
				"elevated_crp",
				"elevated_il6",
				"fatigue",
				"digestive_issues",
			},
			Prevalence: "Common in PCOS",
		},
		{
			ID:          CauseAdrenalHyperandrogenism,
			Name:        "Adrenal Hyperandrogenism",
			Description: "Excess androgen production from adrenal glands",
			EvidenceRequired: []string{
				"elevated_dheas",
				"normal_ovarian_imaging",
				"stress_history",
			},
			Prevalence: "20-30% of PCOS cases",
		},
		{
			ID:          CauseThyroidDysfunction,
			Name:        "Thyroid Dysfunction",
			Description: "Hypothyroidism or Hashimoto's thyroiditis exacerbating PCOS symptoms",
			EvidenceRequired: []string{
				"elevated_tsh",
				"low_ft4",
				"thyroid_antibodies_present",
				"fatigue",
				"weight_gain",
			},
			Prevalence: "Common comorbidity with PCOS",
		},
		{
			ID:          CauseVitaminDDeficiency,
			Name:        "Vitamin D Deficiency",
			Description: "Low vitamin D levels contributing to insulin resistance and inflammation",
			EvidenceRequired: []string{
				"low_vitamin_d",
				"bone_pain",
				"muscle_weakness",
			},
			Prevalence: "67-85% of PCOS patients",
		},
		{
			ID:          CauseGutDysbiosis,
			Name:        "Gut Microbiome Imbalance",
			Description: "Altered gut microbiota contributing to inflammation and metabolic dysfunction",
			EvidenceRequired: []string{
				"digestive_issues",
				"food_intolerances",
				"history_of_antibiotic_use",
			},
			Prevalence: "Common but underdiagnosed",
		},
		{
			ID:          CauseSleepApnea,
			Name:        "Sleep Apnea",
			Description: "Obstructive sleep apnea contributing to metabolic and hormonal imbalances",
			EvidenceRequired: []string{
				"daytime_sleepiness",
				"snoring",
				"morning_headaches",
				"elevated_bmi",
			},
			Prevalence: "Up to 70% in obese PCOS patients",
		},
	}
}

// RootCauseByID looks up a single cause definition.
func RootCauseByID(id string) (RootCause, bool) {
	for _, c := range RootCauses() {
		if c.ID == id {
			return c, true
		}
	}
	return RootCause{}, false
}

// RootCauseIndex returns the catalogue keyed by cause ID, for payloads
// that expose the whole reference table.
func RootCauseIndex() map[string]RootCause {
	index := make(map[string]RootCause, len(RootCauses()))
	for _, c := range RootCauses() {
		index[c.ID] = c
	}
	return index
}

package knowledge

// LabPanel groups the individual tests ordered together for one
// clinical question, with collection notes that drive patient
// preparation instructions.
type LabPanel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tests       []string `json:"tests"`
	Frequency   string   `json:"frequency"`
	Notes       string   `json:"notes"`
}

// Lab panel identifiers.
const (
	PanelInitialEvaluation  = "initial_pcos_evaluation"
	PanelInsulinResistance  = "insulin_resistance"
	PanelAndrogen           = "androgen_panel"
	PanelAdrenal            = "adrenal_panel"
	PanelInflammation       = "inflammation_panel"
	PanelNutrientDeficiency = "nutrient_deficiency"
	PanelCardiovascularRisk = "cardiovascular_risk"
	PanelFertility          = "fertility_panel"
)

// LabPanels returns the full panel catalogue in its canonical order.
func LabPanels() []LabPanel {
	return []LabPanel{
		{
			ID:          PanelInitialEvaluation,
			Name:        "Initial PCOS Evaluation Panel",
			Description: "Comprehensive initial lab workup for PCOS diagnosis and evaluation",
			Tests: []string{
				"CBC with differential",
				"Comprehensive Metabolic Panel (CMP)",
				"Lipid Panel",
				"Hemoglobin A1c (HbA1c)",
				"Fasting Insulin",
				"Fasting Glucose",
				"25-Hydroxy Vitamin D",
				"Thyroid Stimulating Hormone (TSH)",
				"Free T4",
				"Thyroid Peroxidase Antibodies (TPO)",
				"Prolactin",
				"Total Testosterone",
				"Free Testosterone",
				"DHEA-Sulfate",
				"Sex Hormone Binding Globulin (SHBG)",
				"Luteinizing Hormone (LH)",
				"Follicle Stimulating Hormone (FSH)",
				"Estradiol",
				"Progesterone (day 21 of cycle)",
				"AMH (Anti-Müllerian Hormone)",
				"C-Reactive Protein (hs-CRP)",
				"Fasting Lipid Profile",
			},
			Frequency: "As needed for diagnosis and initial evaluation",
			Notes:     "Best performed during days 3-5 of menstrual cycle if possible",
		},
		{
			ID:          PanelInsulinResistance,
			Name:        "Insulin Resistance Panel",
			Description: "Tests to evaluate for insulin resistance and glucose metabolism",
			Tests: []string{
				"Fasting Insulin",
				"Fasting Glucose",
				"Hemoglobin A1c (HbA1c)",
				"2-hour Oral Glucose Tolerance Test (OGTT)",
				"C-Peptide",
				"HOMA-IR (calculated from fasting glucose and insulin)",
			},
			Frequency: "Annually or as clinically indicated",
			Notes:     "Fasting required for 8-12 hours before testing",
		},
		{
			ID:          PanelAndrogen,
			Name:        "Androgen Panel",
			Description: "Evaluation of androgen levels and metabolism",
			Tests: []string{
				"Total Testosterone",
				"Free Testosterone",
				"DHEA-Sulfate",
				"Androstenedione",
				"Sex Hormone Binding Globulin (SHBG)",
				"Free Androgen Index (FAI, calculated)",
			},
			Frequency: "As needed for diagnosis and monitoring",
			Notes:     "Best performed in the morning during days 3-5 of menstrual cycle",
		},
		{
			ID:          PanelAdrenal,
			Name:        "Adrenal Function Panel",
			Description: "Evaluation of adrenal gland function and steroidogenesis",
			Tests: []string{
				"DHEA-Sulfate",
				"17-Hydroxyprogesterone (17-OHP)",
				"Cortisol (AM and PM)",
				"ACTH",
				"24-hour Urinary Free Cortisol",
				"Aldosterone",
				"Renin Activity",
			},
			Frequency: "As clinically indicated",
			Notes:     "Timing of collection is important for some tests",
		},
		{
			ID:          PanelInflammation,
			Name:        "Inflammation and Autoimmunity Panel",
			Description: "Markers of inflammation and autoimmune activity",
			Tests: []string{
				"C-Reactive Protein (hs-CRP)",
				"Erythrocyte Sedimentation Rate (ESR)",
				"Antinuclear Antibody (ANA)",
				"Thyroid Peroxidase Antibodies (TPO)",
				"Thyroglobulin Antibodies",
				"Interleukin-6 (IL-6)",
				"Tumor Necrosis Factor-alpha (TNF-α)",
				"Homocysteine",
			},
			Frequency: "As clinically indicated",
			Notes:     "Fasting not required",
		},
		{
			ID:          PanelNutrientDeficiency,
			Name:        "Nutrient Deficiency Panel",
			Description: "Assessment of common nutrient deficiencies in PCOS",
			Tests: []string{
				"25-Hydroxy Vitamin D",
				"Magnesium (RBC)",
				"Zinc",
				"Selenium",
				"Vitamin B12",
				"Folate (RBC)",
				"Ferritin",
				"Iron and Total Iron Binding Capacity (TIBC)",
				"Omega-3 Index",
			},
			Frequency: "Annually or as indicated",
			Notes:     "Fasting not required",
		},
		{
			ID:          PanelCardiovascularRisk,
			Name:        "Cardiovascular Risk Panel",
			Description: "Assessment of cardiovascular risk factors",
			Tests: []string{
				"Lipid Panel (Total Cholesterol, HDL, LDL, Triglycerides)",
				"Lipoprotein(a)",
				"Apolipoprotein B",
				"Homocysteine",
				"hs-CRP",
				"Fasting Insulin",
				"Hemoglobin A1c (HbA1c)",
				"Uric Acid",
			},
			Frequency: "Annually or as indicated",
			Notes:     "Fasting required for lipid panel",
		},
		{
			ID:          PanelFertility,
			Name:        "Fertility and Reproductive Panel",
			Description: "Evaluation of reproductive hormones and fertility markers",
			Tests: []string{
				"Luteinizing Hormone (LH)",
				"Follicle Stimulating Hormone (FSH)",
				"Estradiol",
				"Progesterone (day 21)",
				"Prolactin",
				"AMH (Anti-Müllerian Hormone)",
				"Inhibin B",
				"Thyroid Stimulating Hormone (TSH)",
				"Free T4",
			},
			Frequency: "As part of fertility evaluation",
			Notes:     "Timing in menstrual cycle is critical for accurate results",
		},
	}
}

// LabPanelByID looks up a single panel definition.
func LabPanelByID(id string) (LabPanel, bool) {
	for _, p := range LabPanels() {
		if p.ID == id {
			return p, true
		}
	}
	return LabPanel{}, false
}

// LabPanelIndex returns the catalogue keyed by panel ID, for payloads
// that expose the whole reference table.
func LabPanelIndex() map[string]LabPanel {
	index := make(map[string]LabPanel, len(LabPanels()))
	for _, p := range LabPanels() {
		index[p.ID] = p
	}
	return index
}

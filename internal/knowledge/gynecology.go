package knowledge

// Gynecological care catalogues: symptom management strategies,
// fertility treatment pathways and contraception options. The tables
// are rebuilt on every call so callers can annotate or trim the
// returned values without affecting other requests.

// SymptomGuide pairs a gynecological symptom description with its
// management options and day-to-day self-care advice.
type SymptomGuide struct {
	Description string   `json:"description"`
	Management  []string `json:"management_options"`
	SelfCare    []string `json:"self_care_tips"`
}

// FertilityTreatment describes one treatment pathway for anovulatory
// infertility in PCOS.
type FertilityTreatment struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Options        []string `json:"options,omitempty"`
	SuccessRate    string   `json:"success_rate"`
	Considerations string   `json:"considerations"`
}

// ContraceptionMethod groups contraceptive types that share a hormonal
// profile, with the benefits and risks relevant to PCOS.
type ContraceptionMethod struct {
	Types    []string `json:"types"`
	Benefits []string `json:"benefits"`
	Risks    []string `json:"risks"`
}

// Contraception catalogue keys.
const (
	ContraceptionCombinedHormonal = "combined_hormonal"
	ContraceptionProgestinOnly    = "progestin_only"
	ContraceptionNonHormonal      = "non_hormonal"
)

// SymptomManagement returns the management guide for the gynecological
// symptoms the review service recognizes, keyed by symptom identifier.
func SymptomManagement() map[string]SymptomGuide {
	return map[string]SymptomGuide{
		"irregular_periods": {
			Description: "Irregular or absent menstrual cycles",
			Management: []string{
				"Hormonal birth control (pills, patch, ring, IUD)",
				"Progestin therapy",
				"Lifestyle modifications (diet, exercise, stress management)",
				"Inositol supplements",
				"Metformin (if insulin resistance is present)",
			},
			SelfCare: []string{
				"Maintain a healthy weight",
				"Exercise regularly but avoid excessive exercise",
				"Manage stress through relaxation techniques",
			},
		},
		"heavy_bleeding": {
			Description: "Heavy or prolonged menstrual bleeding",
			Management: []string{
				"Hormonal birth control",
				"Nonsteroidal anti-inflammatory drugs (NSAIDs)",
				"Tranexamic acid",
				"Endometrial ablation (in severe cases)",
				"Hormonal IUD",
			},
			SelfCare: []string{
				"Use a menstrual cup or period underwear for better management",
				"Stay hydrated",
				"Consider iron-rich foods or supplements",
			},
		},
		"pelvic_pain": {
			Description: "Pelvic pain or discomfort",
			Management: []string{
				"Over-the-counter pain relievers (ibuprofen, naproxen)",
				"Heat therapy",
				"Hormonal birth control",
				"Physical therapy",
				"Lifestyle modifications",
			},
			SelfCare: []string{
				"Apply heat to the lower abdomen",
				"Practice relaxation techniques",
				"Try gentle stretching or yoga",
			},
		},
		"hirsutism": {
			Description: "Excessive hair growth (face, chest, back)",
			Management: []string{
				"Hair removal methods (shaving, waxing, laser, electrolysis)",
				"Anti-androgen medications (spironolactone, flutamide)",
				"Topical eflornithine cream",
				"Hormonal birth control",
			},
			SelfCare: []string{
				"Consider hair removal methods that work for you",
				"Be gentle with your skin to prevent irritation",
				"Speak with a dermatologist about treatment options",
			},
		},
		"acne": {
			Description: "Acne or oily skin",
			Management: []string{
				"Topical retinoids",
				"Antibacterial washes",
				"Oral antibiotics (for moderate to severe cases)",
				"Hormonal birth control",
				"Spironolactone",
			},
			SelfCare: []string{
				"Follow a gentle skincare routine",
				"Avoid picking or squeezing pimples",
				"Consider non-comedogenic makeup and skincare products",
			},
		},
		"hair_loss": {
			Description: "Female pattern hair loss or thinning",
			Management: []string{
				"Minoxidil topical solution",
				"Spironolactone",
				"Low-level laser therapy",
				"Nutritional supplements (biotin, iron, zinc)",
				"Gentle hair care practices",
			},
			SelfCare: []string{
				"Be gentle when brushing and styling hair",
				"Avoid tight hairstyles that pull on the hair",
				"Consider a volumizing shampoo and conditioner",
			},
		},
	}
}

// DefaultSelfCareTips is the fallback advice for symptoms without a
// dedicated guide.
func DefaultSelfCareTips() []string {
	return []string{
		"Maintain a healthy lifestyle with balanced nutrition and regular exercise",
		"Stay hydrated and get adequate sleep",
		"Manage stress through relaxation techniques",
	}
}

// FertilityTreatments returns all treatment pathways in escalation
// order, from first-line lifestyle work through surgical options.
func FertilityTreatments() []FertilityTreatment {
	return []FertilityTreatment{
		{
			ID:             "lifestyle_modifications",
			Name:           "Lifestyle Modifications",
			Description:    "Weight management, diet, and exercise",
			SuccessRate:    "Varies, but can improve fertility in overweight/obese women with PCOS",
			Considerations: "First-line treatment, recommended for all women with PCOS who are overweight or obese",
		},
		{
			ID:          "ovulation_induction",
			Name:        "Ovulation Induction",
			Description: "Medications to stimulate ovulation",
			Options: []string{
				"Clomiphene citrate (Clomid, Serophene)",
				"Letrozole (Femara)",
				"Gonadotropins (injectable hormones)",
			},
			SuccessRate:    "~20-60% pregnancy rate per cycle, depending on the medication and patient factors",
			Considerations: "Requires monitoring with ultrasound and blood work",
		},
		{
			ID:             "metformin",
			Name:           "Metformin",
			Description:    "Insulin-sensitizing medication",
			SuccessRate:    "Modest improvement in ovulation and pregnancy rates, especially in women with insulin resistance",
			Considerations: "Often used in combination with other fertility treatments",
		},
		{
			ID:             "intrauterine_insemination",
			Name:           "Intrauterine Insemination (IUI)",
			Description:    "Placing washed sperm directly into the uterus",
			SuccessRate:    "~10-20% per cycle (higher when combined with ovulation induction)",
			Considerations: "Often used with ovulation induction medications",
		},
		{
			ID:             "in_vitro_fertilization",
			Name:           "In Vitro Fertilization (IVF)",
			Description:    "Fertilization of eggs with sperm in a lab, then transferring embryos to the uterus",
			SuccessRate:    "~30-50% per cycle in women with PCOS under 35",
			Considerations: "Higher risk of ovarian hyperstimulation syndrome (OHSS) in women with PCOS",
		},
		{
			ID:             "ovarian_drilling",
			Name:           "Ovarian Drilling",
			Description:    "Laparoscopic procedure to make small punctures in the ovary",
			SuccessRate:    "~30-50% pregnancy rate within 6-12 months",
			Considerations: "Second-line treatment, typically reserved for women who don't respond to medication",
		},
	}
}

// FertilityTreatmentByID looks up a single treatment pathway.
func FertilityTreatmentByID(id string) (FertilityTreatment, bool) {
	for _, t := range FertilityTreatments() {
		if t.ID == id {
			return t, true
		}
	}
	return FertilityTreatment{}, false
}

// ContraceptionOptions returns the contraception catalogue keyed by
// method family.
func ContraceptionOptions() map[string]ContraceptionMethod {
	return map[string]ContraceptionMethod{
		ContraceptionCombinedHormonal: {
			Types: []string{"Pill", "Patch", "Vaginal ring"},
			Benefits: []string{
				"Regulates menstrual cycles",
				"Reduces androgen levels",
				"Improves acne and hirsutism",
				"Reduces risk of endometrial cancer",
			},
			Risks: []string{
				"Increased risk of blood clots (especially in women with other risk factors)",
				"May worsen insulin resistance",
				"Not recommended for women over 35 who smoke",
			},
		},
		ContraceptionProgestinOnly: {
			Types: []string{"Mini-pill", "Implant", "Injection", "Hormonal IUD"},
			Benefits: []string{
				"Fewer side effects than combined methods",
				"Safe for women who can't use estrogen",
				"Hormonal IUD can reduce heavy bleeding",
			},
			Risks: []string{
				"May cause irregular bleeding",
				"Some methods may worsen insulin resistance",
				"Weight gain possible with injection",
			},
		},
		ContraceptionNonHormonal: {
			Types: []string{"Copper IUD", "Barrier methods", "Fertility awareness"},
			Benefits: []string{
				"No hormonal side effects",
				"Copper IUD is highly effective and long-lasting",
				"No impact on future fertility",
			},
			Risks: []string{
				"No improvement in PCOS symptoms",
				"Copper IUD may worsen menstrual cramps and bleeding",
				"Barrier methods have higher failure rates with typical use",
			},
		},
	}
}

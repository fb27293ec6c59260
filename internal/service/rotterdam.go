package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// RotterdamClassifier assigns PCOS phenotypes from the Rotterdam
// consensus criteria: two of oligo/anovulation, hyperandrogenism and
// polycystic ovarian morphology make the diagnosis, and the combination
// met selects the phenotype label.
type RotterdamClassifier struct {
	logger *logrus.Logger
}

// NewRotterdamClassifier creates a new Rotterdam phenotype classifier.
func NewRotterdamClassifier(logger *logrus.Logger) *RotterdamClassifier {
	return &RotterdamClassifier{logger: logger}
}

// EvaluateCriteria derives the three Rotterdam criteria from a patient
// record. Oligo/anovulation comes from the reported cycle pattern,
// hyperandrogenism from the clinical and biochemical flags, and ovarian
// morphology from the ultrasound section.
func (c *RotterdamClassifier) EvaluateCriteria(record domain.PatientRecord) domain.RotterdamCriteria {
	input := domain.CriteriaInput{
		OligoAnovulation:          domain.CyclePattern(record.String("menstrual_cycle_regularity")).IndicatesOligoAnovulation(),
		ClinicalHyperandrogenism:  record.Bool("clinical_hyperandrogenism"),
		BiochemHyperandrogenism:   record.Bool("biochemical_hyperandrogenism"),
		PolycysticOvaryMorphology: record.SectionBool("ultrasound_results", "pcos_morphology"),
	}
	return input.Criteria()
}

// Classify maps the evaluated criteria onto one of the five phenotype
// labels. Fewer than two criteria is Non-PCOS; all three is phenotype A;
// the two-criterion combinations select B, C or D.
func (c *RotterdamClassifier) Classify(ctx context.Context, criteria domain.RotterdamCriteria) domain.ClassificationResult {
	phenotype := c.determinePhenotype(criteria)

	c.logger.WithFields(logrus.Fields{
		"phenotype":          phenotype.String(),
		"criteria_met":       criteria.Count(),
		"oligo_anovulation":  criteria.OligoAnovulation,
		"hyperandrogenism":   criteria.Hyperandrogenism,
		"polycystic_ovaries": criteria.PolycysticOvaries,
	}).Info("Completed Rotterdam classification")

	return domain.ClassificationResult{
		Phenotype: phenotype,
		Criteria:  criteria,
	}
}

// ClassifyRecord evaluates and classifies in one step.
func (c *RotterdamClassifier) ClassifyRecord(ctx context.Context, record domain.PatientRecord) domain.ClassificationResult {
	return c.Classify(ctx, c.EvaluateCriteria(record))
}

func (c *RotterdamClassifier) determinePhenotype(criteria domain.RotterdamCriteria) domain.Phenotype {
	// Fewer than 2 of 3 criteria does not support a PCOS diagnosis
	if criteria.Count() < 2 {
		return domain.NON_PCOS
	}

	// Phenotype A: all three criteria
	if criteria.Count() == 3 {
		return domain.PHENOTYPE_A
	}

	// Phenotype B: hyperandrogenism + polycystic ovaries
	if criteria.Hyperandrogenism && criteria.PolycysticOvaries {
		return domain.PHENOTYPE_B
	}

	// Phenotype C: hyperandrogenism + oligo/anovulation
	if criteria.Hyperandrogenism && criteria.OligoAnovulation {
		return domain.PHENOTYPE_C
	}

	// Phenotype D: oligo/anovulation + polycystic ovaries
	if criteria.OligoAnovulation && criteria.PolycysticOvaries {
		return domain.PHENOTYPE_D
	}

	return domain.NON_PCOS
}

// ManagementRecommendations builds the phenotype-appropriate management
// plan. All diagnosed phenotypes share the lifestyle and monitoring
// base; the medical channel depends on which criteria the phenotype
// carries, on fertility goals and on documented insulin resistance.
func (c *RotterdamClassifier) ManagementRecommendations(phenotype domain.Phenotype, record domain.PatientRecord) domain.RecommendationSet {
	recs := domain.RecommendationSet{
		Lifestyle:  []string{},
		Medical:    []string{},
		Monitoring: []string{},
	}

	if phenotype.MeetsDiagnosticCriteria() {
		recs.Lifestyle = append(recs.Lifestyle,
			"Maintain a healthy weight through diet and exercise",
			"Engage in regular physical activity (150 minutes/week)",
			"Follow a balanced diet with emphasis on whole foods",
		)
		recs.Monitoring = append(recs.Monitoring,
			"Regular monitoring of weight and BMI",
			"Annual screening for diabetes/impaired glucose tolerance",
			"Regular lipid profile assessment",
		)
	}

	if phenotype.IsHyperandrogenic() {
		recs.Medical = append(recs.Medical,
			"Consider anti-androgen therapy if hirsutism/acne is problematic",
		)
	}

	if phenotype.IsOligoOvulatory() {
		if record.SectionBool("fertility_goals", "pregnancy_desired") {
			recs.Medical = append(recs.Medical,
				"Ovulation induction may be needed for fertility",
			)
		} else {
			recs.Medical = append(recs.Medical,
				"Hormonal contraceptives may regulate cycles and reduce endometrial cancer risk",
			)
		}
	}

	if record.SectionBool("insulin_resistance", "present") {
		recs.Medical = append(recs.Medical,
			"Consider metformin or other insulin-sensitizing agents",
		)
	}

	return recs
}

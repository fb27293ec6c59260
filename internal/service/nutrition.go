package service

import (
	"context"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/knowledge"
)

// plantSwaps rewrites animal proteins for vegetarian and vegan plans.
var plantSwaps = strings.NewReplacer(
	"chicken", "tofu",
	"turkey", "tempeh",
	"salmon", "chickpeas",
	"fish", "lentils",
)

// NutritionPlanner builds phenotype-specific dietary guidance and
// sample meal plans.
type NutritionPlanner struct {
	logger *logrus.Logger
	rng    *rand.Rand
}

// NewNutritionPlanner creates a planner with a time-seeded sampler.
func NewNutritionPlanner(logger *logrus.Logger) *NutritionPlanner {
	return NewNutritionPlannerWithSeed(logger, time.Now().UnixNano())
}

// NewNutritionPlannerWithSeed creates a planner with a fixed sampling
// seed so meal selection is reproducible.
func NewNutritionPlannerWithSeed(logger *logrus.Logger, seed int64) *NutritionPlanner {
	return &NutritionPlanner{
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Guidance assembles dietary guidelines for the record's phenotype and
// preferences.
func (s *NutritionPlanner) Guidance(ctx context.Context, record domain.PatientRecord) DietaryGuidance {
	profile := record.String("pcos_phenotype")
	s.logger.WithField("profile", profile).Debug("Building dietary guidance")

	guidance := DietaryGuidance{
		GeneralGuidelines: []string{
			"Eat balanced meals with protein, healthy fats, and fiber at each meal",
			"Choose low-glycemic index carbohydrates",
			"Include anti-inflammatory foods in your diet",
			"Stay hydrated with water and herbal teas",
			"Practice mindful eating and listen to hunger/fullness cues",
		},
		FoodsToInclude: []string{},
		FoodsToLimit:   []string{},
		LifestyleRecommendations: []string{
			"Aim for consistent meal timing",
			"Get regular physical activity",
			"Manage stress through relaxation techniques",
			"Prioritize quality sleep",
		},
	}

	switch profile {
	case knowledge.ProfileInsulinResistant:
		guidance.GeneralGuidelines = append(guidance.GeneralGuidelines,
			"Pair carbohydrates with protein or healthy fats to slow glucose absorption",
			"Focus on high-fiber foods to improve insulin sensitivity",
		)
		guidance.FoodsToInclude = append(guidance.FoodsToInclude,
			"Cinnamon (may help with blood sugar control)",
			"Apple cider vinegar (may improve insulin sensitivity)",
			"Chromium-rich foods (broccoli, green beans, nuts)",
		)
	case knowledge.ProfileInflammatory:
		guidance.GeneralGuidelines = append(guidance.GeneralGuidelines,
			"Focus on anti-inflammatory foods",
			"Include omega-3 fatty acids regularly",
		)
		guidance.FoodsToInclude = append(guidance.FoodsToInclude,
			"Turmeric and ginger (powerful anti-inflammatories)",
			"Fatty fish (salmon, mackerel, sardines)",
			"Colorful fruits and vegetables (rich in antioxidants)",
		)
	case knowledge.ProfileAdrenal:
		guidance.GeneralGuidelines = append(guidance.GeneralGuidelines,
			"Don't skip meals to maintain stable blood sugar",
			"Include protein with each meal and snack",
		)
		guidance.FoodsToInclude = append(guidance.FoodsToInclude,
			"Magnesium-rich foods (leafy greens, nuts, seeds)",
			"Vitamin C-rich foods (citrus fruits, bell peppers)",
			"Complex carbohydrates for sustained energy",
		)
	}

	if hasPreference(record, "vegetarian") {
		guidance.FoodsToInclude = append(guidance.FoodsToInclude,
			"Plant-based protein sources (tofu, tempeh, legumes, quinoa)",
			"Iron-rich plant foods with vitamin C to enhance absorption",
		)
	}
	if hasPreference(record, "vegan") {
		guidance.FoodsToInclude = append(guidance.FoodsToInclude,
			"Algal oil or flaxseeds for omega-3s",
			"Fortified plant milks and nutritional yeast for B12",
		)
	}

	if record.Bool("food_allergies") {
		guidance.FoodsToAvoid = record.StringList("food_allergies")
	}

	return guidance
}

// MealPlan samples one day of meals from the profile's pools. Unknown
// profiles get an empty plan.
func (s *NutritionPlanner) MealPlan(ctx context.Context, record domain.PatientRecord) PlannedMeals {
	plan := PlannedMeals{
		Breakfast:      []string{},
		MorningSnack:   []string{},
		Lunch:          []string{},
		AfternoonSnack: []string{},
		Dinner:         []string{},
		EveningSnack:   []string{},
	}

	pools, ok := knowledge.MealPlanFor(record.String("pcos_phenotype"))
	if !ok {
		return plan
	}

	plan.Breakfast = s.sample(pools.Breakfast, 2)
	plan.Lunch = s.sample(pools.Lunch, 2)
	plan.Dinner = s.sample(pools.Dinner, 2)

	// Snack pools hold three options spread across the day.
	snacks := pools.Snacks
	plan.MorningSnack = s.sample(snacks, 2)
	snacks = subtract(snacks, plan.MorningSnack)
	plan.AfternoonSnack = s.sample(snacks, 2)
	snacks = subtract(snacks, plan.AfternoonSnack)
	plan.EveningSnack = s.sample(snacks, 1)

	if hasPreference(record, "vegetarian") || hasPreference(record, "vegan") {
		plan = plan.withPlantProteins()
	}

	return plan
}

// RecipeSuggestions lists the catalogue recipes in summary form.
func (s *NutritionPlanner) RecipeSuggestions() []RecipeSuggestion {
	return []RecipeSuggestion{
		{
			Name:        recipeName(knowledge.RecipeTurmericGoldenMilk),
			Description: "A soothing anti-inflammatory drink",
			PrepTime:    "5 min",
			CookTime:    "5 min",
		},
		{
			Name:        recipeName(knowledge.RecipeQuinoaVeggieBowl),
			Description: "A balanced meal with plant-based protein and healthy fats",
			PrepTime:    "10 min",
			CookTime:    "20 min",
		},
		{
			Name:        recipeName(knowledge.RecipeBerrySmoothie),
			Description: "Antioxidant-rich smoothie for hormone balance",
			PrepTime:    "5 min",
			CookTime:    "0 min",
		},
	}
}

func recipeName(id string) string {
	recipe, _ := knowledge.RecipeByID(id)
	return recipe.Name
}

// HelpfulTips returns general eating habits plus profile-specific ones.
func (s *NutritionPlanner) HelpfulTips(record domain.PatientRecord) []string {
	tips := []string{
		"Stay hydrated by drinking plenty of water throughout the day",
		"Practice mindful eating by eating slowly and without distractions",
		"Include protein with each meal to help with satiety and blood sugar control",
	}

	switch record.String("pcos_phenotype") {
	case knowledge.ProfileInsulinResistant:
		tips = append(tips,
			"Try adding 1-2 tablespoons of apple cider vinegar to water before meals to help with blood sugar control",
			"Consider using smaller plates to help with portion control",
			"Aim for at least 25-30 grams of fiber per day",
		)
	case knowledge.ProfileInflammatory:
		tips = append(tips,
			"Incorporate turmeric and ginger into your meals for their anti-inflammatory properties",
			"Consider an elimination diet if you suspect food sensitivities",
			"Focus on getting omega-3 fatty acids from fatty fish or flaxseeds",
		)
	case knowledge.ProfileAdrenal:
		tips = append(tips,
			"Don't skip meals to prevent blood sugar crashes",
			"Include a source of protein with each meal and snack",
			"Practice stress-reduction techniques like deep breathing or meditation",
		)
	}

	return tips
}

// sample picks k distinct items from pool; k is clamped to the pool
// size so depleted snack pools yield shorter lists instead of failing.
func (s *NutritionPlanner) sample(pool []string, k int) []string {
	if k > len(pool) {
		k = len(pool)
	}
	picked := make([]string, 0, k)
	for _, idx := range s.rng.Perm(len(pool))[:k] {
		picked = append(picked, pool[idx])
	}
	return picked
}

// subtract removes used items from pool, preserving pool order.
func subtract(pool, used []string) []string {
	remaining := make([]string, 0, len(pool))
	for _, item := range pool {
		if !slices.Contains(used, item) {
			remaining = append(remaining, item)
		}
	}
	return remaining
}

// hasPreference reports whether the record's dietary_preferences name
// the given diet, in either string or list form.
func hasPreference(record domain.PatientRecord, diet string) bool {
	switch prefs := record["dietary_preferences"].(type) {
	case string:
		return strings.Contains(strings.ToLower(prefs), diet)
	default:
		for _, pref := range record.StringList("dietary_preferences") {
			if strings.EqualFold(strings.TrimSpace(pref), diet) {
				return true
			}
		}
	}
	return false
}

// DietaryGuidance is the recommendation block of a nutrition plan.
type DietaryGuidance struct {
	GeneralGuidelines        []string `json:"general_guidelines"`
	FoodsToInclude           []string `json:"foods_to_include"`
	FoodsToLimit             []string `json:"foods_to_limit"`
	LifestyleRecommendations []string `json:"lifestyle_recommendations"`
	FoodsToAvoid             []string `json:"foods_to_avoid,omitempty"`
}

// PlannedMeals is one sampled day of meals.
type PlannedMeals struct {
	Breakfast      []string `json:"breakfast"`
	MorningSnack   []string `json:"morning_snack"`
	Lunch          []string `json:"lunch"`
	AfternoonSnack []string `json:"afternoon_snack"`
	Dinner         []string `json:"dinner"`
	EveningSnack   []string `json:"evening_snack"`
}

func (p PlannedMeals) withPlantProteins() PlannedMeals {
	swap := func(items []string) []string {
		swapped := make([]string, len(items))
		for i, item := range items {
			swapped[i] = plantSwaps.Replace(item)
		}
		return swapped
	}
	return PlannedMeals{
		Breakfast:      swap(p.Breakfast),
		MorningSnack:   swap(p.MorningSnack),
		Lunch:          swap(p.Lunch),
		AfternoonSnack: swap(p.AfternoonSnack),
		Dinner:         swap(p.Dinner),
		EveningSnack:   swap(p.EveningSnack),
	}
}

// RecipeSuggestion is the summary form of a catalogue recipe.
type RecipeSuggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PrepTime    string `json:"prep_time"`
	CookTime    string `json:"cook_time"`
}

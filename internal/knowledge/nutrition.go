package knowledge

// FoodCategory lists the foods to favor and the foods to limit within
// one food group.
type FoodCategory struct {
	Recommended []string `json:"recommended"`
	Limit       []string `json:"limit,omitempty"`
}

// MealPlan holds the candidate meals for one metabolic profile. The
// planner samples from these pools, so each slice needs at least as
// many entries as the largest sample it serves.
type MealPlan struct {
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
	Snacks    []string `json:"snacks"`
}

// Nutrition summarizes the macros of a single serving.
type Nutrition struct {
	Calories int    `json:"calories"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
	Protein  string `json:"protein"`
}

// Recipe is one PCOS-friendly recipe with preparation details.
type Recipe struct {
	Name         string    `json:"name"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	Benefits     string    `json:"benefits"`
	Nutrition    Nutrition `json:"nutrition"`
}

// Metabolic profiles used to key meal plans and dietary guidance.
const (
	ProfileInsulinResistant = "insulin_resistant"
	ProfileInflammatory     = "inflammatory"
	ProfileAdrenal          = "adrenal"
)

// Recipe identifiers.
const (
	RecipeTurmericGoldenMilk = "turmeric_golden_milk"
	RecipeQuinoaVeggieBowl   = "quinoa_veggie_bowl"
	RecipeBerrySmoothie      = "berry_smoothie"
)

// FoodRecommendations returns the food guidance catalogue keyed by
// food group.
func FoodRecommendations() map[string]FoodCategory {
	return map[string]FoodCategory{
		"proteins": {
			Recommended: []string{
				"Fatty fish (salmon, mackerel, sardines)",
				"Poultry (chicken, turkey)",
				"Plant-based proteins (tofu, tempeh, edamame)",
				"Legumes (lentils, chickpeas, black beans)",
				"Eggs (especially omega-3 enriched)",
				"Lean meats (in moderation)",
				"Greek yogurt (unsweetened)",
				"Cottage cheese (low-fat)",
			},
			Limit: []string{
				"Processed meats (sausages, bacon, deli meats)",
				"Fried meats",
				"Breaded or deep-fried proteins",
			},
		},
		"carbohydrates": {
			Recommended: []string{
				"Non-starchy vegetables (leafy greens, broccoli, cauliflower, zucchini)",
				"Low-glycemic fruits (berries, apples, pears, citrus)",
				"Whole grains (quinoa, brown rice, oats, farro)",
				"Sweet potatoes (in moderation)",
				"Legumes (lentils, chickpeas, black beans)",
				"Chia seeds and flaxseeds",
			},
			Limit: []string{
				"Refined grains (white bread, white rice, white pasta)",
				"Sugary foods and beverages",
				"Processed snacks and baked goods",
				"Sugary breakfast cereals",
			},
		},
		"fats": {
			Recommended: []string{
				"Avocados",
				"Nuts and seeds (almonds, walnuts, chia, flax, pumpkin seeds)",
				"Olive oil and olives",
				"Fatty fish (salmon, mackerel, sardines)",
				"Nut butters (without added sugars)",
				"Coconut (in moderation)",
				"Dark chocolate (85% cocoa or higher)",
			},
			Limit: []string{
				"Trans fats (partially hydrogenated oils)",
				"Excessive saturated fats",
				"Processed vegetable oils (soybean, corn, canola)",
			},
		},
		"dairy_alternatives": {
			Recommended: []string{
				"Almond milk (unsweetened)",
				"Coconut milk (unsweetened)",
				"Oat milk (unsweetened, in moderation)",
				"Hemp milk",
				"Cashew milk",
			},
			Limit: []string{
				"Sweetened non-dairy milks",
				"Flavored dairy products with added sugars",
			},
		},
		"herbs_spices": {
			Recommended: []string{
				"Cinnamon (helps with blood sugar control)",
				"Turmeric (anti-inflammatory)",
				"Ginger (aids digestion)",
				"Fenugreek (may help with blood sugar)",
				"Cumin (aids digestion)",
				"Basil (anti-inflammatory)",
				"Oregano (antioxidant properties)",
				"Mint (aids digestion)",
				"Rosemary (antioxidant properties)",
				"Sage (may help with blood sugar)",
			},
		},
	}
}

// MealPlans returns the meal plan catalogue keyed by metabolic profile.
func MealPlans() map[string]MealPlan {
	return map[string]MealPlan{
		ProfileInsulinResistant: {
			Breakfast: []string{
				"Greek yogurt with berries, chia seeds, and walnuts",
				"Veggie omelet with avocado and whole grain toast",
				"Overnight oats with almond butter, flaxseeds, and cinnamon",
			},
			Lunch: []string{
				"Grilled chicken salad with mixed greens, quinoa, and olive oil dressing",
				"Lentil soup with a side of roasted vegetables",
				"Quinoa bowl with roasted vegetables, chickpeas, and tahini dressing",
			},
			Dinner: []string{
				"Baked salmon with roasted Brussels sprouts and sweet potato",
				"Turkey chili with kidney beans and a side of steamed broccoli",
				"Grilled tofu with stir-fried vegetables and brown rice",
			},
			Snacks: []string{
				"Handful of almonds and an apple",
				"Carrot sticks with hummus",
				"Hard-boiled egg with cucumber slices",
			},
		},
		ProfileInflammatory: {
			Breakfast: []string{
				"Smoothie with spinach, berries, flaxseeds, and almond milk",
				"Chia pudding with walnuts and cinnamon",
				"Scrambled tofu with turmeric and vegetables",
			},
			Lunch: []string{
				"Quinoa salad with mixed greens, avocado, and olive oil dressing",
				"Grilled salmon with steamed vegetables and quinoa",
				"Lentil and vegetable soup with a side of mixed greens",
			},
			Dinner: []string{
				"Baked cod with roasted vegetables and quinoa",
				"Chickpea curry with brown rice and steamed greens",
				"Grilled chicken with roasted sweet potatoes and asparagus",
			},
			Snacks: []string{
				"Handful of walnuts and blueberries",
				"Sliced apple with almond butter",
				"Celery sticks with tahini",
			},
		},
		ProfileAdrenal: {
			Breakfast: []string{
				"Oatmeal with almond butter, chia seeds, and banana",
				"Smoothie with banana, spinach, almond butter, and flaxseeds",
				"Whole grain toast with avocado and poached eggs",
			},
			Lunch: []string{
				"Quinoa bowl with roasted vegetables, chickpeas, and tahini dressing",
				"Grilled chicken wrap with whole grain tortilla and vegetables",
				"Lentil soup with a side of whole grain bread",
			},
			Dinner: []string{
				"Baked salmon with quinoa and steamed vegetables",
				"Turkey meatballs with whole grain pasta and marinara sauce",
				"Grilled tofu with stir-fried vegetables and brown rice",
			},
			Snacks: []string{
				"Greek yogurt with berries",
				"Handful of mixed nuts and dried fruit",
				"Rice cakes with almond butter",
			},
		},
	}
}

// MealPlanFor looks up the meal plan for one metabolic profile.
func MealPlanFor(profile string) (MealPlan, bool) {
	plan, ok := MealPlans()[profile]
	return plan, ok
}

// Recipes returns the recipe catalogue keyed by recipe ID.
func Recipes() map[string]Recipe {
	return map[string]Recipe{
		RecipeTurmericGoldenMilk: {
			Name: "Anti-Inflammatory Turmeric Golden Milk",
			Ingredients: []string{
				"1 cup unsweetened almond milk (or coconut milk)",
				"1/2 tsp turmeric powder",
				"1/4 tsp cinnamon",
				"1/8 tsp ginger powder",
				"1/8 tsp black pepper (enhances curcumin absorption)",
				"1/2 tsp vanilla extract",
				"1/2 tsp honey or maple syrup (optional)",
				"Pinch of cardamom (optional)",
			},
			Instructions: []string{
				"Whisk all ingredients together in a small saucepan over medium heat.",
				"Heat until hot but not boiling, about 3-5 minutes.",
				"Strain through a fine mesh strainer into a mug.",
				"Sprinkle with additional cinnamon if desired and serve warm.",
			},
			Benefits:  "Reduces inflammation, supports liver detoxification, and may help with insulin sensitivity.",
			Nutrition: Nutrition{Calories: 50, Carbs: "5g", Fat: "3g", Protein: "1g"},
		},
		RecipeQuinoaVeggieBowl: {
			Name: "PCOS Power Bowl with Quinoa and Roasted Vegetables",
			Ingredients: []string{
				"1 cup cooked quinoa",
				"1 cup mixed roasted vegetables (zucchini, bell peppers, broccoli)",
				"1/2 avocado, sliced",
				"1/4 cup chickpeas, drained and rinsed",
				"1 tbsp tahini",
				"1/2 lemon, juiced",
				"1 tbsp olive oil",
				"1/2 tsp cumin",
				"Salt and pepper to taste",
				"Fresh parsley for garnish",
			},
			Instructions: []string{
				"In a bowl, combine cooked quinoa, roasted vegetables, chickpeas, and avocado.",
				"In a small bowl, whisk together tahini, lemon juice, olive oil, cumin, salt, and pepper.",
				"Drizzle the dressing over the bowl and toss gently to combine.",
				"Garnish with fresh parsley and serve.",
			},
			Benefits:  "High in fiber, plant-based protein, and healthy fats. Supports blood sugar balance and provides essential nutrients.",
			Nutrition: Nutrition{Calories: 450, Carbs: "50g", Fat: "25g", Protein: "12g"},
		},
		RecipeBerrySmoothie: {
			Name: "Antioxidant Berry Smoothie",
			Ingredients: []string{
				"1 cup mixed berries (strawberries, blueberries, raspberries)",
				"1/2 banana (frozen)",
				"1 tbsp chia seeds",
				"1 tbsp almond butter",
				"1 cup unsweetened almond milk",
				"1/2 tsp cinnamon",
				"Handful of spinach (optional)",
				"Ice cubes (optional)",
			},
			Instructions: []string{
				"Add all ingredients to a blender.",
				"Blend until smooth and creamy.",
				"Add more almond milk if needed to reach desired consistency.",
				"Pour into a glass and enjoy immediately.",
			},
			Benefits:  "Rich in antioxidants, fiber, and healthy fats. Supports hormone balance and reduces inflammation.",
			Nutrition: Nutrition{Calories: 250, Carbs: "35g", Fat: "10g", Protein: "6g"},
		},
	}
}

// RecipeByID looks up a single recipe.
func RecipeByID(id string) (Recipe, bool) {
	recipe, ok := Recipes()[id]
	return recipe, ok
}

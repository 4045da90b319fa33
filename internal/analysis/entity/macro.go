package entity

// Macro is one of the four tracked nutrient channels.
type Macro string

const (
	Calories Macro = "Calories"
	Protein  Macro = "Protein"
	Fat      Macro = "Fat"
	Carbs    Macro = "Carbs"
)

// Macros lists the channels in reporting order.
var Macros = []Macro{Calories, Protein, Fat, Carbs}

// USDA nutrient ids of the macro channels.
const (
	NutrientCalories int64 = 1008
	NutrientProtein  int64 = 1003
	NutrientFat      int64 = 1004
	NutrientCarbs    int64 = 1005
)

var nutrientIDs = map[Macro]int64{
	Calories: NutrientCalories,
	Protein:  NutrientProtein,
	Fat:      NutrientFat,
	Carbs:    NutrientCarbs,
}

// NutrientID returns the catalog id of m.
func (m Macro) NutrientID() int64 { return nutrientIDs[m] }

// MacroForNutrient maps a catalog nutrient id back to its macro.
func MacroForNutrient(id int64) (Macro, bool) {
	for m, n := range nutrientIDs {
		if n == id {
			return m, true
		}
	}
	return "", false
}

// MacroTotal is a target and the amount consumed on one day.
// Target is nil while the user has no calculated targets.
type MacroTotal struct {
	Macro    Macro
	Target   *float64
	Consumed float64
}

// Candidate is a food eligible for recommendation, per 100g.
type Candidate struct {
	FoodID          int64   `db:"food_id"`
	Name            string  `db:"name"`
	Category        string  `db:"category"`
	CaloriesPer100g float64 `db:"calories_per_100g"`
	ProteinPer100g  float64 `db:"protein_per_100g"`
	FatPer100g      float64 `db:"fat_per_100g"`
	CarbsPer100g    float64 `db:"carbs_per_100g"`
}

// WeeklyAverage is the average daily intake of a macro in the last seven
// days and in the seven days before. A nil average means no logs in that
// window.
type WeeklyAverage struct {
	Macro       Macro
	ThisWeekAvg *float64
	LastWeekAvg *float64
}

// EffectiveFood is a food's total contribution to a nutrient over a period.
type EffectiveFood struct {
	FoodID            int64   `db:"food_id" json:"food_id"`
	FoodName          string  `db:"food_name" json:"food_name"`
	TimesLogged       int     `db:"times_logged" json:"times_logged"`
	TotalContribution float64 `db:"total_contribution" json:"total_contribution"`
}

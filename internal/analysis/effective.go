package analysis

import "github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis/entity"

const (
	DefaultEffectiveDays  = 30
	maxEffectiveFoods     = 10
	invalidNutrientDetail = "invalid nutrient ID. Use 1003 (Protein), 1004 (Fat), 1005 (Carbs), or 1008 (Calories)"
)

type EffectiveFoods struct {
	Nutrient   entity.Macro           `json:"nutrient"`
	NutrientID int64                  `json:"nutrient_id"`
	PeriodDays int                    `json:"period_days"`
	TopFoods   []entity.EffectiveFood `json:"top_foods"`
}

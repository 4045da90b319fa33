package entity

import "time"

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

type ActivityLevel string

const (
	Light    ActivityLevel = "Light"
	Moderate ActivityLevel = "Moderate"
	Heavy    ActivityLevel = "Heavy"
)

type Goal string

const (
	Loss     Goal = "Loss"
	Maintain Goal = "Maintain"
	Gain     Goal = "Gain"
)

// Profile is the biometric row owned by a user. Targets stay nil until
// they are calculated.
type Profile struct {
	UserID         int64          `db:"user_id" json:"user_id"`
	BirthDate      *time.Time     `db:"birth_date" json:"birth_date"`
	Gender         *Gender        `db:"gender" json:"gender"`
	HeightCM       *float64       `db:"height_cm" json:"height_cm"`
	WeightKG       *float64       `db:"weight_kg" json:"weight_kg"`
	ActivityLevel  *ActivityLevel `db:"activity_level" json:"activity_level"`
	Goal           *Goal          `db:"goal" json:"goal"`
	TargetCalories *int           `db:"target_calories" json:"target_calories"`
	TargetProteinG *int           `db:"target_protein_g" json:"target_protein_g"`
	TargetCarbsG   *int           `db:"target_carbs_g" json:"target_carbs_g"`
	TargetFatG     *int           `db:"target_fat_g" json:"target_fat_g"`
}

// Update carries the fields a profile update may set; nil means "leave as is".
type Update struct {
	BirthDate     *time.Time
	Gender        *Gender
	HeightCM      *float64
	WeightKG      *float64
	ActivityLevel *ActivityLevel
	Goal          *Goal
}

// Targets is the outcome of a target calculation.
type Targets struct {
	BMR            int `json:"bmr"`
	TDEE           int `json:"tdee"`
	TargetCalories int `json:"target_calories"`
	TargetProteinG int `json:"target_protein_g"`
	TargetCarbsG   int `json:"target_carbs_g"`
	TargetFatG     int `json:"target_fat_g"`
}

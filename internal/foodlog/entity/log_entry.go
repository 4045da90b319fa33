package entity

import "time"

// LogEntry is one food eaten by a user.
type LogEntry struct {
	LogID            int64     `db:"log_id" json:"log_id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	FoodID           int64     `db:"food_id" json:"food_id"`
	DateEaten        time.Time `db:"date_eaten" json:"date_eaten"`
	ServingSizeGrams float64   `db:"serving_size_grams" json:"serving_size_grams"`
}

// EntryView is a log entry joined with its food and the macros of the
// serving, each rounded to one decimal.
type EntryView struct {
	LogID            int64     `db:"log_id" json:"log_id"`
	DateEaten        time.Time `db:"date_eaten" json:"date_eaten"`
	ServingSizeGrams float64   `db:"serving_size_grams" json:"serving_size_grams"`
	FoodID           int64     `db:"food_id" json:"food_id"`
	FoodName         string    `db:"food_name" json:"food_name"`
	CategoryName     *string   `db:"category_name" json:"category_name,omitempty"`
	Calories         float64   `db:"calories" json:"calories"`
	ProteinG         float64   `db:"protein_g" json:"protein_g"`
	CarbsG           float64   `db:"carbs_g" json:"carbs_g"`
	FatG             float64   `db:"fat_g" json:"fat_g"`
}

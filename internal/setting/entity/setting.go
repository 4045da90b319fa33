package entity

import (
	"encoding/json"
	"time"
)

// Setting is a JSON document stored in the settings table under a fixed id.
type Setting struct {
	ID        string          `db:"id" json:"id"`
	Category  string          `db:"category" json:"category,omitempty"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Well-known setting ids.
const (
	FoodFiltersID       = "food_filters"
	FoodFiltersCategory = "recommendation"
)

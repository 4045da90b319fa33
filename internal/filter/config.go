// Package filter holds the rules deciding which foods may be recommended.
//
// A Config is the editable, JSON-shaped form. A Snapshot is the validated,
// immutable form shared by all requests; Store swaps snapshots atomically.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// CalorieRange is a closed band in kcal per 100g.
type CalorieRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Config is the recognised configuration surface.
type Config struct {
	BlacklistKeywords  []string     `json:"blacklistKeywords"`
	CalorieRange       CalorieRange `json:"calorieRange"`
	MaxNameLength      int          `json:"maxNameLength"`
	MinGapsAddressed   int          `json:"minGapsAddressed"`
	AllowedCategories  []string     `json:"allowedCategories"`
	MaxRecommendations int          `json:"maxRecommendations"`
}

// Default returns the built-in rule set.
func Default() Config {
	return Config{
		BlacklistKeywords: []string{
			"candy", "soda", "chips", "fried", "syrup", "frosting", "topping",
			"sauce", "gravy", "spread", "dressing", "dip", "marinade",
			"powder", "concentrate", "dried", "dehydrated",
			"butter", "lard", "shortening", "margarine",
			"drink", "beverage",
			"baby food", "infant", "formula",
			"imitation", "artificial", "supplement",
		},
		CalorieRange:     CalorieRange{Min: 80, Max: 330},
		MaxNameLength:    80,
		MinGapsAddressed: 2,
		AllowedCategories: []string{
			"Poultry Products",
			"Beef Products",
			"Pork Products",
			"Lamb, Veal, and Game Products",
			"Finfish and Shellfish Products",
			"Vegetables and Vegetable Products",
			"Fruits and Fruit Juices",
			"Cereal Grains and Pasta",
			"Dairy and Egg Products",
			"Legumes and Legume Products",
			"Nut and Seed Products",
			"Meals, Entrees, and Side Dishes",
		},
		MaxRecommendations: 10,
	}
}

var ErrInvalidConfig = errors.New("invalid filter config")

// Validate reports every violated constraint in one error.
func (c Config) Validate() error {
	var problems []string
	if c.CalorieRange.Min < 0 || c.CalorieRange.Max < c.CalorieRange.Min {
		problems = append(problems, fmt.Sprintf("calorie range [%g,%g] is not a valid band", c.CalorieRange.Min, c.CalorieRange.Max))
	}
	if c.MaxNameLength <= 0 {
		problems = append(problems, "maxNameLength must be positive")
	}
	if c.MinGapsAddressed < 1 {
		problems = append(problems, "minGapsAddressed must be at least 1")
	}
	if c.MaxRecommendations <= 0 {
		problems = append(problems, "maxRecommendations must be positive")
	}
	if len(c.AllowedCategories) == 0 {
		problems = append(problems, "allowedCategories must not be empty")
	}
	for _, kw := range c.BlacklistKeywords {
		if strings.TrimSpace(kw) == "" {
			problems = append(problems, "blacklistKeywords must not contain blank entries")
			break
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.BlacklistKeywords = append([]string(nil), c.BlacklistKeywords...)
	out.AllowedCategories = append([]string(nil), c.AllowedCategories...)
	return out
}

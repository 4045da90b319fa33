package profile

import (
	"math"
	"time"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/profile/entity"
)

const (
	proteinPerKG   = 2.0
	fatPerKG       = 0.9
	kcalPerGProt   = 4
	kcalPerGFat    = 9
	kcalPerGCarb   = 4
	goalAdjustment = 500
)

var activityMultipliers = map[entity.ActivityLevel]float64{
	entity.Light:    1.375,
	entity.Moderate: 1.55,
	entity.Heavy:    1.725,
}

// defaultActivityMultiplier applies to any unknown activity level.
const defaultActivityMultiplier = 1.55

// CalculateTargets derives BMR (Mifflin-St Jeor), TDEE and the daily macro
// split for p as of now. It performs no I/O.
func CalculateTargets(p *entity.Profile, now time.Time) (*entity.Targets, error) {
	if p.BirthDate == nil || p.Gender == nil || p.HeightCM == nil || p.WeightKG == nil {
		return nil, apperr.ErrIncompleteProfile
	}
	if p.ActivityLevel == nil || p.Goal == nil {
		return nil, apperr.ErrMissingPreferences
	}

	age := AgeOn(*p.BirthDate, now)
	weight, height := *p.WeightKG, *p.HeightCM

	bmr := 10*weight + 6.25*height - 5*float64(age)
	if *p.Gender == entity.Male {
		bmr += 5
	} else {
		bmr -= 161
	}

	mult, ok := activityMultipliers[*p.ActivityLevel]
	if !ok {
		mult = defaultActivityMultiplier
	}
	tdee := bmr * mult

	var calories int
	switch *p.Goal {
	case entity.Loss:
		calories = roundHalfUp(tdee - goalAdjustment)
	case entity.Gain:
		calories = roundHalfUp(tdee + goalAdjustment)
	default:
		calories = roundHalfUp(tdee)
	}

	protein := roundHalfUp(weight * proteinPerKG)
	fat := roundHalfUp(weight * fatPerKG)
	// carbs absorb the remainder and never go negative
	carbs := roundHalfUp(float64(calories-protein*kcalPerGProt-fat*kcalPerGFat) / kcalPerGCarb)
	if carbs < 0 {
		carbs = 0
	}

	return &entity.Targets{
		BMR:            roundHalfUp(bmr),
		TDEE:           roundHalfUp(tdee),
		TargetCalories: calories,
		TargetProteinG: protein,
		TargetCarbsG:   carbs,
		TargetFatG:     fat,
	}, nil
}

// AgeOn returns completed years between birth and now, taking into account
// whether the birthday has already occurred this year.
func AgeOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

package analysis

import (
	"math"
	"sort"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis/entity"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/filter"
)

// placeholderDeficit stands in for a macro without a deficit so the
// similarity is defined. It is never reported as a gap.
const placeholderDeficit = 0.1

// minContribution is the grams per 100g from which a food counts as
// addressing a macro.
const minContribution = 1.0

// MessageTargetsMet is returned instead of recommendations when all four
// macros are at or above target.
const MessageTargetsMet = "You've met all your macro targets for today!"

// DeficitVector holds the positive remainders of the four macros. A macro
// at or above target is zero. Only protein, fat and carbs shape the
// ranking; a calories-only deficit ranks against placeholders alone.
type DeficitVector struct {
	CaloriesKcal float64
	ProteinG     float64
	FatG         float64
	CarbsG       float64
}

// DeficitVectorFrom keeps only the macros with a positive deficit. It uses
// the unrounded deficits so a small shortfall is not lost.
func DeficitVectorFrom(gaps []MacroGap) DeficitVector {
	var d DeficitVector
	for _, g := range gaps {
		if g.Deficit <= 0 {
			continue
		}
		switch g.MacroName {
		case entity.Calories:
			d.CaloriesKcal = g.Deficit
		case entity.Protein:
			d.ProteinG = g.Deficit
		case entity.Fat:
			d.FatG = g.Deficit
		case entity.Carbs:
			d.CarbsG = g.Deficit
		}
	}
	return d
}

// Empty reports whether no macro is in deficit.
func (d DeficitVector) Empty() bool {
	return d.CaloriesKcal <= 0 && d.ProteinG <= 0 && d.FatG <= 0 && d.CarbsG <= 0
}

// Gaps returns the real deficits keyed by lower-case macro name, rounded to
// one decimal for display.
func (d DeficitVector) Gaps() map[string]float64 {
	out := make(map[string]float64, 4)
	for name, v := range map[string]float64{
		"calories": d.CaloriesKcal,
		"protein":  d.ProteinG,
		"fat":      d.FatG,
		"carbs":    d.CarbsG,
	} {
		if v > 0 {
			out[name] = round1(v)
		}
	}
	return out
}

// count is the number of real protein, fat and carbs gaps.
func (d DeficitVector) count() int {
	n := 0
	for _, v := range [3]float64{d.ProteinG, d.FatG, d.CarbsG} {
		if v > 0 {
			n++
		}
	}
	return n
}

// ranking returns the vector used by the similarity, with placeholders.
func (d DeficitVector) ranking() [3]float64 {
	v := [3]float64{d.ProteinG, d.FatG, d.CarbsG}
	for i := range v {
		if v[i] <= 0 {
			v[i] = placeholderDeficit
		}
	}
	return v
}

type Recommendation struct {
	FoodID          int64   `json:"food_id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	ProteinPer100g  float64 `json:"protein_per_100g"`
	FatPer100g      float64 `json:"fat_per_100g"`
	CarbsPer100g    float64 `json:"carbs_per_100g"`
	GapsAddressed   int     `json:"gaps_addressed"`
	Score           float64 `json:"score"`
}

type Recommendations struct {
	Message         string             `json:"message,omitempty"`
	Gaps            map[string]float64 `json:"gaps,omitempty"`
	Recommendations []Recommendation   `json:"recommendations"`
}

// RankCandidates scores every candidate that passes snap and returns at most
// snap.MaxRecommendations of them, best first.
//
// The score (0..100) is the cosine similarity between the food's protein/fat/
// carbs profile and the deficit vector. Foods covering fewer real gaps than
// required are scaled down proportionally; the requirement is
// min(minGapsAddressed, number of real gaps). Ties go to the lower calorie
// density, then to the lower food id.
func RankCandidates(d DeficitVector, candidates []entity.Candidate, snap *filter.Snapshot) []Recommendation {
	target := d.ranking()
	targetNorm := norm(target)
	required := snap.MinGapsAddressed()
	if n := d.count(); n < required {
		required = n
	}

	out := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if !snap.Allows(c.Name, c.Category, c.CaloriesPer100g) {
			continue
		}
		food := [3]float64{c.ProteinPer100g, c.FatPer100g, c.CarbsPer100g}
		foodNorm := norm(food)
		if foodNorm == 0 {
			continue
		}
		addressed := addressedGaps(d, food)
		sim := dot(food, target) / (foodNorm * targetNorm)
		coverage := 1.0
		if required > 0 && addressed < required {
			coverage = float64(addressed) / float64(required)
		}
		score := round1(100 * sim * coverage)
		if score <= 0 {
			continue
		}
		out = append(out, Recommendation{
			FoodID:          c.FoodID,
			Name:            c.Name,
			Category:        c.Category,
			CaloriesPer100g: c.CaloriesPer100g,
			ProteinPer100g:  c.ProteinPer100g,
			FatPer100g:      c.FatPer100g,
			CarbsPer100g:    c.CarbsPer100g,
			GapsAddressed:   addressed,
			Score:           score,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.CaloriesPer100g != b.CaloriesPer100g {
			return a.CaloriesPer100g < b.CaloriesPer100g
		}
		return a.FoodID < b.FoodID
	})
	if limit := snap.MaxRecommendations(); len(out) > limit {
		out = out[:limit]
	}
	return out
}

// addressedGaps counts the real gaps the food contributes to.
func addressedGaps(d DeficitVector, food [3]float64) int {
	n := 0
	for i, deficit := range [3]float64{d.ProteinG, d.FatG, d.CarbsG} {
		if deficit > 0 && food[i] >= minContribution {
			n++
		}
	}
	return n
}

func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func norm(a [3]float64) float64 { return math.Sqrt(dot(a, a)) }

// Package analysis turns a user's log and targets into gap analysis, food
// recommendations, logging streaks and weekly trends.
package analysis

import (
	"encoding/json"
	"math"
	"time"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis/entity"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

// MacroGap compares one macro's consumption with its target. A positive
// deficit means under target, a negative one surplus. Deficit is exact and
// only rounded when encoded. Percent is nil when the target is zero.
type MacroGap struct {
	MacroName entity.Macro `json:"macro_name"`
	Target    float64      `json:"target"`
	Consumed  float64      `json:"consumed"`
	Deficit   float64      `json:"deficit"`
	Percent   *int         `json:"percent"`
}

// MarshalJSON rounds consumed and deficit to one decimal.
func (g MacroGap) MarshalJSON() ([]byte, error) {
	type wire MacroGap
	w := wire(g)
	w.Consumed = round1(g.Consumed)
	w.Deficit = round1(g.Deficit)
	return json.Marshal(w)
}

type GapAnalysis struct {
	Date   string     `json:"date"`
	Macros []MacroGap `json:"macros"`
}

// AnalyzeGaps computes the per-macro gaps of one day. It fails with
// ErrTargetsNotSet when any target is missing.
func AnalyzeGaps(day time.Time, totals []entity.MacroTotal) (*GapAnalysis, error) {
	byMacro := make(map[entity.Macro]entity.MacroTotal, len(totals))
	for _, t := range totals {
		byMacro[t.Macro] = t
	}
	out := &GapAnalysis{
		Date:   utilities.CivilDate(day).Format(utilities.DateLayout),
		Macros: make([]MacroGap, 0, len(entity.Macros)),
	}
	for _, m := range entity.Macros {
		t, ok := byMacro[m]
		if !ok || t.Target == nil {
			return nil, apperr.ErrTargetsNotSet
		}
		g := MacroGap{
			MacroName: m,
			Target:    *t.Target,
			Consumed:  t.Consumed,
			Deficit:   *t.Target - t.Consumed,
		}
		if g.Target > 0 {
			p := int(math.Floor(100*t.Consumed/g.Target + 0.5))
			g.Percent = &p
		}
		out.Macros = append(out.Macros, g)
	}
	return out, nil
}

// round1 rounds half away from zero to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

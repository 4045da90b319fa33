package analysis

import "github.com/ovaphlow/pitchfork/service-nutrition-go/internal/analysis/entity"

const MessageNotEnoughData = "Not enough data yet. Keep logging to see trends!"

type Trend struct {
	MacroName   entity.Macro `json:"macro_name"`
	ThisWeekAvg float64      `json:"this_week_avg"`
	LastWeekAvg float64      `json:"last_week_avg"`
	Change      float64      `json:"change"`
}

type Trends struct {
	Message string  `json:"message,omitempty"`
	Trends  []Trend `json:"trends"`
}

// ComputeTrends compares this week's average daily intake with last week's.
// Both windows must have data, otherwise the result carries only a message.
func ComputeTrends(rows []entity.WeeklyAverage) Trends {
	var thisWeek, lastWeek bool
	for _, r := range rows {
		thisWeek = thisWeek || r.ThisWeekAvg != nil
		lastWeek = lastWeek || r.LastWeekAvg != nil
	}
	if !thisWeek || !lastWeek {
		return Trends{Message: MessageNotEnoughData, Trends: []Trend{}}
	}

	byMacro := make(map[entity.Macro]entity.WeeklyAverage, len(rows))
	for _, r := range rows {
		byMacro[r.Macro] = r
	}
	out := make([]Trend, 0, len(entity.Macros))
	for _, m := range entity.Macros {
		r, ok := byMacro[m]
		if !ok {
			continue
		}
		t := Trend{
			MacroName:   m,
			ThisWeekAvg: round1(deref(r.ThisWeekAvg)),
			LastWeekAvg: round1(deref(r.LastWeekAvg)),
		}
		t.Change = round1(t.ThisWeekAvg - t.LastWeekAvg)
		out = append(out, t)
	}
	return Trends{Trends: out}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

package analysis

import (
	"sort"
	"time"

	"github.com/ovaphlow/pitchfork/service-nutrition-go/pkg/utilities"
)

type StreakStatus string

const (
	StreakActive StreakStatus = "active"
	StreakBroken StreakStatus = "broken"
	StreakNoLogs StreakStatus = "no_logs"
)

// Streak is derived from the logging dates on every request and never stored.
type Streak struct {
	CurrentStreak  int          `json:"current_streak"`
	LongestStreak  int          `json:"longest_streak"`
	LastLoggedDate *string      `json:"last_logged_date"`
	Status         StreakStatus `json:"status"`
}

// ComputeStreak derives the streak from the days on which the user logged
// anything. dates may be in any order and contain duplicates.
//
// The current streak always ends at the most recent logged day; whether
// that day is recent enough is reported by Status.
func ComputeStreak(dates []time.Time, today time.Time) Streak {
	days := distinctDays(dates)
	if len(days) == 0 {
		return Streak{Status: StreakNoLogs}
	}

	// Islands of consecutive days, oldest first.
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := days[len(days)-1]
	lastStr := last.Format(utilities.DateLayout)
	status := StreakBroken
	if t := utilities.CivilDate(today); !last.Before(t.AddDate(0, 0, -1)) {
		status = StreakActive
	}
	return Streak{
		CurrentStreak:  run,
		LongestStreak:  longest,
		LastLoggedDate: &lastStr,
		Status:         status,
	}
}

// distinctDays normalises to calendar days, removes duplicates and sorts
// ascending.
func distinctDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		c := utilities.CivilDate(d)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

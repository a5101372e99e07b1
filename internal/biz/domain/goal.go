package domain

import (
	"sort"
	"strings"
	"time"
)

// Difficulty of a goal, drives the points multiplier
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Goal units with a defined progress delta. Any other unit counts one per activity.
const (
	UnitMinutes  = "minutes"
	UnitHours    = "hours"
	UnitActivity = "activity"
)

// Goal is a user-defined recurring target tied to a category
type Goal struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Category         Category   `json:"category"`
	Target           float64    `json:"target"`
	Unit             string     `json:"unit"`
	Period           string     `json:"period"`
	Difficulty       Difficulty `json:"difficulty"`
	Progress         float64    `json:"progress"` // Today's completion percentage, derived
	Streak           int        `json:"streak"`
	BestStreak       int        `json:"bestStreak"`
	CompletedDays    []string   `json:"completedDays"` // Date keys, authoritative for Streak
	IsActive         bool       `json:"isActive"`
	TotalCompletions int        `json:"totalCompletions"`
	CreatedAt        int64      `json:"createdAt"`
}

// Delta returns how much an activity advances this goal, in the goal's unit
func (g *Goal) Delta(a Activity) float64 {
	switch strings.ToLower(g.Unit) {
	case UnitHours, "hour", "hrs":
		return float64(a.Duration) / 60
	case UnitMinutes, "minute", "min", "mins":
		return float64(a.Duration)
	default:
		return 1
	}
}

// PercentOf converts accumulated progress to a 0-100 percentage.
// A non-positive target is satisfied by any progress at all.
func (g *Goal) PercentOf(accumulated float64) float64 {
	if g.Target <= 0 {
		return 100
	}
	pct := accumulated / g.Target * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// CompletedOn reports whether day is in CompletedDays
func (g *Goal) CompletedOn(day string) bool {
	for _, d := range g.CompletedDays {
		if d == day {
			return true
		}
	}
	return false
}

// MarkCompleted appends day to CompletedDays, keeping it a set
func (g *Goal) MarkCompleted(day string) bool {
	if g.CompletedOn(day) {
		return false
	}
	g.CompletedDays = append(g.CompletedDays, day)
	sort.Strings(g.CompletedDays)
	return true
}

// StreakAt walks consecutive days backward from today (or yesterday when today
// is not completed yet) through CompletedDays.
func (g *Goal) StreakAt(today time.Time) int {
	cursor := StartOfDay(today)
	if !g.CompletedOn(DateKey(cursor)) {
		cursor = cursor.AddDate(0, 0, -1)
	}
	streak := 0
	for g.CompletedOn(DateKey(cursor)) {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// Reconcile zeroes Streak once the run is broken (neither today nor yesterday
// completed). An unbroken run keeps its counter, which can outgrow the pruned
// CompletedDays window. BestStreak never decreases.
func (g *Goal) Reconcile(today time.Time) {
	if g.CompletedOn(DateKey(today)) || g.CompletedOn(PreviousDateKey(today)) {
		if walked := g.StreakAt(today); walked > g.Streak {
			g.Streak = walked
		}
	} else {
		g.Streak = 0
	}
	if g.Streak > g.BestStreak {
		g.BestStreak = g.Streak
	}
}

// ExtendStreak updates Streak for a completion on today: it continues the run
// when yesterday was completed and restarts at 1 otherwise
func (g *Goal) ExtendStreak(today time.Time) {
	yesterday := StartOfDay(today).AddDate(0, 0, -1)
	if g.CompletedOn(DateKey(yesterday)) {
		run := g.Streak
		if walked := g.StreakAt(yesterday); walked > run {
			run = walked
		}
		g.Streak = run + 1
	} else {
		g.Streak = 1
	}
	if g.Streak > g.BestStreak {
		g.BestStreak = g.Streak
	}
}

// PruneCompletedDays drops date keys older than window days before today
func (g *Goal) PruneCompletedDays(today time.Time, window int) {
	if window <= 0 {
		return
	}
	cutoff := DateKey(StartOfDay(today).AddDate(0, 0, -window))
	kept := g.CompletedDays[:0]
	for _, d := range g.CompletedDays {
		// Date keys sort lexically
		if d >= cutoff {
			kept = append(kept, d)
		}
	}
	g.CompletedDays = kept
}

// Clone returns a deep copy safe to hand to subscribers
func (g *Goal) Clone() Goal {
	c := *g
	c.CompletedDays = append([]string{}, g.CompletedDays...)
	return c
}

// CompletionEvent is emitted when a goal's progress first reaches its target on a day
type CompletionEvent struct {
	Goal       Goal     `json:"goal"`
	Day        string   `json:"day"`
	Streak     int      `json:"streak"`
	Points     int      `json:"points"`
	Milestones []string `json:"milestones,omitempty"`
}

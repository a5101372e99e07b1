package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

// CategoryStat aggregates activities of one category
type CategoryStat struct {
	Category domain.Category `json:"category"`
	Count    int             `json:"count"`
	Minutes  int             `json:"minutes"`
	Share    float64         `json:"share"` // Fraction of total minutes, 0-1
}

// Summary is the derived statistics view of a window of activities
type Summary struct {
	Since        time.Time      `json:"since"`
	Activities   int            `json:"activities"`
	TotalMinutes int            `json:"totalMinutes"`
	ActiveDays   int            `json:"activeDays"`
	TopCategory  string         `json:"topCategory,omitempty"`
	Breakdown    []CategoryStat `json:"breakdown"`
	Level        domain.Level   `json:"level"`
	NextLevel    *domain.Level  `json:"nextLevel,omitempty"`
	Points       int            `json:"points"`
	StreakDays   int            `json:"streakDays"`
	LogsToday    int            `json:"logsToday"`
}

// CategoryBreakdown groups activities at or after since, sorted by minutes descending
func CategoryBreakdown(activities []domain.Activity, since time.Time) []CategoryStat {
	byCat := make(map[domain.Category]*CategoryStat)
	total := 0
	sinceMs := since.UnixMilli()

	for _, a := range activities {
		if a.Timestamp < sinceMs {
			continue
		}
		stat, ok := byCat[a.Category]
		if !ok {
			stat = &CategoryStat{Category: a.Category}
			byCat[a.Category] = stat
		}
		stat.Count++
		stat.Minutes += a.Duration
		total += a.Duration
	}

	result := make([]CategoryStat, 0, len(byCat))
	for _, c := range domain.AllCategories {
		stat, ok := byCat[c]
		if !ok {
			continue
		}
		if total > 0 {
			stat.Share = float64(stat.Minutes) / float64(total)
		}
		result = append(result, *stat)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Minutes > result[j].Minutes
	})
	return result
}

// Summarize builds the statistics view over activities since the given instant
func Summarize(activities []domain.Activity, engagement domain.EngagementState, since time.Time) Summary {
	breakdown := CategoryBreakdown(activities, since)

	days := make(map[string]bool)
	count, minutes := 0, 0
	sinceMs := since.UnixMilli()
	for _, a := range activities {
		if a.Timestamp < sinceMs {
			continue
		}
		count++
		minutes += a.Duration
		days[domain.DateKey(a.Time())] = true
	}

	level, next := domain.LevelFor(engagement.TotalPoints)
	s := Summary{
		Since:        since,
		Activities:   count,
		TotalMinutes: minutes,
		ActiveDays:   len(days),
		Breakdown:    breakdown,
		Level:        level,
		NextLevel:    next,
		Points:       engagement.TotalPoints,
		StreakDays:   engagement.StreakDays,
		LogsToday:    engagement.LogsToday,
	}
	if len(breakdown) > 0 {
		s.TopCategory = string(breakdown[0].Category)
	}
	return s
}

// Bar is one row of a text bar chart
type Bar struct {
	Label string
	Value int
	Fill  string
}

// Bars scales breakdown minutes to at most width block characters.
// Any non-zero category gets at least one block.
func Bars(breakdown []CategoryStat, width int) []Bar {
	if width <= 0 {
		width = 20
	}
	top := 0
	for _, s := range breakdown {
		if s.Minutes > top {
			top = s.Minutes
		}
	}

	bars := make([]Bar, 0, len(breakdown))
	for _, s := range breakdown {
		n := 0
		if top > 0 {
			n = s.Minutes * width / top
			if n == 0 && s.Minutes > 0 {
				n = 1
			}
		}
		bars = append(bars, Bar{Label: string(s.Category), Value: s.Minutes, Fill: strings.Repeat("█", n)})
	}
	return bars
}

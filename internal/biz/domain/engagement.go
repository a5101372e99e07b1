package domain

// EngagementState holds the process-wide engagement counters
type EngagementState struct {
	LogsToday          int        `json:"logsToday"`
	TotalActivities    int        `json:"totalActivities"`
	StreakDays         int        `json:"streakDays"`
	LastLogTimestamp   int64      `json:"lastLogTimestamp"`
	FavoriteCategories []Category `json:"favoriteCategories"`
	LastResetDate      string     `json:"lastResetDate"`
	TotalPoints        int        `json:"totalPoints"`
}

// AddFavorite merges c into FavoriteCategories
func (s *EngagementState) AddFavorite(c Category) {
	for _, existing := range s.FavoriteCategories {
		if existing == c {
			return
		}
	}
	s.FavoriteCategories = append(s.FavoriteCategories, c)
}

// Level is a named tier unlocked by lifetime points
type Level struct {
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
}

// Levels in ascending order of MinPoints
var Levels = []Level{
	{Name: "Beginner", MinPoints: 0},
	{Name: "Explorer", MinPoints: 100},
	{Name: "Tracker", MinPoints: 250},
	{Name: "Optimizer", MinPoints: 500},
	{Name: "Master", MinPoints: 1000},
	{Name: "Legend", MinPoints: 2000},
	{Name: "Life Guru", MinPoints: 5000},
}

// LevelFor returns the current level and the next one (nil at the top tier)
func LevelFor(points int) (Level, *Level) {
	current := Levels[0]
	var next *Level
	for i, l := range Levels {
		if points >= l.MinPoints {
			current = l
			next = nil
			if i+1 < len(Levels) {
				n := Levels[i+1]
				next = &n
			}
		}
	}
	return current, next
}

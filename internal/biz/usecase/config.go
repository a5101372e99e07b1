package usecase

import (
	"time"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

// CategoryKeywords maps one category to its keyword list. Order matters:
// the first keyword found in a message becomes the activity type.
type CategoryKeywords struct {
	Category domain.Category
	Keywords []string
}

// ExtractionConfig holds the tunables of the extraction pipeline
type ExtractionConfig struct {
	Categories       []CategoryKeywords
	DefaultDurations map[domain.Category]int
	LowIntensity     []string
	HighIntensity    []string
	MoodWords        []MoodWords // Checked in order, first hit wins
}

// MoodWords maps a mood to the sentiment words that signal it
type MoodWords struct {
	Mood  domain.Mood
	Words []string
}

// ScoringConfig holds the goal points and retention tunables
type ScoringConfig struct {
	BasePoints           int
	DifficultyMultiplier map[domain.Difficulty]float64
	StreakBonusPerDay    int
	StreakMilestones     map[int]int // streak length -> bonus
	CompletionMilestones map[int]int // lifetime completions -> bonus
	CompletedDaysWindow  int         // Days of completedDays history kept per goal
}

// ComposerConfig holds the response composer tunables
type ComposerConfig struct {
	Temperature   float32
	MaxTokens     int
	Timeout       time.Duration
	MaxReplyChars int
}

// DefaultExtractionConfig returns the built-in keyword tables
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Categories: []CategoryKeywords{
			{Category: domain.CategoryFitness, Keywords: []string{
				"workout", "worked out", "work out", "exercise", "gym", "run", "jog", "walk",
				"yoga", "pilates", "swim", "bike", "cycling", "hike", "dance", "lift", "sports",
			}},
			{Category: domain.CategoryWellness, Keywords: []string{
				"meditat", "mindful", "breathe", "relax", "spa", "massage", "sleep", "nap",
				"therapy", "stretch",
			}},
			{Category: domain.CategoryLearning, Keywords: []string{
				"read", "study", "learn", "course", "book", "research", "practice", "lesson",
				"tutorial", "class",
			}},
			{Category: domain.CategoryProductivity, Keywords: []string{
				"project", "task", "meeting", "email", "plan", "organize", "code", "coding",
				"develop", "office", "working",
			}},
			{Category: domain.CategorySocial, Keywords: []string{
				"friends", "family", "dinner", "party", "date", "call", "visit", "hangout",
				"volunteer",
			}},
			{Category: domain.CategoryCreative, Keywords: []string{
				"draw", "paint", "sketch", "music", "guitar", "piano", "singing", "write",
				"writing", "design", "craft", "photo",
			}},
		},
		DefaultDurations: map[domain.Category]int{
			domain.CategoryFitness:      30,
			domain.CategoryWellness:     15,
			domain.CategoryLearning:     30,
			domain.CategoryProductivity: 60,
			domain.CategorySocial:       45,
			domain.CategoryCreative:     30,
			domain.CategoryOther:        30,
		},
		LowIntensity:  []string{"easy", "gentle", "light"},
		HighIntensity: []string{"intense", "hard", "tough"},
		MoodWords: []MoodWords{
			{Mood: domain.MoodGreat, Words: []string{"great", "amazing", "awesome", "fantastic", "love", "excited"}},
			{Mood: domain.MoodGood, Words: []string{"good", "nice", "solid", "decent", "happy"}},
			{Mood: domain.MoodTired, Words: []string{"tired", "exhausted", "drained", "weary"}},
			{Mood: domain.MoodStressed, Words: []string{"stressed", "overwhelmed", "anxious", "worried", "difficult"}},
		},
	}
}

// DefaultScoringConfig returns the built-in points table
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BasePoints: 25,
		DifficultyMultiplier: map[domain.Difficulty]float64{
			domain.DifficultyEasy:   1,
			domain.DifficultyMedium: 1.5,
			domain.DifficultyHard:   2,
		},
		StreakBonusPerDay:    5,
		StreakMilestones:     map[int]int{7: 50, 30: 200},
		CompletionMilestones: map[int]int{10: 100},
		CompletedDaysWindow:  30,
	}
}

// DefaultComposerConfig returns the built-in generation settings
func DefaultComposerConfig() ComposerConfig {
	return ComposerConfig{
		Temperature:   0.8,
		MaxTokens:     200,
		Timeout:       15 * time.Second,
		MaxReplyChars: 300,
	}
}

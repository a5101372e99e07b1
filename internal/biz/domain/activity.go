package domain

import "time"

// Category is a fixed life-domain tag
type Category string

const (
	CategoryFitness      Category = "fitness"
	CategoryWellness     Category = "wellness"
	CategoryLearning     Category = "learning"
	CategoryProductivity Category = "productivity"
	CategorySocial       Category = "social"
	CategoryCreative     Category = "creative"
	CategoryOther        Category = "other"
)

// AllCategories lists every category in display order
var AllCategories = []Category{
	CategoryFitness,
	CategoryWellness,
	CategoryLearning,
	CategoryProductivity,
	CategorySocial,
	CategoryCreative,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Intensity of an activity
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// Mood inferred from sentiment words. The zero value means neutral.
type Mood string

const (
	MoodNeutral  Mood = ""
	MoodGreat    Mood = "great"
	MoodGood     Mood = "good"
	MoodTired    Mood = "tired"
	MoodStressed Mood = "stressed"
)

// Activity is a single logged occurrence extracted from one message.
// Activities are immutable once created.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // Matched keyword
	Category  Category  `json:"category"`
	Duration  int       `json:"duration"` // Minutes
	Intensity Intensity `json:"intensity"`
	Mood      Mood      `json:"mood,omitempty"`
	Timestamp int64     `json:"timestamp"` // Milliseconds since epoch
	RawText   string    `json:"rawText"`
}

// Time returns the creation instant
func (a Activity) Time() time.Time {
	return time.UnixMilli(a.Timestamp)
}

// CategoriesOf returns the distinct categories of a batch in first-seen order
func CategoriesOf(activities []Activity) []Category {
	seen := make(map[Category]bool, len(activities))
	var result []Category
	for _, a := range activities {
		if seen[a.Category] {
			continue
		}
		seen[a.Category] = true
		result = append(result, a.Category)
	}
	return result
}

// TotalMinutes sums the durations of a batch
func TotalMinutes(activities []Activity) int {
	total := 0
	for _, a := range activities {
		total += a.Duration
	}
	return total
}

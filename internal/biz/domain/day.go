package domain

import "time"

// DateKeyLayout is the day-granularity key format used for rollover and goal completion
const DateKeyLayout = "2006-01-02"

// DateKey returns the calendar day of t in t's location
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// PreviousDateKey returns the key of the day before t
func PreviousDateKey(t time.Time) string {
	return DateKey(t.AddDate(0, 0, -1))
}

// ParseDateKey parses a date key in loc
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateKeyLayout, key, loc)
}

// StartOfDay returns midnight of t's day
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package usecase

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

var sentenceSplitter = regexp.MustCompile(`[.!?]+(?:\s+|$)|\n+`)

// ExtractionPipeline turns one message into Activity records
type ExtractionPipeline struct {
	classifier *Classifier
	durations  *DurationExtractor
	config     ExtractionConfig
	lowRe      *regexp.Regexp
	highRe     *regexp.Regexp
	moodRes    []moodMatcher
	newID      func() string
}

type moodMatcher struct {
	mood domain.Mood
	re   *regexp.Regexp
}

// NewExtractionPipeline creates the pipeline from config
func NewExtractionPipeline(config ExtractionConfig) *ExtractionPipeline {
	classifier := NewClassifier(config.Categories)

	p := &ExtractionPipeline{
		classifier: classifier,
		durations:  NewDurationExtractor(classifier.Keywords()),
		config:     config,
		lowRe:      wordsPattern(config.LowIntensity),
		highRe:     wordsPattern(config.HighIntensity),
		newID:      uuid.NewString,
	}
	for _, mw := range config.MoodWords {
		if re := wordsPattern(mw.Words); re != nil {
			p.moodRes = append(p.moodRes, moodMatcher{mood: mw.Mood, re: re})
		}
	}
	return p
}

// WithIDGenerator overrides activity id generation
func (p *ExtractionPipeline) WithIDGenerator(gen func() string) *ExtractionPipeline {
	p.newID = gen
	return p
}

// Classifier exposes the underlying classifier
func (p *ExtractionPipeline) Classifier() *Classifier {
	return p.classifier
}

// Extract returns one Activity per matched category, in table order.
// Messages without any known keyword yield an empty list.
func (p *ExtractionPipeline) Extract(message string, at time.Time) []domain.Activity {
	matches := p.classifier.Classify(message)
	if len(matches) == 0 {
		return []domain.Activity{}
	}

	intensity := p.intensity(message)
	mood := p.Mood(message)

	activities := make([]domain.Activity, 0, len(matches))
	for _, m := range matches {
		duration, ok := p.durations.Extract(message, m.Keyword)
		if !ok {
			duration = p.defaultDuration(m.Category)
		}
		activities = append(activities, domain.Activity{
			ID:        p.newID(),
			Type:      m.Keyword,
			Category:  m.Category,
			Duration:  duration,
			Intensity: intensity,
			Mood:      mood,
			Timestamp: at.UnixMilli(),
			RawText:   sentenceContaining(message, m.Keyword),
		})
	}
	return activities
}

// Mood infers the message mood; MoodNeutral when no sentiment word is present
func (p *ExtractionPipeline) Mood(message string) domain.Mood {
	for _, m := range p.moodRes {
		if m.re.MatchString(message) {
			return m.mood
		}
	}
	return domain.MoodNeutral
}

func (p *ExtractionPipeline) intensity(message string) domain.Intensity {
	if p.lowRe != nil && p.lowRe.MatchString(message) {
		return domain.IntensityLow
	}
	if p.highRe != nil && p.highRe.MatchString(message) {
		return domain.IntensityHigh
	}
	return domain.IntensityMedium
}

func (p *ExtractionPipeline) defaultDuration(c domain.Category) int {
	if d, ok := p.config.DefaultDurations[c]; ok {
		return d
	}
	if d, ok := p.config.DefaultDurations[domain.CategoryOther]; ok {
		return d
	}
	return 30
}

// wordsPattern builds a case-insensitive whole-word alternation, nil for no words
func wordsPattern(words []string) *regexp.Regexp {
	var quoted []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// sentenceContaining returns the trimmed sentence holding keyword, or the whole message
func sentenceContaining(message, keyword string) string {
	for _, s := range sentenceSplitter.Split(message, -1) {
		if strings.Contains(strings.ToLower(s), keyword) {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(message)
}

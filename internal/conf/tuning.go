package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/logging"
)

// TuningConfig contains every tunable loaded from YAML
type TuningConfig struct {
	UserName    string            `yaml:"user_name"`
	Extraction  ExtractionTuning  `yaml:"extraction"`
	Scoring     ScoringTuning     `yaml:"scoring"`
	Composer    ComposerTuning    `yaml:"composer"`
	Persistence PersistenceTuning `yaml:"persistence"`
	Retention   RetentionTuning   `yaml:"retention"`
}

// ExtractionTuning contains keyword tables and heuristics
type ExtractionTuning struct {
	Categories       []CategoryTuning `yaml:"categories"`
	DefaultDurations map[string]int   `yaml:"default_durations"`
	LowIntensity     []string         `yaml:"low_intensity"`
	HighIntensity    []string         `yaml:"high_intensity"`
	Moods            []MoodTuning     `yaml:"moods"`
}

// CategoryTuning is one ordered keyword list
type CategoryTuning struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// MoodTuning maps a mood to its signal words
type MoodTuning struct {
	Mood  string   `yaml:"mood"`
	Words []string `yaml:"words"`
}

// ScoringTuning contains the points table
type ScoringTuning struct {
	BasePoints           int                `yaml:"base_points"`
	DifficultyMultiplier map[string]float64 `yaml:"difficulty_multiplier"`
	StreakBonusPerDay    int                `yaml:"streak_bonus_per_day"`
	StreakMilestones     map[int]int        `yaml:"streak_milestones"`
	CompletionMilestones map[int]int        `yaml:"completion_milestones"`
	CompletedDaysWindow  int                `yaml:"completed_days_window"`
}

// ComposerTuning contains reply generation settings
type ComposerTuning struct {
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxReplyChars  int     `yaml:"max_reply_chars"`
}

// PersistenceTuning contains debounced save settings
type PersistenceTuning struct {
	DebounceMillis int `yaml:"debounce_ms"`
}

// RetentionTuning contains activity retention settings
type RetentionTuning struct {
	Days int `yaml:"days"`
}

// LoadTuningConfig loads tuning configuration from a YAML file
func LoadTuningConfig(configPath string) (*TuningConfig, error) {
	log := logging.For("Config")

	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/tuning.yaml",
			"/etc/lifestream/tuning.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "tuning.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		if b, err := os.ReadFile(p); err == nil {
			data, loadedPath = b, p
			break
		}
	}

	if data == nil {
		log.Debug("No tuning.yaml found, using defaults")
		return DefaultTuningConfig(), nil
	}

	log.Infof("Loading tuning from: %s", loadedPath)

	var config TuningConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse tuning.yaml: %w", err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *TuningConfig) fillDefaults() {
	defaults := DefaultTuningConfig()

	if c.UserName == "" {
		c.UserName = defaults.UserName
	}

	if len(c.Extraction.Categories) == 0 {
		c.Extraction.Categories = defaults.Extraction.Categories
	}
	if c.Extraction.DefaultDurations == nil {
		c.Extraction.DefaultDurations = map[string]int{}
	}
	for cat, d := range defaults.Extraction.DefaultDurations {
		if _, ok := c.Extraction.DefaultDurations[cat]; !ok {
			c.Extraction.DefaultDurations[cat] = d
		}
	}
	if len(c.Extraction.LowIntensity) == 0 {
		c.Extraction.LowIntensity = defaults.Extraction.LowIntensity
	}
	if len(c.Extraction.HighIntensity) == 0 {
		c.Extraction.HighIntensity = defaults.Extraction.HighIntensity
	}
	if len(c.Extraction.Moods) == 0 {
		c.Extraction.Moods = defaults.Extraction.Moods
	}

	if c.Scoring.BasePoints == 0 {
		c.Scoring.BasePoints = defaults.Scoring.BasePoints
	}
	if len(c.Scoring.DifficultyMultiplier) == 0 {
		c.Scoring.DifficultyMultiplier = defaults.Scoring.DifficultyMultiplier
	}
	if c.Scoring.StreakBonusPerDay == 0 {
		c.Scoring.StreakBonusPerDay = defaults.Scoring.StreakBonusPerDay
	}
	if c.Scoring.StreakMilestones == nil {
		c.Scoring.StreakMilestones = defaults.Scoring.StreakMilestones
	}
	if c.Scoring.CompletionMilestones == nil {
		c.Scoring.CompletionMilestones = defaults.Scoring.CompletionMilestones
	}
	if c.Scoring.CompletedDaysWindow == 0 {
		c.Scoring.CompletedDaysWindow = defaults.Scoring.CompletedDaysWindow
	}

	if c.Composer.Temperature == 0 {
		c.Composer.Temperature = defaults.Composer.Temperature
	}
	if c.Composer.MaxTokens == 0 {
		c.Composer.MaxTokens = defaults.Composer.MaxTokens
	}
	if c.Composer.TimeoutSeconds == 0 {
		c.Composer.TimeoutSeconds = defaults.Composer.TimeoutSeconds
	}
	if c.Composer.MaxReplyChars == 0 {
		c.Composer.MaxReplyChars = defaults.Composer.MaxReplyChars
	}

	if c.Persistence.DebounceMillis == 0 {
		c.Persistence.DebounceMillis = defaults.Persistence.DebounceMillis
	}
	if c.Retention.Days == 0 {
		c.Retention.Days = defaults.Retention.Days
	}
}

// DefaultTuningConfig returns the built-in tuning, mirroring the usecase defaults
func DefaultTuningConfig() *TuningConfig {
	ext := usecase.DefaultExtractionConfig()
	sc := usecase.DefaultScoringConfig()
	comp := usecase.DefaultComposerConfig()

	c := &TuningConfig{
		UserName: "Champion",
		Extraction: ExtractionTuning{
			DefaultDurations: map[string]int{},
			LowIntensity:     ext.LowIntensity,
			HighIntensity:    ext.HighIntensity,
		},
		Scoring: ScoringTuning{
			BasePoints:           sc.BasePoints,
			DifficultyMultiplier: map[string]float64{},
			StreakBonusPerDay:    sc.StreakBonusPerDay,
			StreakMilestones:     sc.StreakMilestones,
			CompletionMilestones: sc.CompletionMilestones,
			CompletedDaysWindow:  sc.CompletedDaysWindow,
		},
		Composer: ComposerTuning{
			Temperature:    comp.Temperature,
			MaxTokens:      comp.MaxTokens,
			TimeoutSeconds: int(comp.Timeout / time.Second),
			MaxReplyChars:  comp.MaxReplyChars,
		},
		Persistence: PersistenceTuning{DebounceMillis: 1000},
		Retention:   RetentionTuning{Days: 30},
	}
	for _, ck := range ext.Categories {
		c.Extraction.Categories = append(c.Extraction.Categories, CategoryTuning{Category: string(ck.Category), Keywords: ck.Keywords})
	}
	for cat, d := range ext.DefaultDurations {
		c.Extraction.DefaultDurations[string(cat)] = d
	}
	for _, mw := range ext.MoodWords {
		c.Extraction.Moods = append(c.Extraction.Moods, MoodTuning{Mood: string(mw.Mood), Words: mw.Words})
	}
	for d, m := range sc.DifficultyMultiplier {
		c.Scoring.DifficultyMultiplier[string(d)] = m
	}
	return c
}

// Validate checks category and mood names
func (c *TuningConfig) Validate() error {
	for _, ct := range c.Extraction.Categories {
		if !domain.Category(ct.Category).Valid() {
			return &ConfigError{Field: "extraction.categories", Message: fmt.Sprintf("unknown category %q", ct.Category)}
		}
	}
	for _, m := range c.Extraction.Moods {
		switch domain.Mood(m.Mood) {
		case domain.MoodGreat, domain.MoodGood, domain.MoodTired, domain.MoodStressed:
		default:
			return &ConfigError{Field: "extraction.moods", Message: fmt.Sprintf("unknown mood %q", m.Mood)}
		}
	}
	if c.Retention.Days < 1 {
		return &ConfigError{Field: "retention.days", Message: "must be at least 1"}
	}
	return nil
}

// ToExtractionConfig converts to the pipeline configuration
func (c *TuningConfig) ToExtractionConfig() usecase.ExtractionConfig {
	cfg := usecase.ExtractionConfig{
		DefaultDurations: make(map[domain.Category]int, len(c.Extraction.DefaultDurations)),
		LowIntensity:     c.Extraction.LowIntensity,
		HighIntensity:    c.Extraction.HighIntensity,
	}
	for _, ct := range c.Extraction.Categories {
		cfg.Categories = append(cfg.Categories, usecase.CategoryKeywords{Category: domain.Category(ct.Category), Keywords: ct.Keywords})
	}
	for cat, d := range c.Extraction.DefaultDurations {
		cfg.DefaultDurations[domain.Category(cat)] = d
	}
	for _, m := range c.Extraction.Moods {
		cfg.MoodWords = append(cfg.MoodWords, usecase.MoodWords{Mood: domain.Mood(m.Mood), Words: m.Words})
	}
	return cfg
}

// ToScoringConfig converts to the goal scoring configuration
func (c *TuningConfig) ToScoringConfig() usecase.ScoringConfig {
	cfg := usecase.ScoringConfig{
		BasePoints:           c.Scoring.BasePoints,
		DifficultyMultiplier: make(map[domain.Difficulty]float64, len(c.Scoring.DifficultyMultiplier)),
		StreakBonusPerDay:    c.Scoring.StreakBonusPerDay,
		StreakMilestones:     c.Scoring.StreakMilestones,
		CompletionMilestones: c.Scoring.CompletionMilestones,
		CompletedDaysWindow:  c.Scoring.CompletedDaysWindow,
	}
	for d, m := range c.Scoring.DifficultyMultiplier {
		cfg.DifficultyMultiplier[domain.Difficulty(d)] = m
	}
	return cfg
}

// ToComposerConfig converts to the response composer configuration
func (c *TuningConfig) ToComposerConfig() usecase.ComposerConfig {
	return usecase.ComposerConfig{
		Temperature:   c.Composer.Temperature,
		MaxTokens:     c.Composer.MaxTokens,
		Timeout:       time.Duration(c.Composer.TimeoutSeconds) * time.Second,
		MaxReplyChars: c.Composer.MaxReplyChars,
	}
}

// DebounceWindow returns the persistence quiet period
func (c *TuningConfig) DebounceWindow() time.Duration {
	return time.Duration(c.Persistence.DebounceMillis) * time.Millisecond
}

// RetentionWindow returns how long activities are kept
func (c *TuningConfig) RetentionWindow() time.Duration {
	return time.Duration(c.Retention.Days) * 24 * time.Hour
}

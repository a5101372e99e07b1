package usecase

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

var (
	// ErrGoalNotFound is returned when no goal has the requested id
	ErrGoalNotFound = errors.New("goal not found")
	// ErrInvalidGoal is returned when a goal definition is rejected
	ErrInvalidGoal = errors.New("invalid goal")
)

// GoalEngine maps activities onto active goals and tracks daily completion
type GoalEngine struct {
	goals    *[]*domain.Goal
	progress map[string]float64
	scoring  ScoringConfig
	newID    func() string
}

// NewGoalEngine creates an engine over the goal list and today's progress map.
// Both are mutated in place so the owning snapshot stays current.
func NewGoalEngine(goals *[]*domain.Goal, todaysProgress map[string]float64, scoring ScoringConfig) *GoalEngine {
	if goals == nil {
		goals = &[]*domain.Goal{}
	}
	if todaysProgress == nil {
		todaysProgress = map[string]float64{}
	}
	return &GoalEngine{
		goals:    goals,
		progress: todaysProgress,
		scoring:  scoring,
		newID:    uuid.NewString,
	}
}

// ApplyActivities accumulates today's progress and returns one CompletionEvent
// per goal whose progress first reached 100% today.
func (e *GoalEngine) ApplyActivities(activities []domain.Activity, now time.Time) []domain.CompletionEvent {
	today := domain.DateKey(now)
	var events []domain.CompletionEvent

	for _, a := range activities {
		for _, g := range *e.goals {
			if !g.IsActive || g.Category != a.Category {
				continue
			}

			before := 0.0
			if acc, seen := e.progress[g.ID]; seen {
				before = g.PercentOf(acc)
			}

			e.progress[g.ID] += g.Delta(a)
			g.Progress = g.PercentOf(e.progress[g.ID])

			if before >= 100 || g.Progress < 100 || g.CompletedOn(today) {
				continue
			}
			events = append(events, e.complete(g, now))
		}
	}
	return events
}

func (e *GoalEngine) complete(g *domain.Goal, now time.Time) domain.CompletionEvent {
	today := domain.DateKey(now)

	g.ExtendStreak(now)
	g.MarkCompleted(today)
	g.TotalCompletions++

	points, milestones := e.points(g)
	return domain.CompletionEvent{
		Goal:       g.Clone(),
		Day:        today,
		Streak:     g.Streak,
		Points:     points,
		Milestones: milestones,
	}
}

// points applies the base, streak and milestone bonuses for the triggering completion
func (e *GoalEngine) points(g *domain.Goal) (int, []string) {
	multiplier, ok := e.scoring.DifficultyMultiplier[g.Difficulty]
	if !ok {
		multiplier = 1
	}
	total := int(math.Round(float64(e.scoring.BasePoints) * multiplier))
	if g.Streak > 1 {
		total += g.Streak * e.scoring.StreakBonusPerDay
	}

	var milestones []string
	if bonus, ok := e.scoring.StreakMilestones[g.Streak]; ok {
		total += bonus
		milestones = append(milestones, fmt.Sprintf("%d-day streak", g.Streak))
	}
	if bonus, ok := e.scoring.CompletionMilestones[g.TotalCompletions]; ok {
		total += bonus
		milestones = append(milestones, fmt.Sprintf("%d completions", g.TotalCompletions))
	}
	return total, milestones
}

// ResetDay clears today's progress and reconciles every goal with its completed days
func (e *GoalEngine) ResetDay(today time.Time) {
	for id := range e.progress {
		delete(e.progress, id)
	}
	for _, g := range *e.goals {
		g.Progress = 0
		g.PruneCompletedDays(today, e.scoring.CompletedDaysWindow)
		g.Reconcile(today)
	}
}

// TodaysProgress returns the accumulated progress for a goal
func (e *GoalEngine) TodaysProgress(goalID string) float64 {
	return e.progress[goalID]
}

// Goals returns all goals, including inactive ones
func (e *GoalEngine) Goals() []*domain.Goal {
	return *e.goals
}

// ActiveGoals returns goals that have not been soft-deleted
func (e *GoalEngine) ActiveGoals() []*domain.Goal {
	var result []*domain.Goal
	for _, g := range *e.goals {
		if g.IsActive {
			result = append(result, g)
		}
	}
	return result
}

// GoalInput describes a goal to create
type GoalInput struct {
	Title      string
	Category   domain.Category
	Target     float64
	Unit       string
	Period     string
	Difficulty domain.Difficulty
}

// CreateGoal validates input and appends an active goal
func (e *GoalEngine) CreateGoal(in GoalInput, now time.Time) (*domain.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidGoal)
	}
	if !in.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidGoal, in.Category)
	}
	if in.Target < 0 {
		return nil, fmt.Errorf("%w: target must not be negative", ErrInvalidGoal)
	}

	difficulty := in.Difficulty
	switch difficulty {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	case "":
		difficulty = domain.DifficultyMedium
	default:
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidGoal, in.Difficulty)
	}

	unit := strings.ToLower(strings.TrimSpace(in.Unit))
	if unit == "" {
		unit = domain.UnitMinutes
	}
	period := in.Period
	if period == "" {
		period = "daily"
	}

	g := &domain.Goal{
		ID:            e.newID(),
		Title:         title,
		Category:      in.Category,
		Target:        in.Target,
		Unit:          unit,
		Period:        period,
		Difficulty:    difficulty,
		CompletedDays: []string{},
		IsActive:      true,
		CreatedAt:     now.UnixMilli(),
	}
	*e.goals = append(*e.goals, g)
	return g, nil
}

// RemoveGoal soft-deletes a goal
func (e *GoalEngine) RemoveGoal(id string) (*domain.Goal, error) {
	for _, g := range *e.goals {
		if g.ID == id && g.IsActive {
			g.IsActive = false
			delete(e.progress, id)
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, id)
}

// StarterGoals returns the goals suggested on first run
func StarterGoals() []GoalInput {
	return []GoalInput{
		{Title: "Stay Active Daily", Category: domain.CategoryFitness, Target: 1, Unit: domain.UnitActivity, Period: "daily", Difficulty: domain.DifficultyEasy},
		{Title: "Get Quality Sleep", Category: domain.CategoryWellness, Target: 7, Unit: domain.UnitHours, Period: "daily", Difficulty: domain.DifficultyMedium},
		{Title: "Learn Something New", Category: domain.CategoryLearning, Target: 30, Unit: domain.UnitMinutes, Period: "daily", Difficulty: domain.DifficultyEasy},
	}
}

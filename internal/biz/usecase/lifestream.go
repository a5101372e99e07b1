package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/repo"
	"github.com/lifestream-app/lifestream/internal/logging"
)

// StateKey is the blob key of the persisted user data
const StateKey = "lifestream/userData"


// Clock abstracts the current time for deterministic tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// MessageResult is the outcome of recording one message
type MessageResult struct {
	Message     string                   `json:"message"`
	Activities  []domain.Activity        `json:"activities"`
	Completions []domain.CompletionEvent `json:"completions"`
	Engagement  domain.EngagementState   `json:"engagement"`
	Mood        domain.Mood              `json:"mood,omitempty"`
	At          time.Time                `json:"at"`
	Reply       *Reply                   `json:"reply,omitempty"`
}

// LifeStreamUsecase owns the in-memory user state and composes the pipeline,
// the trackers, the composer and persistence. It is not safe for concurrent
// use; callers serialize access.
type LifeStreamUsecase struct {
	stateRepo  repo.StateRepo
	pipeline   *ExtractionPipeline
	composer   *ResponseComposer
	dispatcher *Dispatcher
	scoring    ScoringConfig
	clock      Clock
	userName   string

	snapshot *domain.Snapshot
	tracker  *EngagementTracker
	goals    *GoalEngine
}

// NewLifeStreamUsecase creates the usecase over an empty state; call Load to restore
func NewLifeStreamUsecase(
	stateRepo repo.StateRepo,
	pipeline *ExtractionPipeline,
	composer *ResponseComposer,
	dispatcher *Dispatcher,
	scoring ScoringConfig,
	clock Clock,
	userName string,
) *LifeStreamUsecase {
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	uc := &LifeStreamUsecase{
		stateRepo:  stateRepo,
		pipeline:   pipeline,
		composer:   composer,
		dispatcher: dispatcher,
		scoring:    scoring,
		clock:      clock,
		userName:   userName,
	}
	uc.attach(domain.NewSnapshot())
	return uc
}

func (uc *LifeStreamUsecase) attach(s *domain.Snapshot) {
	s.Normalize()
	uc.snapshot = s
	uc.tracker = NewEngagementTracker(&s.EngagementState)
	uc.goals = NewGoalEngine(&s.Goals, s.TodaysProgress, uc.scoring)
}

// Now reads the usecase clock
func (uc *LifeStreamUsecase) Now() time.Time {
	return uc.clock.Now()
}

// Dispatcher returns the event dispatcher
func (uc *LifeStreamUsecase) Dispatcher() *Dispatcher {
	return uc.dispatcher
}

// Load restores state from the store. Missing, unreadable or corrupt state
// falls back to an empty profile with starter goals; it never blocks startup.
func (uc *LifeStreamUsecase) Load(ctx context.Context) {
	log := logging.For("LifeStream")

	snapshot := domain.NewSnapshot()
	if uc.stateRepo != nil {
		data, err := uc.stateRepo.Load(ctx, StateKey)
		switch {
		case err != nil:
			log.WithError(err).Warn("Failed to load state, starting empty")
		case data == nil:
			log.Info("No saved state, starting fresh")
		default:
			if err := json.Unmarshal(data, snapshot); err != nil {
				log.WithError(err).Warn("Saved state is corrupt, starting empty")
				snapshot = domain.NewSnapshot()
			}
		}
	}
	uc.attach(snapshot)

	now := uc.clock.Now()
	if len(uc.snapshot.Goals) == 0 {
		for _, in := range StarterGoals() {
			if _, err := uc.goals.CreateGoal(in, now); err != nil {
				log.WithError(err).Warn("Failed to add starter goal")
			}
		}
		log.Infof("Added %d starter goals", len(uc.snapshot.Goals))
	}
	uc.Rollover(now)
}

// Rollover applies the day change to engagement counters and goal progress
func (uc *LifeStreamUsecase) Rollover(now time.Time) bool {
	if !uc.tracker.CheckDailyRollover(now) {
		return false
	}
	uc.goals.ResetDay(now)
	uc.dispatcher.Publish(domain.Event{Type: domain.EventDayRolledOver, At: now, Day: domain.DateKey(now)})
	return true
}

// Record runs extraction, engagement and goal progress for one message.
// Blank input is a parse miss like any other unmatched text. It does no I/O.
func (uc *LifeStreamUsecase) Record(message string) (*MessageResult, error) {
	message = strings.TrimSpace(message)

	now := uc.clock.Now()
	uc.Rollover(now)

	activities := uc.pipeline.Extract(message, now)
	uc.snapshot.Activities = append(uc.snapshot.Activities, activities...)
	uc.tracker.RecordActivity(activities, now)
	if len(activities) > 0 {
		uc.dispatcher.Publish(domain.Event{Type: domain.EventActivityLogged, At: now, Activities: activities})
	}

	completions := uc.goals.ApplyActivities(activities, now)
	for i := range completions {
		ev := completions[i]
		uc.tracker.AwardPoints(ev.Points)
		uc.dispatcher.Publish(domain.Event{Type: domain.EventGoalCompleted, At: now, Completion: &ev})
		uc.dispatcher.Publish(domain.Event{Type: domain.EventPointsAwarded, At: now, Points: ev.Points})
	}

	uc.dispatcher.Publish(domain.Event{Type: domain.EventMessageProcessed, At: now, Count: len(activities)})

	return &MessageResult{
		Message:     message,
		Activities:  activities,
		Completions: completions,
		Engagement:  uc.Engagement(),
		Mood:        uc.pipeline.Mood(message),
		At:          now,
	}, nil
}

// Respond composes the reply for a recorded message and attaches it to result
func (uc *LifeStreamUsecase) Respond(ctx context.Context, result *MessageResult) Reply {
	reply := uc.composer.Compose(ctx, ComposeInput{
		Message:     result.Message,
		Activities:  result.Activities,
		Completions: result.Completions,
		Engagement:  result.Engagement,
		Mood:        result.Mood,
		UserName:    uc.userName,
		Now:         result.At,
	})
	result.Reply = &reply
	uc.dispatcher.Publish(domain.Event{Type: domain.EventResponseGenerated, At: uc.clock.Now(), Source: reply.Source})
	return reply
}

// HandleMessage records a message and composes the reply
func (uc *LifeStreamUsecase) HandleMessage(ctx context.Context, message string) (*MessageResult, error) {
	result, err := uc.Record(message)
	if err != nil {
		return nil, err
	}
	uc.Respond(ctx, result)
	return result, nil
}

// CreateGoal adds a user goal
func (uc *LifeStreamUsecase) CreateGoal(in GoalInput) (*domain.Goal, error) {
	now := uc.clock.Now()
	g, err := uc.goals.CreateGoal(in, now)
	if err != nil {
		return nil, err
	}
	clone := g.Clone()
	uc.dispatcher.Publish(domain.Event{Type: domain.EventGoalCreated, At: now, Goal: &clone})
	return &clone, nil
}

// RemoveGoal soft-deletes a goal
func (uc *LifeStreamUsecase) RemoveGoal(id string) error {
	g, err := uc.goals.RemoveGoal(id)
	if err != nil {
		return err
	}
	clone := g.Clone()
	uc.dispatcher.Publish(domain.Event{Type: domain.EventGoalRemoved, At: uc.clock.Now(), Goal: &clone})
	return nil
}

// GoalView is a goal with today's accumulated progress
type GoalView struct {
	domain.Goal
	Today float64 `json:"today"`
}

// Goals returns copies of goals; inactive ones only when includeInactive is set
func (uc *LifeStreamUsecase) Goals(includeInactive bool) []GoalView {
	var result []GoalView
	for _, g := range uc.goals.Goals() {
		if !g.IsActive && !includeInactive {
			continue
		}
		result = append(result, GoalView{Goal: g.Clone(), Today: uc.goals.TodaysProgress(g.ID)})
	}
	return result
}

// Activities returns a copy of the activities logged at or after since
func (uc *LifeStreamUsecase) Activities(since time.Time) []domain.Activity {
	sinceMs := since.UnixMilli()
	var result []domain.Activity
	for _, a := range uc.snapshot.Activities {
		if a.Timestamp >= sinceMs {
			result = append(result, a)
		}
	}
	return result
}

// Engagement returns a copy of the engagement state
func (uc *LifeStreamUsecase) Engagement() domain.EngagementState {
	s := uc.snapshot.EngagementState
	s.FavoriteCategories = append([]domain.Category{}, s.FavoriteCategories...)
	return s
}

// Summary returns derived statistics for the last days days
func (uc *LifeStreamUsecase) Summary(days int) Summary {
	if days <= 0 {
		days = 7
	}
	since := domain.StartOfDay(uc.clock.Now()).AddDate(0, 0, -(days - 1))
	return Summarize(uc.snapshot.Activities, uc.snapshot.EngagementState, since)
}

// PurgeOlderThan drops activities logged before cutoff and returns how many were removed
func (uc *LifeStreamUsecase) PurgeOlderThan(cutoff time.Time) int {
	cutoffMs := cutoff.UnixMilli()
	kept := uc.snapshot.Activities[:0]
	for _, a := range uc.snapshot.Activities {
		if a.Timestamp >= cutoffMs {
			kept = append(kept, a)
		}
	}
	removed := len(uc.snapshot.Activities) - len(kept)
	uc.snapshot.Activities = kept
	if removed > 0 {
		uc.dispatcher.Publish(domain.Event{Type: domain.EventActivitiesPurged, At: uc.clock.Now(), Count: removed})
	}
	return removed
}

// Snapshot returns a deep copy of the current state
func (uc *LifeStreamUsecase) Snapshot() *domain.Snapshot {
	s := domain.NewSnapshot()
	s.Activities = append(s.Activities, uc.snapshot.Activities...)
	for _, g := range uc.snapshot.Goals {
		clone := g.Clone()
		s.Goals = append(s.Goals, &clone)
	}
	s.EngagementState = uc.Engagement()
	for id, v := range uc.snapshot.TodaysProgress {
		s.TodaysProgress[id] = v
	}
	return s
}

// Encode serializes the whole snapshot
func (uc *LifeStreamUsecase) Encode() ([]byte, error) {
	data, err := json.Marshal(uc.snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

// Persist writes an encoded snapshot to the store
func (uc *LifeStreamUsecase) Persist(ctx context.Context, data []byte) error {
	if uc.stateRepo == nil {
		return nil
	}
	if err := uc.stateRepo.Save(ctx, StateKey, data); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Save encodes and persists the snapshot
func (uc *LifeStreamUsecase) Save(ctx context.Context) error {
	data, err := uc.Encode()
	if err != nil {
		return err
	}
	return uc.Persist(ctx, data)
}

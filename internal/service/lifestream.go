package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/logging"
)

// mutations are the events that make persisted state dirty
var mutations = []domain.EventType{
	domain.EventMessageProcessed,
	domain.EventActivityLogged,
	domain.EventGoalCompleted,
	domain.EventPointsAwarded,
	domain.EventDayRolledOver,
	domain.EventGoalCreated,
	domain.EventGoalRemoved,
	domain.EventActivitiesPurged,
}

// LifeStreamService is the single entry point shared by the chat REPL, the
// HTTP API, the Feishu channel, the MCP server and the scheduler.
// It serializes every state mutation behind one mutex; reply generation
// runs outside the lock.
type LifeStreamService struct {
	mu            sync.Mutex
	uc            *usecase.LifeStreamUsecase
	persister     *Persister
	metrics       *Metrics
	retentionDays int
}

// NewLifeStreamService wires the dispatcher subscribers: persistence, metrics, logging
func NewLifeStreamService(
	uc *usecase.LifeStreamUsecase,
	metrics *Metrics,
	debounce time.Duration,
	retentionDays int,
) *LifeStreamService {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}
	s := &LifeStreamService{
		uc:            uc,
		metrics:       metrics,
		retentionDays: retentionDays,
	}
	s.persister = NewPersister(s.encode, uc.Persist, debounce, metrics)

	d := uc.Dispatcher()
	d.Subscribe(func(domain.Event) { s.persister.Touch() }, mutations...)
	d.Subscribe(metrics.Observe)
	d.Subscribe(logEvent)
	return s
}

func (s *LifeStreamService) encode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uc.Encode()
}

func logEvent(evt domain.Event) {
	log := logging.For("Events")
	switch evt.Type {
	case domain.EventGoalCompleted:
		log.WithFields(logrus.Fields{
			"goal":   evt.Completion.Goal.Title,
			"streak": evt.Completion.Streak,
			"points": evt.Completion.Points,
		}).Info("Goal completed")
	case domain.EventDayRolledOver:
		log.WithField("day", evt.Day).Info("Day rolled over")
	case domain.EventActivitiesPurged:
		log.WithField("count", evt.Count).Info("Purged expired activities")
	case domain.EventActivityLogged:
		log.WithField("count", len(evt.Activities)).Debug("Activities logged")
	default:
		log.WithField("type", evt.Type).Debug("Event")
	}
}

// Metrics returns the service metrics
func (s *LifeStreamService) Metrics() *Metrics {
	return s.metrics
}

// Load restores state and applies retention once at startup
func (s *LifeStreamService) Load(ctx context.Context) {
	s.mu.Lock()
	s.uc.Load(ctx)
	s.mu.Unlock()

	s.PurgeExpired()
}

// HandleMessage records text and composes the reply
func (s *LifeStreamService) HandleMessage(ctx context.Context, text string) (*usecase.MessageResult, error) {
	s.mu.Lock()
	result, err := s.uc.Record(text)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.uc.Respond(ctx, result)
	s.metrics.RecordReplyLatency(time.Since(start).Seconds())

	logging.For("LifeStream").WithFields(logrus.Fields{
		"activities":  len(result.Activities),
		"completions": len(result.Completions),
		"source":      result.Reply.Source,
	}).Info("Message handled")
	return result, nil
}

// CreateGoal adds a goal
func (s *LifeStreamService) CreateGoal(in usecase.GoalInput) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uc.CreateGoal(in)
}

// RemoveGoal soft-deletes a goal
func (s *LifeStreamService) RemoveGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uc.RemoveGoal(id)
}

// Goals lists goals with today's progress
func (s *LifeStreamService) Goals(includeInactive bool) []usecase.GoalView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uc.Goals(includeInactive)
}

// Activities returns activities from the last days calendar days (all when days <= 0)
func (s *LifeStreamService) Activities(days int) []domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	var since time.Time
	if days > 0 {
		since = domain.StartOfDay(s.uc.Now()).AddDate(0, 0, -(days - 1))
	}
	return s.uc.Activities(since)
}

// Engagement returns the engagement counters
func (s *LifeStreamService) Engagement() domain.EngagementState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uc.Engagement()
}

// Summary returns statistics for the last days days
func (s *LifeStreamService) Summary(days int) usecase.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uc.Summary(days)
}

// Snapshot returns a copy of the full state
func (s *LifeStreamService) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uc.Snapshot()
}

// Rollover applies a day change if the calendar day has advanced
func (s *LifeStreamService) Rollover() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uc.Rollover(s.uc.Now())
}

// PurgeExpired drops activities older than the retention window
func (s *LifeStreamService) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := domain.StartOfDay(s.uc.Now()).AddDate(0, 0, -s.retentionDays)
	return s.uc.PurgeOlderThan(cutoff)
}

// Flush saves pending changes now
func (s *LifeStreamService) Flush(ctx context.Context) error {
	return s.persister.Flush(ctx)
}

// Dirty reports whether unsaved changes exist
func (s *LifeStreamService) Dirty() bool {
	return s.persister.Dirty()
}

// Close performs the final flush
func (s *LifeStreamService) Close(ctx context.Context) error {
	return s.persister.Stop(ctx)
}

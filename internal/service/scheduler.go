package service

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/lifestream-app/lifestream/internal/logging"
)

// DailyScheduler runs the midnight rollover and retention purge
type DailyScheduler struct {
	scheduler gocron.Scheduler
	svc       *LifeStreamService
}

// NewDailyScheduler creates a scheduler in the local time zone, since date keys are local
func NewDailyScheduler(svc *LifeStreamService) (*DailyScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &DailyScheduler{scheduler: scheduler, svc: svc}, nil
}

// Start registers the daily job and starts the scheduler
func (s *DailyScheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 5))),
		gocron.NewTask(s.RunDaily),
		gocron.WithName("daily-rollover"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	s.scheduler.Start()
	logging.For("Scheduler").Info("Started daily rollover job at 00:00:05")
	return nil
}

// RunDaily rolls the day over and purges expired activities
func (s *DailyScheduler) RunDaily() {
	log := logging.For("Scheduler")

	rolled := s.svc.Rollover()
	purged := s.svc.PurgeExpired()
	log.WithFields(logrus.Fields{
		"rolled_over": rolled,
		"purged":      purged,
	}).Info("Daily job finished")
}

// NextRun returns the next scheduled run, or zero before Start
func (s *DailyScheduler) NextRun() time.Time {
	for _, j := range s.scheduler.Jobs() {
		if next, err := j.NextRun(); err == nil {
			return next
		}
	}
	return time.Time{}
}

// Stop shuts the scheduler down
func (s *DailyScheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	logging.For("Scheduler").Info("Stopped")
	return nil
}

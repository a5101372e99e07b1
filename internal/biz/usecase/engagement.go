package usecase

import (
	"time"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

// EngagementTracker maintains streak and log counters over an EngagementState.
// Every call to RecordActivity counts as one log, even when the batch is empty.
type EngagementTracker struct {
	state *domain.EngagementState
}

// NewEngagementTracker creates a tracker that mutates state in place
func NewEngagementTracker(state *domain.EngagementState) *EngagementTracker {
	if state == nil {
		state = &domain.EngagementState{}
	}
	return &EngagementTracker{state: state}
}

// State returns the tracked state
func (t *EngagementTracker) State() *domain.EngagementState {
	return t.state
}

// RecordActivity counts one log and folds the batch into the lifetime totals
func (t *EngagementTracker) RecordActivity(batch []domain.Activity, at time.Time) {
	t.state.LogsToday++
	t.state.LastLogTimestamp = at.UnixMilli()
	for _, a := range batch {
		t.state.TotalActivities++
		t.state.AddFavorite(a.Category)
	}
}

// CheckDailyRollover resets the per-day counter when the calendar day changed.
// The streak grows only when the previous tracked day was yesterday and had logs.
// Returns true when a rollover happened.
func (t *EngagementTracker) CheckDailyRollover(today time.Time) bool {
	todayKey := domain.DateKey(today)
	if t.state.LastResetDate == todayKey {
		return false
	}

	if t.state.LastResetDate == domain.PreviousDateKey(today) && t.state.LogsToday > 0 {
		t.state.StreakDays++
	} else {
		t.state.StreakDays = 0
	}
	t.state.LogsToday = 0
	t.state.LastResetDate = todayKey
	return true
}

// AwardPoints adds to the lifetime points total
func (t *EngagementTracker) AwardPoints(points int) {
	if points > 0 {
		t.state.TotalPoints += points
	}
}

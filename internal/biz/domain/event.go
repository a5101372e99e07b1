package domain

import "time"

// EventType enumerates every state transition the core publishes
type EventType string

const (
	EventActivityLogged    EventType = "activity_logged"
	EventGoalCompleted     EventType = "goal_completed"
	EventPointsAwarded     EventType = "points_awarded"
	EventDayRolledOver     EventType = "day_rolled_over"
	EventGoalCreated       EventType = "goal_created"
	EventGoalRemoved       EventType = "goal_removed"
	EventActivitiesPurged  EventType = "activities_purged"
	EventMessageProcessed  EventType = "message_processed"
	EventResponseGenerated EventType = "response_generated"
)

// Event is a typed notification fanned out by the dispatcher.
// Only the fields relevant to Type are set.
type Event struct {
	Type       EventType
	At         time.Time
	Activities []Activity
	Completion *CompletionEvent
	Goal       *Goal
	Points     int
	Day        string
	Count      int
	Source     string // Response source: "generator" or "template"
}

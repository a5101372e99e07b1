package usecase

import (
	"strconv"
	"strings"
)

// Intent is the coarse purpose of a user message
type Intent string

const (
	IntentActivityLog    Intent = "activity_log"
	IntentGoalSetting    Intent = "goal_setting"
	IntentProgressCheck  Intent = "progress_check"
	IntentInsightRequest Intent = "insight_request"
	IntentConversation   Intent = "conversation"
)

var intentPhrases = []struct {
	intent  Intent
	phrases []string
}{
	{IntentProgressCheck, []string{"how am i", "my progress", "progress", "status", "streak", "stats"}},
	{IntentInsightRequest, []string{"insight", "pattern", "analysis", "analyze", "trend", "show me"}},
	{IntentGoalSetting, []string{"want to", "goal", "target", "aim", "plan to", "trying to"}},
}

// DetectIntent classifies a message. Any extracted activity makes it an activity log.
func DetectIntent(message string, extracted int) Intent {
	if extracted > 0 {
		return IntentActivityLog
	}
	lower := strings.ToLower(message)
	for _, entry := range intentPhrases {
		for _, p := range entry.phrases {
			if strings.Contains(lower, p) {
				return entry.intent
			}
		}
	}
	return IntentConversation
}

// guidance returns the prompt instruction for an intent
func (i Intent) guidance(streak int) string {
	switch i {
	case IntentActivityLog:
		return "They just logged an activity. Celebrate their progress and maybe offer a gentle insight about their patterns."
	case IntentProgressCheck:
		return "They want to know how they're doing. Be specific about their " + strconv.Itoa(streak) + "-day streak and recent activities."
	case IntentInsightRequest:
		return "They want insights. Reference their patterns and provide encouraging observations about their progress."
	case IntentGoalSetting:
		return "They're thinking about goals. Be supportive and suggest achievable targets based on their history."
	default:
		return "Respond naturally to their message while staying focused on their life-tracking journey."
	}
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/repo"
)

// Mock implementations

type mockGenerator struct {
	text    string
	err     error
	delay   time.Duration
	calls   int
	prompts []string
	opts    repo.GenerateOptions
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, opts repo.GenerateOptions) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = opts
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.text, m.err
}

func firstPick(n int) int { return 0 }

func composeInput(msg string, acts ...domain.Activity) ComposeInput {
	return ComposeInput{
		Message:    msg,
		Activities: acts,
		Engagement: domain.EngagementState{StreakDays: 3, TotalActivities: 12, FavoriteCategories: []domain.Category{domain.CategoryFitness}},
		Now:        time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local),
	}
}

func TestCompose_UsesGenerator(t *testing.T) {
	gen := &mockGenerator{text: "**Nice** run! Keep *going*."}
	c := NewResponseComposer(gen, nil, DefaultComposerConfig())

	reply := c.Compose(context.Background(), composeInput("ran 5k", domain.Activity{Type: "run", Category: domain.CategoryFitness, Duration: 30}))

	if reply.Source != SourceGenerator {
		t.Fatalf("Expected generator source, got %s", reply.Source)
	}
	if reply.Text != "Nice run! Keep going." {
		t.Errorf("Expected markdown stripped, got %q", reply.Text)
	}
	if reply.Intent != IntentActivityLog {
		t.Errorf("Expected activity_log intent, got %s", reply.Intent)
	}
	if gen.opts.Temperature != 0.8 || gen.opts.MaxTokens != 200 {
		t.Errorf("Unexpected options: %+v", gen.opts)
	}
	prompt := gen.prompts[0]
	for _, want := range []string{"Current streak: 3 days", "Total activities logged: 12", "Favorite categories: fitness", "Time of day: morning", "run (fitness), 30 minutes"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestCompose_FallbackOnError(t *testing.T) {
	gen := &mockGenerator{err: errors.New("status 500")}
	c := NewResponseComposer(gen, nil, DefaultComposerConfig()).WithPicker(firstPick)

	reply := c.Compose(context.Background(), composeInput("hello there"))

	if reply.Source != SourceTemplate {
		t.Fatalf("Expected template fallback, got %s", reply.Source)
	}
	if !strings.HasPrefix(reply.Text, "Good morning, Champion!") {
		t.Errorf("Unexpected greeting: %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Thanks for sharing!") {
		t.Errorf("Expected generic encouragement, got %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "3-day streak") {
		t.Errorf("Expected streak close, got %q", reply.Text)
	}
}

func TestCompose_FallbackOnTimeout(t *testing.T) {
	gen := &mockGenerator{text: "too late", delay: time.Second}
	cfg := DefaultComposerConfig()
	cfg.Timeout = 20 * time.Millisecond
	c := NewResponseComposer(gen, nil, cfg)

	reply := c.Compose(context.Background(), composeInput("hi"))
	if reply.Source != SourceTemplate {
		t.Errorf("Expected template fallback on timeout, got %s", reply.Source)
	}
}

func TestCompose_FallbackOnEmptyOutput(t *testing.T) {
	c := NewResponseComposer(&mockGenerator{text: "  "}, nil, DefaultComposerConfig())
	if reply := c.Compose(context.Background(), composeInput("hi")); reply.Source != SourceTemplate {
		t.Errorf("Expected template fallback on empty output, got %s", reply.Source)
	}
}

func TestCompose_NoGenerator(t *testing.T) {
	c := NewResponseComposer(nil, nil, DefaultComposerConfig()).WithPicker(firstPick)

	reply := c.Compose(context.Background(), composeInput("read for 30 minutes", domain.Activity{Type: "read", Category: domain.CategoryLearning, Duration: 30}))
	if reply.Source != SourceTemplate {
		t.Fatalf("Expected template, got %s", reply.Source)
	}
	if !strings.Contains(reply.Text, "30 minutes of read") {
		t.Errorf("Expected learning template, got %q", reply.Text)
	}
}

func TestCompose_RateLimited(t *testing.T) {
	gen := &mockGenerator{text: "ok"}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	c := NewResponseComposer(gen, limiter, DefaultComposerConfig())

	first := c.Compose(context.Background(), composeInput("hi"))
	second := c.Compose(context.Background(), composeInput("hi again"))

	if first.Source != SourceGenerator || second.Source != SourceTemplate {
		t.Errorf("Expected generator then template, got %s then %s", first.Source, second.Source)
	}
	if gen.calls != 1 {
		t.Errorf("Expected 1 generator call, got %d", gen.calls)
	}
}

func TestCompose_TruncatesLongReplies(t *testing.T) {
	long := "First sentence here. Second sentence here! " + strings.Repeat("More words follow ", 30) + "end."
	c := NewResponseComposer(&mockGenerator{text: long}, nil, DefaultComposerConfig())

	reply := c.Compose(context.Background(), composeInput("hi"))
	if reply.Text != "First sentence here. Second sentence here!" {
		t.Errorf("Expected two sentences, got %q", reply.Text)
	}
}

func TestCompose_HardCapsRepliesWithoutSentences(t *testing.T) {
	long := strings.Repeat("très bien ", 60)
	cfg := DefaultComposerConfig()
	cfg.MaxReplyChars = 50
	c := NewResponseComposer(&mockGenerator{text: long}, nil, cfg)

	reply := c.Compose(context.Background(), composeInput("hi"))
	if n := utf8.RuneCountInString(reply.Text); n > 50 {
		t.Errorf("Expected at most 50 runes, got %d: %q", n, reply.Text)
	}
	if !strings.HasSuffix(reply.Text, "…") || !utf8.ValidString(reply.Text) {
		t.Errorf("Expected valid text ending in an ellipsis, got %q", reply.Text)
	}
}

func TestFallback_CompletionAndInsight(t *testing.T) {
	c := NewResponseComposer(nil, nil, DefaultComposerConfig()).WithPicker(firstPick)
	in := composeInput("gym and yoga",
		domain.Activity{Type: "gym", Category: domain.CategoryFitness, Duration: 20},
		domain.Activity{Type: "yoga", Category: domain.CategoryWellness, Duration: 20},
	)
	in.Completions = []domain.CompletionEvent{{Goal: domain.Goal{Title: "Stay Active Daily"}, Points: 25}}

	text := c.Fallback(in)
	if !strings.Contains(text, "Goal complete: Stay Active Daily! +25 points.") {
		t.Errorf("Expected completion line, got %q", text)
	}
	if !strings.Contains(text, "balance") {
		t.Errorf("Expected balance insight, got %q", text)
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := map[int]string{0: "night", 5: "night", 6: "morning", 11: "morning", 12: "afternoon", 16: "afternoon", 17: "evening", 20: "evening", 21: "night"}
	for hour, want := range tests {
		got := TimeOfDay(time.Date(2026, 3, 10, hour, 0, 0, 0, time.Local))
		if got != want {
			t.Errorf("TimeOfDay(%d) = %s, want %s", hour, got, want)
		}
	}
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		msg       string
		extracted int
		want      Intent
	}{
		{"ran 5k", 1, IntentActivityLog},
		{"how am i doing this week?", 0, IntentProgressCheck},
		{"show me my trends", 0, IntentInsightRequest},
		{"I want to sleep more", 0, IntentGoalSetting},
		{"hello there", 0, IntentConversation},
	}
	for _, tt := range tests {
		if got := DetectIntent(tt.msg, tt.extracted); got != tt.want {
			t.Errorf("DetectIntent(%q) = %s, want %s", tt.msg, got, tt.want)
		}
	}
}

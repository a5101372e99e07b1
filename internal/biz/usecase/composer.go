package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/repo"
	"github.com/lifestream-app/lifestream/internal/logging"
)

// Reply sources
const (
	SourceGenerator = "generator"
	SourceTemplate  = "template"
)

// ComposeInput is everything the composer may reference in a reply
type ComposeInput struct {
	Message     string
	Activities  []domain.Activity
	Completions []domain.CompletionEvent
	Engagement  domain.EngagementState
	Mood        domain.Mood
	UserName    string
	Now         time.Time
}

// Reply is a composed response
type Reply struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Intent Intent `json:"intent"`
}

// ResponseComposer renders encouragement text, preferring the generator and
// always falling back to local templates
type ResponseComposer struct {
	generator repo.TextGenerator
	limiter   *rate.Limiter
	config    ComposerConfig
	pick      func(n int) int
}

// NewResponseComposer creates a composer. generator and limiter may be nil.
func NewResponseComposer(generator repo.TextGenerator, limiter *rate.Limiter, config ComposerConfig) *ResponseComposer {
	return &ResponseComposer{
		generator: generator,
		limiter:   limiter,
		config:    config,
		pick:      rand.IntN,
	}
}

// WithPicker overrides the random template choice
func (c *ResponseComposer) WithPicker(pick func(n int) int) *ResponseComposer {
	c.pick = pick
	return c
}

// Compose returns a reply for in. It never fails.
func (c *ResponseComposer) Compose(ctx context.Context, in ComposeInput) Reply {
	intent := DetectIntent(in.Message, len(in.Activities))

	if text, ok := c.generate(ctx, in, intent); ok {
		return Reply{Text: text, Source: SourceGenerator, Intent: intent}
	}
	return Reply{Text: c.Fallback(in), Source: SourceTemplate, Intent: intent}
}

func (c *ResponseComposer) generate(ctx context.Context, in ComposeInput, intent Intent) (string, bool) {
	if c.generator == nil {
		return "", false
	}
	log := logging.For("Composer")

	if c.limiter != nil && !c.limiter.Allow() {
		log.Debug("Generator rate limited, using template")
		return "", false
	}

	timeout := c.config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := c.generator.Generate(genCtx, c.BuildPrompt(in, intent), repo.GenerateOptions{
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		log.WithError(err).Warn("Generator failed, using template")
		return "", false
	}

	text = c.clean(text)
	if text == "" {
		log.Warn("Generator returned empty text, using template")
		return "", false
	}
	return text, true
}

// BuildPrompt renders the generator prompt from engagement state and the new batch
func (c *ResponseComposer) BuildPrompt(in ComposeInput, intent Intent) string {
	favorites := make([]string, len(in.Engagement.FavoriteCategories))
	for i, cat := range in.Engagement.FavoriteCategories {
		favorites[i] = string(cat)
	}
	favText := strings.Join(favorites, ", ")
	if favText == "" {
		favText = "none yet"
	}
	mood := string(in.Mood)
	if mood == "" {
		mood = "neutral"
	}

	var b strings.Builder
	b.WriteString("You are LifeStream AI, a supportive life-tracking companion. You help users feel accomplished and motivated.\n\n")
	b.WriteString("USER CONTEXT:\n")
	fmt.Fprintf(&b, "- Current streak: %d days\n", in.Engagement.StreakDays)
	fmt.Fprintf(&b, "- Total activities logged: %d\n", in.Engagement.TotalActivities)
	fmt.Fprintf(&b, "- Favorite categories: %s\n", favText)
	fmt.Fprintf(&b, "- Recent mood: %s\n", mood)
	fmt.Fprintf(&b, "- Time of day: %s\n", TimeOfDay(in.Now))
	fmt.Fprintf(&b, "- Intent detected: %s\n", intent)

	if len(in.Activities) > 0 {
		b.WriteString("\nACTIVITIES JUST LOGGED:\n")
		for _, a := range in.Activities {
			fmt.Fprintf(&b, "- %s (%s), %d minutes, %s intensity\n", a.Type, a.Category, a.Duration, a.Intensity)
		}
	}
	if len(in.Completions) > 0 {
		b.WriteString("\nGOALS COMPLETED TODAY:\n")
		for _, ev := range in.Completions {
			fmt.Fprintf(&b, "- %s (streak %d, +%d points)\n", ev.Goal.Title, ev.Streak, ev.Points)
		}
	}

	fmt.Fprintf(&b, "\nUSER MESSAGE: %q\n\n", in.Message)
	b.WriteString("RESPONSE GUIDELINES:\n")
	b.WriteString("- Be encouraging and supportive (but not overly enthusiastic)\n")
	b.WriteString("- Keep response under 150 words\n")
	b.WriteString("- Use 1-2 relevant emojis naturally\n")
	b.WriteString("- If they logged an activity, acknowledge it specifically\n")
	b.WriteString("- Be conversational, not robotic\n\n")
	b.WriteString(intent.guidance(in.Engagement.StreakDays))
	return b.String()
}

var (
	boldMarkdown   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarkdown = regexp.MustCompile(`\*(.*?)\*`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+`)
)

// clean strips markdown emphasis and shortens long replies to two sentences,
// then to MaxReplyChars runes
func (c *ResponseComposer) clean(text string) string {
	text = boldMarkdown.ReplaceAllString(text, "$1")
	text = italicMarkdown.ReplaceAllString(text, "$1")
	text = strings.TrimSpace(text)

	limit := c.config.MaxReplyChars
	if limit <= 0 || len(text) <= limit {
		return text
	}

	ends := sentenceEnd.FindAllStringIndex(text, 2)
	if len(ends) == 2 {
		text = strings.TrimSpace(text[:ends[1][1]])
	}

	// Hard cap in runes, ellipsis included
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

// Fallback renders a local templated reply
func (c *ResponseComposer) Fallback(in ComposeInput) string {
	name := in.UserName
	if name == "" {
		name = "Champion"
	}

	var parts []string
	greetings := timeGreetings[TimeOfDay(in.Now)]
	parts = append(parts, fmt.Sprintf("%s, %s!", c.choose(greetings), name))

	for _, ev := range in.Completions {
		parts = append(parts, completionLine(ev))
	}

	if len(in.Activities) > 0 {
		for _, a := range in.Activities {
			parts = append(parts, fmt.Sprintf(c.choose(categoryTemplates(a.Category)), a.Duration, a.Type))
		}
		if insight := InstantInsight(in.Activities); insight != "" {
			parts = append(parts, insight)
		}
	} else {
		parts = append(parts, c.choose(generalEncouragement))
	}

	if in.Engagement.StreakDays > 1 {
		parts = append(parts, fmt.Sprintf("Your %d-day streak shows real commitment!", in.Engagement.StreakDays))
	} else {
		parts = append(parts, c.choose(motivationalCloses))
	}
	return strings.Join(parts, " ")
}

func (c *ResponseComposer) choose(options []string) string {
	if len(options) == 0 {
		return ""
	}
	i := c.pick(len(options))
	if i < 0 || i >= len(options) {
		i = 0
	}
	return options[i]
}

func completionLine(ev domain.CompletionEvent) string {
	line := fmt.Sprintf("Goal complete: %s! +%d points.", ev.Goal.Title, ev.Points)
	if len(ev.Milestones) > 0 {
		line += " Milestone reached: " + strings.Join(ev.Milestones, ", ") + "!"
	}
	return line
}

// TimeOfDay buckets t into morning, afternoon, evening or night
func TimeOfDay(t time.Time) string {
	h := t.Hour()
	switch {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	case h < 21:
		return "evening"
	default:
		return "night"
	}
}

// InstantInsight returns a one-line observation about a batch, or ""
func InstantInsight(activities []domain.Activity) string {
	if domain.TotalMinutes(activities) > 60 {
		return fmt.Sprintf("Over %d minutes of intentional living today. That's serious momentum!", domain.TotalMinutes(activities))
	}
	has := make(map[domain.Category]bool)
	for _, a := range activities {
		has[a.Category] = true
	}
	switch {
	case has[domain.CategoryFitness] && has[domain.CategoryWellness]:
		return "Body and mind together. That's the kind of balance that lasts!"
	case has[domain.CategoryLearning] && has[domain.CategoryProductivity]:
		return "Learning plus doing is how real growth happens!"
	}
	return ""
}

var timeGreetings = map[string][]string{
	"morning":   {"Good morning", "Rise and shine", "Morning"},
	"afternoon": {"Good afternoon", "Hope your day is going well", "Afternoon"},
	"evening":   {"Good evening", "Hope you had a great day", "Evening"},
	"night":     {"Good night", "Winding down nicely", "Night"},
}

var generalEncouragement = []string{
	"Thanks for sharing! Every moment you track builds a clearer picture of your journey.",
	"I love hearing about your progress! Your consistency is building something amazing.",
	"Keep me posted on your wins! I'm here to celebrate every step of your growth.",
}

var motivationalCloses = []string{
	"This consistency is building lasting change!",
	"You're 1% better than yesterday!",
	"Your future self is thanking you right now!",
	"Every log makes you unstoppable!",
}

// categoryTemplates take the duration then the activity type
func categoryTemplates(c domain.Category) []string {
	switch c {
	case domain.CategoryWellness:
		return []string{
			"%d minutes of %s is an investment in your inner peace!",
			"Beautiful self-care: %d minutes of %s builds mental strength!",
		}
	case domain.CategoryLearning:
		return []string{
			"%d minutes of %s? Your brain is growing stronger!",
			"That learning session counts: %d minutes of %s builds lasting wisdom!",
		}
	case domain.CategoryProductivity:
		return []string{
			"%d minutes of focused %s! You're making things happen!",
			"Real progress: %d minutes of %s moves your goals closer!",
		}
	case domain.CategorySocial:
		return []string{
			"%d minutes of %s! Human connection fuels the soul!",
			"Love the social investment: %d minutes of %s builds lasting relationships!",
		}
	case domain.CategoryCreative:
		return []string{
			"%d minutes of %s! Keep expressing your unique gifts!",
			"That creative flow is beautiful: %d minutes of %s feeds the soul!",
		}
	default:
		return []string{
			"%d minutes of %s? That's dedication in action!",
			"That %d-minute %s session is building real strength!",
		}
	}
}

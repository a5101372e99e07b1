package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/service"
)

// LifeStreamMCPServer exposes LifeStream as MCP tools
type LifeStreamMCPServer struct {
	server *mcp.Server
	svc    *service.LifeStreamService
}

// NewServer creates a new LifeStream MCP server
func NewServer(svc *service.LifeStreamService, version string) *LifeStreamMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "lifestream",
		Version: version,
	}, nil)

	s := &LifeStreamMCPServer{
		server: server,
		svc:    svc,
	}

	// Register tools
	s.registerTools()

	return s
}

// registerTools registers all LifeStream MCP tools
func (s *LifeStreamMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "log_message",
		Description: "Log a free-text description of what the user did, e.g. 'ran for 30 minutes and read a book'. Extracts activities, updates streaks and goals, and returns an encouragement reply.",
	}, s.handleLogMessage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_stats",
		Description: "Get engagement counters: streak days, activities today, lifetime totals, points and level.",
	}, s.handleGetStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_goals",
		Description: "List goals with today's progress, streaks and completion counts.",
	}, s.handleListGoals)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_goal",
		Description: "Create a recurring goal tied to an activity category.",
	}, s.handleCreateGoal)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_insights",
		Description: "Get a category breakdown and summary of recent activity.",
	}, s.handleGetInsights)
}

// LogMessageInput is the input for log_message tool
type LogMessageInput struct {
	Text string `json:"text" jsonschema:"The user's description of what they did"`
}

// LogMessageOutput is the output for log_message tool
type LogMessageOutput struct {
	Reply       string                   `json:"reply"`
	Activities  []domain.Activity        `json:"activities"`
	Completions []domain.CompletionEvent `json:"completions,omitempty"`
	StreakDays  int                      `json:"streakDays"`
	Error       string                   `json:"error,omitempty"`
}

func (s *LifeStreamMCPServer) handleLogMessage(ctx context.Context, req *mcp.CallToolRequest, input LogMessageInput) (*mcp.CallToolResult, LogMessageOutput, error) {
	result, err := s.svc.HandleMessage(ctx, input.Text)
	if err != nil {
		return nil, LogMessageOutput{Activities: []domain.Activity{}, Error: err.Error()}, nil
	}

	out := LogMessageOutput{
		Activities:  append([]domain.Activity{}, result.Activities...),
		Completions: result.Completions,
		StreakDays:  result.Engagement.StreakDays,
	}
	if result.Reply != nil {
		out.Reply = result.Reply.Text
	}
	return nil, out, nil
}

// GetStatsInput is empty - no input needed
type GetStatsInput struct{}

// GetStatsOutput contains engagement counters and level
type GetStatsOutput struct {
	Engagement domain.EngagementState `json:"engagement"`
	Level      string                 `json:"level"`
	NextLevel  string                 `json:"nextLevel,omitempty"`
	ToNext     int                    `json:"pointsToNext,omitempty"`
}

func (s *LifeStreamMCPServer) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input GetStatsInput) (*mcp.CallToolResult, GetStatsOutput, error) {
	eng := s.svc.Engagement()
	level, next := domain.LevelFor(eng.TotalPoints)

	out := GetStatsOutput{Engagement: eng, Level: level.Name}
	if next != nil {
		out.NextLevel = next.Name
		out.ToNext = next.MinPoints - eng.TotalPoints
	}
	return nil, out, nil
}

// ListGoalsInput selects whether removed goals are included
type ListGoalsInput struct {
	IncludeInactive bool `json:"includeInactive,omitempty" jsonschema:"Include removed goals"`
}

// ListGoalsOutput contains the goals
type ListGoalsOutput struct {
	Goals []usecase.GoalView `json:"goals"`
}

func (s *LifeStreamMCPServer) handleListGoals(ctx context.Context, req *mcp.CallToolRequest, input ListGoalsInput) (*mcp.CallToolResult, ListGoalsOutput, error) {
	goals := s.svc.Goals(input.IncludeInactive)
	if goals == nil {
		goals = []usecase.GoalView{}
	}
	return nil, ListGoalsOutput{Goals: goals}, nil
}

// CreateGoalInput is the input for create_goal tool
type CreateGoalInput struct {
	Title      string  `json:"title" jsonschema:"Short goal title"`
	Category   string  `json:"category" jsonschema:"One of fitness, wellness, learning, productivity, social, creative, other"`
	Target     float64 `json:"target" jsonschema:"Daily target amount in the goal unit"`
	Unit       string  `json:"unit,omitempty" jsonschema:"minutes (default), hours, or activity to count each logged activity once"`
	Period     string  `json:"period,omitempty" jsonschema:"Label only, default daily; progress always resets at midnight"`
	Difficulty string  `json:"difficulty,omitempty" jsonschema:"easy, medium (default) or hard; harder goals earn more points"`
}

// CreateGoalOutput is the output for create_goal tool
type CreateGoalOutput struct {
	Goal  *domain.Goal `json:"goal,omitempty"`
	Error string       `json:"error,omitempty"`
}

func (s *LifeStreamMCPServer) handleCreateGoal(ctx context.Context, req *mcp.CallToolRequest, input CreateGoalInput) (*mcp.CallToolResult, CreateGoalOutput, error) {
	goal, err := s.svc.CreateGoal(usecase.GoalInput{
		Title:      input.Title,
		Category:   domain.Category(input.Category),
		Target:     input.Target,
		Unit:       input.Unit,
		Period:     input.Period,
		Difficulty: domain.Difficulty(input.Difficulty),
	})
	if errors.Is(err, usecase.ErrInvalidGoal) {
		return nil, CreateGoalOutput{Error: err.Error()}, nil
	}
	if err != nil {
		return nil, CreateGoalOutput{}, err
	}
	return nil, CreateGoalOutput{Goal: goal}, nil
}

// GetInsightsInput specifies the window
type GetInsightsInput struct {
	Days int `json:"days,omitempty" jsonschema:"Number of days to summarize (default 7)"`
}

// GetInsightsOutput is a summary of the window
type GetInsightsOutput struct {
	Since        string                 `json:"since"`
	Activities   int                    `json:"activities"`
	TotalMinutes int                    `json:"totalMinutes"`
	ActiveDays   int                    `json:"activeDays"`
	TopCategory  string                 `json:"topCategory,omitempty"`
	Breakdown    []usecase.CategoryStat `json:"breakdown"`
	Level        string                 `json:"level"`
	Points       int                    `json:"points"`
	StreakDays   int                    `json:"streakDays"`
}

func (s *LifeStreamMCPServer) handleGetInsights(ctx context.Context, req *mcp.CallToolRequest, input GetInsightsInput) (*mcp.CallToolResult, GetInsightsOutput, error) {
	sum := s.svc.Summary(input.Days)
	return nil, GetInsightsOutput{
		Since:        domain.DateKey(sum.Since),
		Activities:   sum.Activities,
		TotalMinutes: sum.TotalMinutes,
		ActiveDays:   sum.ActiveDays,
		TopCategory:  sum.TopCategory,
		Breakdown:    sum.Breakdown,
		Level:        sum.Level.Name,
		Points:       sum.Points,
		StreakDays:   sum.StreakDays,
	}, nil
}

// Run starts the MCP server with stdio transport
func (s *LifeStreamMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *LifeStreamMCPServer) GetServer() *mcp.Server {
	return s.server
}

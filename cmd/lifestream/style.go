package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lifestream-app/lifestream/internal/biz/usecase"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	replyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).PaddingLeft(2)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func kv(label string, value interface{}) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), valueStyle.Render(fmt.Sprint(value)))
}

// renderSummary draws level, streak and the category bar chart
func renderSummary(s usecase.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Last %s", since(s))))
	b.WriteString("\n")
	b.WriteString(kv("Level", s.Level.Name))
	if s.NextLevel != nil {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  (%d to %s)", s.NextLevel.MinPoints-s.Points, s.NextLevel.Name)))
	}
	b.WriteString("\n")
	b.WriteString(kv("Points", s.Points) + "   " + kv("Streak", fmt.Sprintf("%d days", s.StreakDays)) + "   " + kv("Logs today", s.LogsToday))
	b.WriteString("\n")
	b.WriteString(kv("Activities", s.Activities) + "   " + kv("Minutes", s.TotalMinutes) + "   " + kv("Active days", s.ActiveDays))

	bars := usecase.Bars(s.Breakdown, 24)
	if len(bars) > 0 {
		b.WriteString("\n\n")
		width := 0
		for _, bar := range bars {
			if len(bar.Label) > width {
				width = len(bar.Label)
			}
		}
		for i, bar := range bars {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s %s %s",
				labelStyle.Render(fmt.Sprintf("%-*s", width, bar.Label)),
				barStyle.Render(bar.Fill),
				valueStyle.Render(fmt.Sprintf("%d min", bar.Value)))
		}
	}
	return boxStyle.Render(b.String())
}

func since(s usecase.Summary) string {
	return "since " + s.Since.Format("Jan 2")
}

// renderGoals lists goals with today's progress
func renderGoals(goals []usecase.GoalView) string {
	if len(goals) == 0 {
		return labelStyle.Render("No goals yet. Add one with: lifestream goals add")
	}
	var b strings.Builder
	for i, g := range goals {
		if i > 0 {
			b.WriteString("\n")
		}
		status := " "
		if g.Progress >= 100 {
			status = barStyle.Render("✓")
		}
		if !g.IsActive {
			status = labelStyle.Render("-")
		}
		fmt.Fprintf(&b, "%s %s %s  %s  %s",
			status,
			valueStyle.Render(g.Title),
			labelStyle.Render(fmt.Sprintf("[%s]", g.Category)),
			fmt.Sprintf("%g/%g %s %s (%.0f%%)", g.Today, g.Target, g.Unit, g.Period, g.Progress),
			labelStyle.Render(fmt.Sprintf("streak %d, best %d, id %s", g.Streak, g.BestStreak, g.ID)),
		)
	}
	return b.String()
}

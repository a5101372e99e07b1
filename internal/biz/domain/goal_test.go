package domain

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(DateKeyLayout, s, time.Local)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}

func TestGoal_Delta(t *testing.T) {
	a := Activity{Duration: 90}

	tests := []struct {
		unit string
		want float64
	}{
		{UnitHours, 1.5},
		{UnitMinutes, 90},
		{UnitActivity, 1},
		{"sessions", 1},
		{"Hours", 1.5},
	}

	for _, tt := range tests {
		g := &Goal{Unit: tt.unit}
		if got := g.Delta(a); got != tt.want {
			t.Errorf("Delta(unit=%q) = %v, want %v", tt.unit, got, tt.want)
		}
	}
}

func TestGoal_PercentOf(t *testing.T) {
	g := &Goal{Target: 30}
	if got := g.PercentOf(15); got != 50 {
		t.Errorf("Expected 50, got %v", got)
	}
	if got := g.PercentOf(45); got != 100 {
		t.Errorf("Expected progress capped at 100, got %v", got)
	}

	zero := &Goal{Target: 0}
	if got := zero.PercentOf(0); got != 100 {
		t.Errorf("Expected zero target to be satisfied, got %v", got)
	}
}

func TestGoal_StreakAt(t *testing.T) {
	g := &Goal{CompletedDays: []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-05"}}

	if got := g.StreakAt(day("2026-03-03")); got != 3 {
		t.Errorf("Expected streak 3 ending today, got %d", got)
	}
	// Today not done yet, streak still counts through yesterday
	if got := g.StreakAt(day("2026-03-04")); got != 3 {
		t.Errorf("Expected streak 3 ending yesterday, got %d", got)
	}
	if got := g.StreakAt(day("2026-03-05")); got != 1 {
		t.Errorf("Expected streak 1 after a gap, got %d", got)
	}
	if got := g.StreakAt(day("2026-03-08")); got != 0 {
		t.Errorf("Expected streak 0 after two missed days, got %d", got)
	}
}

func TestGoal_Reconcile_BestStreakNeverDecreases(t *testing.T) {
	g := &Goal{
		Streak:        5,
		BestStreak:    5,
		CompletedDays: []string{"2026-03-01"},
	}

	g.Reconcile(day("2026-03-10"))

	if g.Streak != 0 {
		t.Errorf("Expected streak reset to 0, got %d", g.Streak)
	}
	if g.BestStreak != 5 {
		t.Errorf("Expected best streak to stay 5, got %d", g.BestStreak)
	}
}

func TestGoal_ExtendStreak(t *testing.T) {
	g := &Goal{Streak: 40, BestStreak: 40, CompletedDays: []string{"2026-03-09"}}
	g.ExtendStreak(day("2026-03-10"))
	if g.Streak != 41 || g.BestStreak != 41 {
		t.Errorf("Expected streak 41/41, got %d/%d", g.Streak, g.BestStreak)
	}

	// Counter behind the recorded days catches up
	g = &Goal{CompletedDays: []string{"2026-03-08", "2026-03-09"}}
	g.ExtendStreak(day("2026-03-10"))
	if g.Streak != 3 {
		t.Errorf("Expected streak 3, got %d", g.Streak)
	}

	g = &Goal{Streak: 9, BestStreak: 9, CompletedDays: []string{"2026-03-01"}}
	g.ExtendStreak(day("2026-03-10"))
	if g.Streak != 1 || g.BestStreak != 9 {
		t.Errorf("Expected restart at 1 with best 9, got %d/%d", g.Streak, g.BestStreak)
	}
}

func TestGoal_Reconcile_KeepsUnbrokenRun(t *testing.T) {
	g := &Goal{Streak: 50, BestStreak: 50, CompletedDays: []string{"2026-03-09"}}
	g.Reconcile(day("2026-03-10"))
	if g.Streak != 50 {
		t.Errorf("Expected streak 50 kept, got %d", g.Streak)
	}
}

func TestGoal_Clone_NonNilCompletedDays(t *testing.T) {
	c := (&Goal{}).Clone()
	if c.CompletedDays == nil {
		t.Error("Expected empty, non-nil completed days")
	}
}

func TestGoal_PruneCompletedDays(t *testing.T) {
	g := &Goal{CompletedDays: []string{"2026-01-01", "2026-02-20", "2026-03-01"}}

	g.PruneCompletedDays(day("2026-03-05"), 30)

	if len(g.CompletedDays) != 2 {
		t.Fatalf("Expected 2 days kept, got %v", g.CompletedDays)
	}
	if g.CompletedDays[0] != "2026-02-20" {
		t.Errorf("Expected oldest kept day 2026-02-20, got %s", g.CompletedDays[0])
	}
}

func TestGoal_MarkCompleted_IsSet(t *testing.T) {
	g := &Goal{}
	if !g.MarkCompleted("2026-03-01") {
		t.Error("Expected first mark to succeed")
	}
	if g.MarkCompleted("2026-03-01") {
		t.Error("Expected duplicate mark to be rejected")
	}
	if len(g.CompletedDays) != 1 {
		t.Errorf("Expected 1 completed day, got %d", len(g.CompletedDays))
	}
}

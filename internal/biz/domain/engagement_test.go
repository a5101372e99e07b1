package domain

import (
	"encoding/json"
	"testing"
)

func TestEngagementState_AddFavorite(t *testing.T) {
	s := &EngagementState{}
	s.AddFavorite(CategoryFitness)
	s.AddFavorite(CategoryLearning)
	s.AddFavorite(CategoryFitness)

	if len(s.FavoriteCategories) != 2 {
		t.Errorf("Expected 2 favorites, got %v", s.FavoriteCategories)
	}
}

func TestEngagementState_JSONRoundTrip(t *testing.T) {
	s := EngagementState{
		LogsToday:          3,
		TotalActivities:    42,
		StreakDays:         6,
		LastLogTimestamp:   1760000000000,
		FavoriteCategories: []Category{CategoryWellness},
		LastResetDate:      "2026-03-01",
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var loaded EngagementState
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if loaded.StreakDays != 6 || loaded.LogsToday != 3 || loaded.TotalActivities != 42 {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points   int
		want     string
		wantNext string
	}{
		{0, "Beginner", "Explorer"},
		{99, "Beginner", "Explorer"},
		{100, "Explorer", "Tracker"},
		{1500, "Master", "Legend"},
		{9000, "Life Guru", ""},
	}

	for _, tt := range tests {
		level, next := LevelFor(tt.points)
		if level.Name != tt.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.points, level.Name, tt.want)
		}
		gotNext := ""
		if next != nil {
			gotNext = next.Name
		}
		if gotNext != tt.wantNext {
			t.Errorf("LevelFor(%d) next = %q, want %q", tt.points, gotNext, tt.wantNext)
		}
	}
}

func TestCategoriesOf(t *testing.T) {
	batch := []Activity{
		{Category: CategoryFitness, Duration: 30},
		{Category: CategoryLearning, Duration: 20},
		{Category: CategoryFitness, Duration: 10},
	}

	cats := CategoriesOf(batch)
	if len(cats) != 2 || cats[0] != CategoryFitness || cats[1] != CategoryLearning {
		t.Errorf("Unexpected categories: %v", cats)
	}
	if TotalMinutes(batch) != 60 {
		t.Errorf("Expected 60 minutes, got %d", TotalMinutes(batch))
	}
}

// Package export writes the user's LifeStream data as JSON or an xlsx workbook.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Sheet names of the xlsx workbook
const (
	SheetActivities = "Activities"
	SheetGoals      = "Goals"
	SheetSummary    = "Summary"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want json or xlsx)", s)
}

// Write exports snap in the given format
func Write(w io.Writer, snap *domain.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, snap)
	case FormatXLSX:
		return WriteXLSX(w, snap)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteJSON writes the snapshot in its persisted shape, indented
func WriteJSON(w io.Writer, snap *domain.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// WriteXLSX writes activities, goals and engagement counters to separate sheets
func WriteXLSX(w io.Writer, snap *domain.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetActivities); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetGoals, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	activities := [][]interface{}{{"Date", "Time", "Category", "Type", "Minutes", "Intensity", "Mood", "Text"}}
	for _, a := range snap.Activities {
		t := a.Time()
		activities = append(activities, []interface{}{
			domain.DateKey(t), t.Format("15:04"), string(a.Category), a.Type,
			a.Duration, string(a.Intensity), string(a.Mood), a.RawText,
		})
	}

	goals := [][]interface{}{{"Title", "Category", "Target", "Unit", "Period", "Difficulty", "Active", "Streak", "Best Streak", "Completions", "Today"}}
	for _, g := range snap.Goals {
		goals = append(goals, []interface{}{
			g.Title, string(g.Category), g.Target, g.Unit, g.Period, string(g.Difficulty),
			g.IsActive, g.Streak, g.BestStreak, g.TotalCompletions, snap.TodaysProgress[g.ID],
		})
	}

	eng := snap.EngagementState
	level, _ := domain.LevelFor(eng.TotalPoints)
	favorites := make([]string, 0, len(eng.FavoriteCategories))
	for _, c := range eng.FavoriteCategories {
		favorites = append(favorites, string(c))
	}
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Total activities", eng.TotalActivities},
		{"Streak days", eng.StreakDays},
		{"Logs today", eng.LogsToday},
		{"Total points", eng.TotalPoints},
		{"Level", level.Name},
		{"Favorite categories", strings.Join(favorites, ", ")},
		{"Last reset", eng.LastResetDate},
		{"Version", snap.Version},
	}

	for sheet, rows := range map[string][][]interface{}{
		SheetActivities: activities,
		SheetGoals:      goals,
		SheetSummary:    summary,
	} {
		if err := writeRows(f, sheet, rows, header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}

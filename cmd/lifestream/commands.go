package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/export"
	"github.com/lifestream-app/lifestream/internal/logging"
	"github.com/lifestream-app/lifestream/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve LifeStream tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			// stdout carries the protocol
			logging.SetOutput(os.Stderr)
			return mcpserver.NewServer(a.svc, version).Run(cmd.Context())
		},
	}
}

func newStatsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show level, streak and category breakdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(a.svc.Summary(days)))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Window in days")
	return cmd
}

func newGoalsCmd() *cobra.Command {
	goals := &cobra.Command{Use: "goals", Short: "Manage goals"}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List goals with today's progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintln(cmd.OutOrStdout(), renderGoals(a.svc.Goals(all)))
			return nil
		},
	}
	listCmd.Flags().BoolVar(&all, "all", false, "Include removed goals")

	var in struct {
		category   string
		target     float64
		unit       string
		period     string
		difficulty string
	}
	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			goal, err := a.svc.CreateGoal(usecase.GoalInput{
				Title:      args[0],
				Category:   domain.Category(in.category),
				Target:     in.target,
				Unit:       in.unit,
				Period:     in.period,
				Difficulty: domain.Difficulty(in.difficulty),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), kv("Created", fmt.Sprintf("%s (%s)", goal.Title, goal.ID)))
			return nil
		},
	}
	addCmd.Flags().StringVar(&in.category, "category", string(domain.CategoryOther), "Activity category")
	addCmd.Flags().Float64Var(&in.target, "target", 1, "Daily target in the goal's unit")
	addCmd.Flags().StringVar(&in.unit, "unit", domain.UnitActivity, "minutes, hours or activity")
	addCmd.Flags().StringVar(&in.period, "period", "daily", "Period label; progress resets daily")
	addCmd.Flags().StringVar(&in.difficulty, "difficulty", string(domain.DifficultyMedium), "easy, medium or hard")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Deactivate a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.svc.RemoveGoal(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), kv("Removed", args[0]))
			return nil
		},
	}

	goals.AddCommand(listCmd, addCmd, removeCmd)
	return goals
}

func newExportCmd() *cobra.Command {
	var formatName, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export activities, goals and engagement as JSON or xlsx",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			} else if format == export.FormatXLSX {
				return fmt.Errorf("xlsx export needs --output")
			}

			if err := export.Write(w, a.svc.Snapshot(), format); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintln(cmd.ErrOrStderr(), kv("Exported", output))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formatName, "format", string(export.FormatJSON), "json or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lifestream-app/lifestream/internal/biz/usecase"
	"github.com/lifestream-app/lifestream/internal/service"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Log activities interactively",
		Long:  "Type what you did in plain language. Commands: /stats, /goals, /quit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(fmt.Sprintf("LifeStream %s", version)))
			fmt.Fprintln(cmd.OutOrStdout(), labelStyle.Render("Tell me what you did today. /stats, /goals, /quit"))
			return runChat(ctx, a.svc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runChat reads one message per line until EOF, /quit or ctx cancellation
func runChat(ctx context.Context, svc *service.LifeStreamService, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, promptStyle.Render("> "))
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok = <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
		}

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/stats":
			fmt.Fprintln(out, renderSummary(svc.Summary(7)))
			continue
		case "/goals":
			fmt.Fprintln(out, renderGoals(svc.Goals(false)))
			continue
		}

		// A bare Enter is not a message
		if strings.TrimSpace(line) == "" {
			continue
		}
		result, err := svc.HandleMessage(ctx, line)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
			continue
		}
		printResult(out, result)
	}
}

func printResult(out io.Writer, result *usecase.MessageResult) {
	for _, act := range result.Activities {
		fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("  + %s (%s, %d min, %s)", act.Type, act.Category, act.Duration, act.Intensity)))
	}
	for _, c := range result.Completions {
		fmt.Fprintln(out, barStyle.Render(fmt.Sprintf("  ✓ %s completed, +%d points", c.Goal.Title, c.Points)))
	}
	if result.Reply != nil {
		fmt.Fprintln(out, replyStyle.Render(result.Reply.Text))
	}
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petasbytes/turnflow/internal/windowing"
	"github.com/petasbytes/turnflow/memory"
)

const (
	// historyBudget bounds the estimated size of the transcript replayed
	// into the system prompt.
	historyBudget = 8000
	historyTurns  = 10
)

func newChatCmd(flags *globalFlags, opts appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation with a persisted transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, flags, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.chat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func (a *app) chat(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	persisted, err := memory.LoadConversation(a.cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(errOut, "warning: failed to load conversation %s: %v\n", a.cfg.HistoryPath, err)
	}

	inputCh := make(chan string)
	scanner := bufio.NewScanner(in)
	go func() {
		defer close(inputCh)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, "Chat (type exit or Ctrl-C to quit)")
	for {
		fmt.Fprint(out, "\u001b[94mYou\u001b[0m: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nExiting...")
			return nil
		case line, ok = <-inputCh:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
		}
		query := strings.TrimSpace(line)
		switch query {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		window, stats := windowing.PrepareWindow(persisted, historyBudget, windowing.HeuristicCounter{})
		a.logger.Debug("history window",
			"included", stats.IncludedGroups, "skipped", stats.SkippedGroups, "estimate", stats.Total)

		answer, err := a.ask(ctx, query, memory.Summary(window, historyTurns), nil)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\nExiting...")
				return nil
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		if answer != "" {
			fmt.Fprintf(out, "\u001b[93mAssistant\u001b[0m: %s\n", answer)
		}

		persisted = append(persisted, memory.Message{Role: memory.RoleUser, Text: query})
		if err == nil && strings.TrimSpace(answer) != "" {
			persisted = append(persisted, memory.Message{Role: memory.RoleAssistant, Text: answer})
		}
		if err := memory.SaveConversation(a.cfg.HistoryPath, persisted); err != nil {
			fmt.Fprintf(errOut, "warning: failed to save conversation: %v\n", err)
		}
	}
}

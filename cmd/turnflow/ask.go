package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petasbytes/turnflow/internal/orchestrator"
)

func newAskCmd(flags *globalFlags, opts appOptions) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Answer one query, running tools as the model requests them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, flags, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var traceOut io.Writer
			if trace {
				traceOut = cmd.ErrOrStderr()
			}
			text, err := a.ask(ctx, strings.Join(args, " "), "", traceOut)
			if text != "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print every state transition to stderr")
	return cmd
}

// ask runs one conversation and returns its answer. On a token-limit failure
// the partial answer is returned together with the error.
func (a *app) ask(ctx context.Context, query, history string, trace io.Writer) (string, error) {
	run := a.orch.Run(ctx, a.request(query, history))
	for tr, err := range run.All() {
		if err != nil {
			return "", err
		}
		if trace != nil {
			printTransition(trace, tr)
		}
		switch tr.To {
		case orchestrator.StateCompleted:
			if tr.Data.FinalText == nil {
				return "", nil
			}
			return *tr.Data.FinalText, nil
		case orchestrator.StateError:
			var partial string
			if tr.Data.PartialText != nil {
				partial = *tr.Data.PartialText
			}
			if tr.Data.Err == nil {
				return partial, fmt.Errorf("run %s failed", run.ID())
			}
			return partial, tr.Data.Err
		}
	}
	return "", fmt.Errorf("run %s ended without a terminal state", run.ID())
}

func printTransition(w io.Writer, tr orchestrator.Transition) {
	fmt.Fprintf(w, "[%d] %s -> %s (%s)", tr.Iteration, tr.From, tr.To, tr.Trigger)
	for _, tu := range tr.Data.ToolBlocks {
		fmt.Fprintf(w, " %s%s", tu.Name, tu.Input)
	}
	if n := len(tr.Data.ToolResults); n > 0 {
		fmt.Fprintf(w, " results=%d", n)
	}
	if tr.Data.Err != nil {
		fmt.Fprintf(w, " error=%q", tr.Data.Err.Error())
	}
	fmt.Fprintln(w)
}

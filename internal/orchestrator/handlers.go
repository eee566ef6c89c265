package orchestrator

import (
	"context"
	"fmt"

	"github.com/petasbytes/turnflow/internal/llm"
)

// handler performs the entry work of one non-terminal state and returns the
// transition out of it.
type handler func(r *Run, ctx context.Context) (Transition, error)

var handlers = [numStates]handler{
	StateInitial:              (*Run).handleInitial,
	StateAwaitingToolDecision: (*Run).handleToolDecision,
	StateExecutingTools:       (*Run).handleExecutingTools,
	StateAwaitingFollowUp:     (*Run).handleFollowUp,
}

func (r *Run) dispatch(ctx context.Context, s State) (Transition, error) {
	if s < 0 || s >= numStates || handlers[s] == nil {
		return Transition{}, fmt.Errorf("no handler for state %s", s)
	}
	return handlers[s](r, ctx)
}

func (r *Run) handleInitial(ctx context.Context) (Transition, error) {
	resp, err := r.callModel(ctx)
	if err != nil {
		return Transition{}, err
	}
	return Transition{
		From:    StateInitial,
		To:      StateAwaitingToolDecision,
		Trigger: TriggerAPICallComplete,
		Data:    Payload{Response: resp},
	}, nil
}

func (r *Run) handleToolDecision(_ context.Context) (Transition, error) {
	return r.decide(StateAwaitingToolDecision, r.last), nil
}

func (r *Run) handleFollowUp(ctx context.Context) (Transition, error) {
	resp, err := r.callModel(ctx)
	if err != nil {
		return Transition{}, err
	}
	return r.decide(StateAwaitingFollowUp, resp), nil
}

// Classify maps a model response to the next state and trigger. It has no
// side effects.
func Classify(resp *llm.Response) (State, Trigger) {
	if resp == nil {
		return StateError, TriggerUnknownStopReason
	}
	switch resp.StopReason {
	case llm.StopToolUse:
		return StateExecutingTools, TriggerToolUse
	case llm.StopEndTurn:
		return StateCompleted, TriggerEndTurn
	case llm.StopMaxTokens:
		return StateError, TriggerMaxTokens
	default:
		return StateError, TriggerUnknownStopReason
	}
}

// decide builds the transition for a classified response. A tool request
// appends the model's content to the conversation as an assistant turn.
func (r *Run) decide(from State, resp *llm.Response) Transition {
	to, trigger := Classify(resp)
	tr := Transition{From: from, To: to, Trigger: trigger}

	switch trigger {
	case TriggerToolUse:
		r.conv.append(llm.NewAssistantMessage(llm.CloneBlocks(resp.Content)...))
		uses := resp.ToolUses()
		names := make([]string, len(uses))
		for i, u := range uses {
			names[i] = u.Name
		}
		r.o.logger.Debug("tool iteration",
			"run_id", r.id,
			"iteration", r.conv.ToolCallCount()+1,
			"tools", names,
		)
		tr.Data = Payload{Response: resp, ToolBlocks: uses}
	case TriggerEndTurn:
		tr.Data = Payload{Response: resp, FinalText: firstText(resp)}
	case TriggerMaxTokens:
		tr.Data = Payload{
			Err:         &Failure{Kind: FailureTruncated},
			PartialText: firstText(resp),
		}
	default:
		raw := ""
		if resp != nil {
			raw = resp.RawStopReason
			if raw == "" {
				raw = resp.StopReason.String()
			}
		}
		tr.Data = Payload{Err: &Failure{Kind: FailureUnrecognizedStop, StopReason: raw}}
	}
	return tr
}

func firstText(resp *llm.Response) *string {
	text, ok := resp.FirstText()
	if !ok {
		return nil
	}
	return &text
}

// handleExecutingTools runs every tool request of the last response in order
// and returns the results to the model as one user turn.
func (r *Run) handleExecutingTools(ctx context.Context) (Transition, error) {
	uses := r.last.ToolUses()
	if len(uses) > 0 && r.req.Executor == nil {
		return Transition{}, ErrNoToolExecutor
	}

	results := make([]llm.ToolResult, 0, len(uses))
	blocks := make([]llm.ContentBlock, 0, len(uses))
	for _, use := range uses {
		out, err := r.invokeTool(ctx, use)
		if err != nil {
			r.conv.recordToolCall(use.Name, use.Input, "error: "+err.Error())
			return Transition{}, fmt.Errorf("tool %q: %w", use.Name, err)
		}
		r.conv.recordToolCall(use.Name, use.Input, out)
		results = append(results, llm.ToolResult{ToolUseID: use.ID, Content: out})
		blocks = append(blocks, llm.ToolResultBlock(use.ID, out, false))
	}
	if len(blocks) > 0 {
		r.conv.append(llm.NewUserMessage(blocks...))
	}

	return Transition{
		From:    StateExecutingTools,
		To:      StateAwaitingFollowUp,
		Trigger: TriggerToolsExecuted,
		Data:    Payload{ToolResults: results},
	}, nil
}

// invokeTool runs one tool call off the driving goroutine and waits for it or
// for ctx to end.
func (r *Run) invokeTool(ctx context.Context, use llm.ToolUse) (string, error) {
	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", p)}
			}
		}()
		out, err := r.req.Executor.Execute(ctx, use.Name, use.Input)
		done <- outcome{out: out, err: err}
	}()

	select {
	case o := <-done:
		return o.out, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/petasbytes/turnflow/internal/llm"
	"github.com/petasbytes/turnflow/internal/metrics"
	"github.com/petasbytes/turnflow/internal/prompt"
	"github.com/petasbytes/turnflow/internal/telemetry"
	"github.com/petasbytes/turnflow/internal/toolexec"
)

const (
	DefaultMaxIterations       = 10
	DefaultMaxTokens     int64 = 800
)

// Config holds the per-orchestrator model settings.
type Config struct {
	// Provider labels metrics; it does not select the client.
	Provider      string
	Model         string
	Temperature   float64
	MaxTokens     int64
	MaxIterations int
	// SystemPrompt replaces prompt.Base when set.
	SystemPrompt string
	Logger       *slog.Logger
	Metrics      *metrics.Collectors
}

// Orchestrator runs conversations against one model client. It holds no
// per-run state and may start any number of runs.
type Orchestrator struct {
	client llm.Client
	cfg    Config
	logger *slog.Logger
}

func New(client llm.Client, cfg Config) *Orchestrator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = prompt.Base
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{client: client, cfg: cfg, logger: logger}
}

// Request describes one run.
type Request struct {
	Query string
	// History is a summary of earlier conversation appended to the system prompt.
	History string
	Tools   []llm.ToolDeclaration
	// Executor runs tool calls. It may be nil when Tools is empty.
	Executor toolexec.Executor
	// MaxIterations overrides Config.MaxIterations when positive.
	MaxIterations int
	Metadata      map[string]any
}

// Run is a single conversation. Its transitions are produced lazily by All.
type Run struct {
	o     *Orchestrator
	ctx   context.Context
	id    string
	req   Request
	conv  *Conversation
	limit int

	last     *llm.Response
	consumed bool
}

// Run prepares a conversation without contacting the model. Nothing happens
// until the caller iterates All.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Run {
	limit := req.MaxIterations
	if limit <= 0 {
		limit = o.cfg.MaxIterations
	}
	id := telemetry.NewRunID()
	return &Run{
		o:     o,
		ctx:   telemetry.WithRunID(ctx, id),
		id:    id,
		req:   req,
		conv:  newConversation(req.Query, prompt.System(o.cfg.SystemPrompt, req.History), req.Metadata),
		limit: limit,
	}
}

func (r *Run) ID() string { return r.id }

// Conversation exposes the run's state. Read it between pulls or after the
// sequence ends.
func (r *Run) Conversation() *Conversation { return r.conv }

// All returns the run's transitions in order. The sequence ends after a
// terminal transition or after the first error; the error is yielded with a
// zero Transition. Breaking out of the range loop abandons the run.
//
// The sequence can be consumed once. Later calls yield ErrRunConsumed.
func (r *Run) All() iter.Seq2[Transition, error] {
	return func(yield func(Transition, error) bool) {
		if r.consumed {
			yield(Transition{}, ErrRunConsumed)
			return
		}
		r.consumed = true
		r.drive(yield)
	}
}

func (r *Run) drive(yield func(Transition, error) bool) {
	ctx := r.ctx
	telemetry.EmitRunStarted(ctx, r.req.Query, r.req.History, len(r.req.Tools))

	outcome := "failed"
	defer func() { r.o.cfg.Metrics.ObserveRun(outcome) }()

	state := StateInitial
	for iteration := 1; iteration <= r.limit; iteration++ {
		tr, err := r.dispatch(ctx, state)
		if err != nil {
			yield(Transition{}, fmt.Errorf("%s: %w", state, err))
			return
		}
		tr.Iteration = iteration
		r.observe(ctx, tr)

		// The consumer may modify what it is yielded.
		last := tr.Data.Response.Clone()
		if !yield(tr, nil) {
			outcome = "abandoned"
			return
		}
		if tr.To.Terminal() {
			outcome = outcomeOf(tr.To)
			return
		}
		state = tr.To
		if last != nil {
			r.last = last
		}
	}

	tr := Transition{
		From:      state,
		To:        StateError,
		Trigger:   TriggerMaxIterationsExceeded,
		Iteration: r.limit,
		Data: Payload{
			Err: &Failure{Kind: FailureIterationsExhausted, MaxIterations: r.limit},
		},
	}
	r.observe(ctx, tr)
	outcome = outcomeOf(tr.To)
	yield(tr, nil)
}

func outcomeOf(s State) string {
	if s == StateCompleted {
		return "completed"
	}
	return "error"
}

func (r *Run) observe(ctx context.Context, tr Transition) {
	r.o.logger.DebugContext(ctx, "transition",
		"run_id", r.id,
		"from", tr.From.String(),
		"to", tr.To.String(),
		"trigger", string(tr.Trigger),
		"iteration", tr.Iteration,
	)
	r.o.cfg.Metrics.ObserveTransition(tr.From.String(), tr.To.String(), string(tr.Trigger))
	telemetry.Emit("transition", map[string]any{
		"run_id":     r.id,
		"from":       tr.From.String(),
		"to":         tr.To.String(),
		"trigger":    string(tr.Trigger),
		"iteration":  tr.Iteration,
		"tool_calls": r.conv.ToolCallCount(),
	})
}

// callModel sends the full conversation to the model service.
func (r *Run) callModel(ctx context.Context) (*llm.Response, error) {
	req := llm.Request{
		Model:       r.o.cfg.Model,
		Temperature: r.o.cfg.Temperature,
		MaxTokens:   r.o.cfg.MaxTokens,
		System:      r.conv.systemPrompt,
		Messages:    r.conv.Messages(),
	}
	if len(r.req.Tools) > 0 {
		req.Tools = r.req.Tools
		req.ToolChoice = llm.ToolChoiceAuto
	}

	start := time.Now()
	resp, err := r.o.client.CreateMessage(ctx, req)
	r.o.cfg.Metrics.ObserveModelCall(r.o.cfg.Provider, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	if resp == nil {
		return nil, errors.New("model call: empty response")
	}
	return resp, nil
}

// Result is the outcome of Complete.
type Result struct {
	RunID string
	// FinalText is nil when the model completed without a text block.
	FinalText *string
	// PartialText is set when the model stopped at the token limit.
	PartialText *string
	Transitions []Transition
	ToolCalls   []ToolCall
	Messages    []llm.Message
}

// Text returns the final answer, or "" when there is none.
func (r *Result) Text() string {
	if r == nil || r.FinalText == nil {
		return ""
	}
	return *r.FinalText
}

// Complete drives a run to its end. An ERROR terminal returns the Result
// together with its *Failure; a port error returns a nil Result.
func (o *Orchestrator) Complete(ctx context.Context, req Request) (*Result, error) {
	run := o.Run(ctx, req)
	res := &Result{RunID: run.ID()}
	var failure error
	for tr, err := range run.All() {
		if err != nil {
			return nil, err
		}
		res.Transitions = append(res.Transitions, tr)
		switch tr.To {
		case StateCompleted:
			res.FinalText = tr.Data.FinalText
		case StateError:
			res.PartialText = tr.Data.PartialText
			if tr.Data.Err != nil {
				failure = tr.Data.Err
			}
		}
	}
	res.ToolCalls = run.conv.ToolCallHistory()
	res.Messages = run.conv.Messages()
	return res, failure
}

package orchestrator

import "github.com/petasbytes/turnflow/internal/llm"

// Trigger names why a transition happened.
type Trigger string

const (
	TriggerAPICallComplete       Trigger = "api_call_complete"
	TriggerToolUse               Trigger = "tool_use"
	TriggerEndTurn               Trigger = "end_turn"
	TriggerMaxTokens             Trigger = "max_tokens"
	TriggerUnknownStopReason     Trigger = "unknown_stop_reason"
	TriggerToolsExecuted         Trigger = "tools_executed"
	TriggerMaxIterationsExceeded Trigger = "max_iterations_exceeded"
)

// Payload carries trigger-specific data. Fields not listed for a trigger are zero:
//
//	api_call_complete        Response
//	tool_use                 Response, ToolBlocks
//	end_turn                 Response, FinalText
//	max_tokens               Err, PartialText
//	unknown_stop_reason      Err
//	tools_executed           ToolResults
//	max_iterations_exceeded  Err
//
// FinalText and PartialText are nil when the response had no text block.
type Payload struct {
	Response    *llm.Response
	ToolBlocks  []llm.ToolUse
	ToolResults []llm.ToolResult
	FinalText   *string
	PartialText *string
	Err         *Failure
}

// Transition records one step of a run. It is not modified after being yielded.
type Transition struct {
	From      State
	To        State
	Trigger   Trigger
	Iteration int
	Data      Payload
}

// Package orchestrator drives a tool-using conversation with a model service
// as a finite-state machine.
//
// States and transitions:
//
//	INITIAL --api_call_complete--> AWAITING_TOOL_DECISION
//	AWAITING_TOOL_DECISION --tool_use--> EXECUTING_TOOLS
//	AWAITING_TOOL_DECISION --end_turn--> COMPLETED
//	AWAITING_TOOL_DECISION --max_tokens|unknown_stop_reason--> ERROR
//	EXECUTING_TOOLS --tools_executed--> AWAITING_FOLLOW_UP
//	AWAITING_FOLLOW_UP --tool_use|end_turn|max_tokens|unknown_stop_reason--> ...
//	any non-terminal --max_iterations_exceeded--> ERROR
//
// Invariants:
//   - Every dispatched state costs one unit of the iteration budget, so a tool
//     round (EXECUTING_TOOLS then AWAITING_FOLLOW_UP) costs two.
//   - Tools from one model response run one at a time in emission order, and
//     their results go back to the model as a single user turn.
//   - Transitions are produced only as the caller pulls them.
package orchestrator

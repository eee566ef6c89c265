package orchestrator

import "fmt"

// State identifies a node of the conversation state machine.
type State int

const (
	StateInitial State = iota
	StateAwaitingToolDecision
	StateExecutingTools
	StateAwaitingFollowUp
	StateCompleted
	StateError

	numStates
)

var stateNames = [numStates]string{
	StateInitial:              "INITIAL",
	StateAwaitingToolDecision: "AWAITING_TOOL_DECISION",
	StateExecutingTools:       "EXECUTING_TOOLS",
	StateAwaitingFollowUp:     "AWAITING_FOLLOW_UP",
	StateCompleted:            "COMPLETED",
	StateError:                "ERROR",
}

func (s State) String() string {
	if s < 0 || s >= numStates {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether a run stops in s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToolExecutor is returned when the model requests tools but the
	// request carried no executor.
	ErrNoToolExecutor = errors.New("model requested tools but no executor is configured")

	// ErrRunConsumed is yielded when a Run's transitions are iterated twice.
	ErrRunConsumed = errors.New("run already consumed")
)

// FailureKind classifies terminal ERROR outcomes.
type FailureKind int

const (
	FailureTruncated FailureKind = iota + 1
	FailureUnrecognizedStop
	FailureIterationsExhausted
)

// Failure is the error carried by an ERROR transition.
type Failure struct {
	Kind FailureKind
	// StopReason is the raw provider value for FailureUnrecognizedStop.
	StopReason string
	// MaxIterations is the exhausted cap for FailureIterationsExhausted.
	MaxIterations int
}

func (f *Failure) Error() string {
	switch f.Kind {
	case FailureTruncated:
		return "Token limit reached"
	case FailureUnrecognizedStop:
		return "Unexpected stop_reason: " + f.StopReason
	case FailureIterationsExhausted:
		return fmt.Sprintf("Exceeded %d iterations without completion", f.MaxIterations)
	default:
		return "orchestration failed"
	}
}

package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlers_CoverEveryNonTerminalState(t *testing.T) {
	for s := State(0); s < numStates; s++ {
		if s.Terminal() {
			require.Nil(t, handlers[s], "terminal state %s must not have a handler", s)
			continue
		}
		require.NotNil(t, handlers[s], "state %s has no handler", s)
	}
}

func TestDispatch_RejectsTerminalState(t *testing.T) {
	r := &Run{}
	_, err := r.dispatch(context.Background(), StateCompleted)
	require.ErrorContains(t, err, "no handler for state COMPLETED")
}

package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/turnflow/internal/metrics"
	"github.com/petasbytes/turnflow/tools"
)

func TestBuiltin_ToolNames(t *testing.T) {
	fs, _ := newWorkspace(t)
	r := tools.NewRegistry(nil, tools.Builtin(fs)...)

	var names []string
	for _, d := range r.Declarations() {
		names = append(names, d.Name)
		require.NotEmpty(t, d.Description)
		require.Equal(t, "object", d.InputSchema["type"])
	}
	require.Equal(t, []string{"read_file", "list_files"}, names)
	require.Len(t, r.Definitions(), 2)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	d := tools.ToolDefinition{Name: "echo"}
	require.Panics(t, func() { tools.NewRegistry(nil, d, d) })
}

func echo(input json.RawMessage) (string, error) { return string(input), nil }

func TestRegistry_Execute(t *testing.T) {
	m := metrics.NewCollectors(prometheus.NewRegistry())
	r := tools.NewRegistry(m,
		tools.ToolDefinition{Name: "echo", Function: echo},
		tools.ToolDefinition{Name: "fail", Function: func(json.RawMessage) (string, error) {
			return "", errors.New("backend down")
		}},
	)
	ctx := context.Background()

	out, err := r.Execute(ctx, "echo", json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	require.Equal(t, `{"x":1}`, out)

	out, err = r.Execute(ctx, "fail", nil)
	require.NoError(t, err, "handler errors become result text")
	require.Equal(t, "error: backend down", out)

	out, err = r.Execute(ctx, "nope", nil)
	require.NoError(t, err)
	require.Equal(t, "tool not found: nope", out)

	require.Equal(t, 1.0, testutil.ToFloat64(m.ToolExecutions.WithLabelValues("echo", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ToolExecutions.WithLabelValues("fail", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ToolExecutions.WithLabelValues("nope", "error")))
}

func TestRegistry_CancelledContext(t *testing.T) {
	called := false
	r := tools.NewRegistry(nil, tools.ToolDefinition{Name: "echo", Function: func(in json.RawMessage) (string, error) {
		called = true
		return "", nil
	}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Execute(ctx, "echo", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestGenerateSchema_Inline(t *testing.T) {
	type nested struct {
		Name string `json:"name"`
	}
	type input struct {
		Query string `json:"query" jsonschema_description:"What to search for."`
		Inner nested `json:"inner,omitempty"`
	}
	schema := tools.GenerateSchema[input]()
	require.Equal(t, "object", schema["type"])
	require.Equal(t, false, schema["additionalProperties"])
	require.NotContains(t, schema, "$defs")

	props := schema["properties"].(map[string]any)
	query := props["query"].(map[string]any)
	require.Equal(t, "What to search for.", query["description"])
	require.Equal(t, "object", props["inner"].(map[string]any)["type"])
}

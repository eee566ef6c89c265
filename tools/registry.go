package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petasbytes/turnflow/internal/fsops"
	"github.com/petasbytes/turnflow/internal/llm"
	"github.com/petasbytes/turnflow/internal/metrics"
	"github.com/petasbytes/turnflow/internal/telemetry"
	"github.com/petasbytes/turnflow/internal/toolexec"
)

// Builtin returns the file tools bound to fs.
func Builtin(fs *fsops.FS) []ToolDefinition {
	return []ToolDefinition{ReadFileDefinition(fs), ListFilesDefinition(fs)}
}

// Registry serves a fixed set of definitions through the executor port.
type Registry struct {
	defs    []ToolDefinition
	byName  map[string]int
	metrics *metrics.Collectors
}

var _ toolexec.Catalog = (*Registry)(nil)

// NewRegistry panics on duplicate names. m may be nil.
func NewRegistry(m *metrics.Collectors, defs ...ToolDefinition) *Registry {
	r := &Registry{byName: make(map[string]int, len(defs)), metrics: m}
	for _, d := range defs {
		if _, dup := r.byName[d.Name]; dup {
			panic(fmt.Sprintf("tools: duplicate tool %q", d.Name))
		}
		r.byName[d.Name] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r
}

func (r *Registry) Definitions() []ToolDefinition {
	out := make([]ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

func (r *Registry) Declarations() []llm.ToolDeclaration {
	out := make([]llm.ToolDeclaration, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.Declaration()
	}
	return out
}

// Execute runs the named tool. Handler failures are returned to the model as
// result text, so the error return is reserved for a cancelled ctx.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	runID, _ := telemetry.RunIDFromContext(ctx)
	start := time.Now()

	emit := func(outSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   name,
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  len(input),
			"output_size": outSize,
			"run_id":      runID,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		telemetry.Emit("tool_exec", fields)
		r.metrics.ObserveTool(name, errStr != "")
	}

	i, ok := r.byName[name]
	if !ok {
		emit(0, "tool not found")
		return "tool not found: " + name, nil
	}

	out, err := r.defs[i].Function(input)
	if err != nil {
		// Telemetry gets a generic marker; the model gets the detail.
		emit(0, "tool error")
		return "error: " + err.Error(), nil
	}
	emit(len(out), "")
	return out, nil
}

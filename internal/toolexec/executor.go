// Package toolexec defines the tool executor port and composes executors.
package toolexec

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/petasbytes/turnflow/internal/llm"
)

// Executor runs one named tool. Implementations may block on their own I/O.
// A returned error is fatal for the run; tool-level failures the model should
// see belong in the result string.
type Executor interface {
	Execute(ctx context.Context, name string, input json.RawMessage) (string, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, name string, input json.RawMessage) (string, error)

func (f ExecutorFunc) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	return f(ctx, name, input)
}

// Catalog is an Executor that can also describe the tools it serves.
type Catalog interface {
	Executor
	Declarations() []llm.ToolDeclaration
}

// Router dispatches by tool name across several catalogs. The first catalog
// declaring a name wins.
type Router struct {
	routes map[string]Executor
	decls  []llm.ToolDeclaration
	logger *slog.Logger
}

// NewRouter indexes the declarations of each catalog in order.
func NewRouter(logger *slog.Logger, catalogs ...Catalog) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{routes: make(map[string]Executor), logger: logger}
	for _, c := range catalogs {
		for _, d := range c.Declarations() {
			if _, exists := r.routes[d.Name]; exists {
				logger.Warn("duplicate tool name, using first provider", "tool", d.Name)
				continue
			}
			r.routes[d.Name] = c
			r.decls = append(r.decls, d)
		}
	}
	return r
}

// Declarations returns the merged tool declarations in registration order.
func (r *Router) Declarations() []llm.ToolDeclaration {
	out := make([]llm.ToolDeclaration, len(r.decls))
	copy(out, r.decls)
	return out
}

// Execute routes the call. Unknown tools produce a result string rather than
// an error so the model can recover.
func (r *Router) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	ex, ok := r.routes[name]
	if !ok {
		r.logger.Warn("tool not found", "tool", name)
		return fmt.Sprintf("tool not found: %s", name), nil
	}
	return ex.Execute(ctx, name, input)
}

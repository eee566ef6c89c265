// Package telemetry writes privacy-preserving JSONL events for orchestration runs.
//
// Events go to <ArtifactsDir>/events.jsonl when AGT_OBSERVE_JSON=1. Fields carry
// sizes, names and IDs only; raw prompts, tool inputs and outputs are never written.
package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/petasbytes/turnflow/internal/metrics"
)

var mu sync.Mutex

// Emit writes a single JSON line to events.jsonl when observation is enabled.
// It augments fields with RFC3339Nano time and the event name.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}
	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		slog.Warn("telemetry: marshal", "event", name, "error", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()

	dir := ArtifactsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("telemetry: mkdir", "dir", dir, "error", err)
		return
	}
	path := filepath.Join(dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("telemetry: open", "path", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		slog.Warn("telemetry: write", "path", path, "error", err)
	}
}

// EmitRunStarted records the shape of a new run: text features of the query and
// prior-conversation summary, and the number of declared tools.
func EmitRunStarted(ctx context.Context, query, history string, tools int) {
	if !ObserveEnabled() {
		return
	}
	runID, _ := RunIDFromContext(ctx)
	Emit("run_started", map[string]any{
		"run_id":  runID,
		"query":   metrics.CountFeatures(query),
		"history": metrics.CountFeatures(history),
		"tools":   tools,
	})
}

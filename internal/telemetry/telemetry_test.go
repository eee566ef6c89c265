package telemetry_test

import (
	"bufio"
	"context"
	"encoding/json"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/petasbytes/turnflow/internal/telemetry"
)

// observeInto enables emission into a fresh artifacts dir and returns it.
func observeInto(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AGT_ARTIFACTS_DIR", dir)
	t.Setenv("AGT_OBSERVE_JSON", "1")
	return dir
}

func readEvents(t *testing.T, dir string) []map[string]any {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var out []map[string]any
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

// Run in a subprocess so the startup-evaluated flag sees AGT_OBSERVE_JSON=0.
func TestEmit_Gating(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command(os.Args[0], "-test.run=TestEmitGatingProbe")
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=1",
		"AGT_OBSERVE_JSON=0",
		"AGT_ARTIFACTS_DIR="+dir,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("subprocess error: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "no_file=true") {
		t.Fatalf("expected no_file=true, got output:\n%s", out)
	}
}

func TestEmitGatingProbe(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	telemetry.Emit("test_event", map[string]any{"foo": "bar"})
	if _, err := os.Stat(filepath.Join(telemetry.ArtifactsDir(), "events.jsonl")); os.IsNotExist(err) {
		println("no_file=true")
	} else {
		println("no_file=false")
	}
}

func TestEmit_HappyPath(t *testing.T) {
	dir := observeInto(t)

	telemetry.Emit("test_event", map[string]any{"foo": "bar", "num": 42})

	events := readEvents(t, dir)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e["event"] != "test_event" || e["foo"] != "bar" || e["num"] != float64(42) {
		t.Fatalf("unexpected event: %#v", e)
	}
	ts, ok := e["time"].(string)
	if !ok {
		t.Fatal("expected time field as string")
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Errorf("time field not valid RFC3339Nano: %v", err)
	}
}

func TestEmit_AppendsInOrder(t *testing.T) {
	dir := observeInto(t)
	for _, name := range []string{"event1", "event2", "event3"} {
		telemetry.Emit(name, nil)
	}
	events := readEvents(t, dir)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []string{"event1", "event2", "event3"} {
		if events[i]["event"] != want {
			t.Errorf("line %d: want %s, got %v", i+1, want, events[i]["event"])
		}
	}
}

func TestEmit_MapIsolation(t *testing.T) {
	observeInto(t)
	fields := map[string]any{"key": "value"}
	telemetry.Emit("test", fields)
	if len(fields) != 1 || fields["key"] != "value" {
		t.Fatalf("caller map mutated: %#v", fields)
	}
}

func TestEmit_MarshalErrorWritesNothing(t *testing.T) {
	dir := observeInto(t)
	telemetry.Emit("bad", map[string]any{"x": math.NaN()})
	if _, err := os.Stat(filepath.Join(dir, "events.jsonl")); !os.IsNotExist(err) {
		t.Fatalf("expected no events file on marshal error, got err=%v", err)
	}
}

func TestEmit_ReadOnlyFileDoesNotPanic(t *testing.T) {
	dir := observeInto(t)
	path := filepath.Join(dir, "events.jsonl")
	if err := os.WriteFile(path, nil, 0o444); err != nil {
		t.Fatal(err)
	}
	telemetry.Emit("x", map[string]any{"a": 1})
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if os.Geteuid() != 0 && fi.Size() != 0 {
		t.Fatalf("expected read-only file to stay empty, got %d bytes", fi.Size())
	}
}

func TestEmitRunStarted_FeaturesOnly(t *testing.T) {
	dir := observeInto(t)
	ctx := telemetry.WithRunID(context.Background(), "run-xyz")
	query := "What is the secret plan?"

	telemetry.EmitRunStarted(ctx, query, "", 2)

	raw, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), query) {
		t.Fatalf("raw query leaked into telemetry: %s", raw)
	}
	e := readEvents(t, dir)[0]
	if e["event"] != "run_started" || e["run_id"] != "run-xyz" || e["tools"] != float64(2) {
		t.Fatalf("unexpected event: %#v", e)
	}
	q, ok := e["query"].(map[string]any)
	if !ok {
		t.Fatalf("query features missing: %#v", e["query"])
	}
	if q["words"] != float64(5) || q["lines"] != float64(1) {
		t.Fatalf("query features mismatch: %#v", q)
	}
	h := e["history"].(map[string]any)
	if h["bytes"] != float64(0) {
		t.Fatalf("empty history should count zero bytes: %#v", h)
	}
}

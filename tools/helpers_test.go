package tools_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petasbytes/turnflow/internal/fsops"
	"github.com/petasbytes/turnflow/internal/safety"
)

// newWorkspace returns a sandboxed FS over a fresh temp dir and its root.
func newWorkspace(t *testing.T) (*fsops.FS, string) {
	t.Helper()
	sb, err := safety.NewSandbox(t.TempDir())
	require.NoError(t, err)
	return fsops.New(sb), sb.Root()
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

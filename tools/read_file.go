package tools

import (
	"encoding/json"
	"strings"

	"github.com/petasbytes/turnflow/internal/fsops"
)

type ReadFileInput struct {
	Path   string `json:"path" jsonschema_description:"Relative file path."`
	Offset int    `json:"offset,omitempty" jsonschema_description:"Line offset (0-based) to start reading from."`
	Limit  int    `json:"limit,omitempty" jsonschema_description:"Maximum lines to return from offset (default 200)."`
}

const (
	defaultReadFileLimit = 200
	maxLineRunes         = 2000
	maxResultRunes       = 12_000
	truncationSentinel   = "-- truncated; use offset/limit to fetch more --\n"
)

var ReadFileInputSchema = GenerateSchema[ReadFileInput]()

func ReadFileDefinition(fs *fsops.FS) ToolDefinition {
	return ToolDefinition{
		Name:        "read_file",
		Description: "Read a file addressed by a relative path within the workspace, a page of lines at a time. Directories and paths outside the workspace are rejected.",
		InputSchema: ReadFileInputSchema,
		Function: func(input json.RawMessage) (string, error) {
			return readFile(fs, input)
		},
	}
}

// readFile returns lines [offset, offset+limit) of the file. Long lines and
// long results are clamped; any cut appends truncationSentinel.
func readFile(fs *fsops.FS, input json.RawMessage) (string, error) {
	var in ReadFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(in.Path)
	if err != nil {
		return "", err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultReadFileLimit
	}
	lines := strings.Split(content, "\n")
	start := min(max(in.Offset, 0), len(lines))
	end := start + min(limit, len(lines)-start)

	window := lines[start:end]
	truncated := end < len(lines)
	for i, line := range window {
		if clamped, cut := clampRunes(line, maxLineRunes); cut {
			window[i] = clamped
			truncated = true
		}
	}

	out := strings.Join(window, "\n")
	if clamped, cut := clampRunes(out, maxResultRunes); cut {
		out = clamped
		truncated = true
	}
	if truncated {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += truncationSentinel
	}
	return out, nil
}

func clampRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}

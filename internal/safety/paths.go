// Package safety confines file tools to a sandbox directory.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ToolError is a policy violation. Its Error text is compact JSON so the
// model receives a machine-readable code.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

const (
	CodeOutsideSandbox = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead     = "ERR_DENIED_READ"
	CodeNotAFile       = "ERR_NOT_A_FILE"
	CodeNotADirectory  = "ERR_NOT_A_DIRECTORY"
)

// deniedDirs are never readable, even inside the sandbox.
var deniedDirs = []string{".git", ".agent"}

// Sandbox is an absolute, symlink-resolved root directory.
type Sandbox struct {
	root string
}

// NewSandbox resolves root, which must be an existing directory; an empty
// root means the working directory.
func NewSandbox(root string) (*Sandbox, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("abs(%s): %w", root, err)
	}
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("sandbox root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("sandbox root %s is not a directory", abs)
	}
	return &Sandbox{root: abs}, nil
}

func (s *Sandbox) Root() string { return s.root }

// Resolve maps relPath to an absolute path inside the sandbox. Absolute
// inputs, parent traversal and symlinks leading out of the root are rejected,
// as is anything under a denied directory.
func (s *Sandbox) Resolve(relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", ToolError{Code: CodeOutsideSandbox, Message: "absolute paths are not allowed"}
	}
	if relPath == "" {
		relPath = "."
	}
	candidate := filepath.Join(s.root, filepath.Clean(relPath))

	// Resolve the full path, or failing that its parent, so a symlinked
	// ancestor cannot hide an escape.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if parent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(parent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(s.root, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", ToolError{Code: CodeOutsideSandbox, Message: "requested path resolves outside the sandbox root"}
	}

	slashed := filepath.ToSlash(rel)
	for _, d := range deniedDirs {
		if slashed == d || strings.HasPrefix(slashed, d+"/") {
			return "", ToolError{Code: CodeDeniedRead, Message: "reads under " + d + "/ are not allowed"}
		}
	}
	return candidate, nil
}

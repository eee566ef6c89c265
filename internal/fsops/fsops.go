// Package fsops performs read-only file operations through a safety.Sandbox.
package fsops

import (
	"os"

	"github.com/petasbytes/turnflow/internal/safety"
)

// FS reads files under one sandbox root.
type FS struct {
	sb *safety.Sandbox
}

func New(sb *safety.Sandbox) *FS {
	return &FS{sb: sb}
}

// ReadFile returns the content of the file at relPath. Policy violations
// come back as safety.ToolError; I/O failures are returned as-is.
func (f *FS) ReadFile(relPath string) (string, error) {
	abs, err := f.sb.Resolve(relPath)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", safety.ToolError{Code: safety.CodeNotAFile, Message: "path is a directory"}
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListDir returns the non-recursive entry names of relDir. Directories carry
// a trailing "/". An empty relDir lists the sandbox root.
func (f *FS) ListDir(relDir string) ([]string, error) {
	abs, err := f.sb.Resolve(relDir)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, safety.ToolError{Code: safety.CodeNotADirectory, Message: "path is not a directory"}
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}

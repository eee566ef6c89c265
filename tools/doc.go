// Package tools defines the built-in tool contract and the sandboxed file tools.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive a JSON Schema object from a Go struct.
//   - Registry: serves definitions through the executor port with telemetry.
//   - File tools: read_file (paged), list_files (non-recursive, paged).
package tools

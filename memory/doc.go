// Package memory persists chat transcripts between runs.
//
// Persistence model:
//   - Only text turns are stored (role + text). Tool blocks stay inside a run.
//   - Summary renders the newest exchanges as plain text for the system prompt.
package memory

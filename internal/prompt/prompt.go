// Package prompt holds the static instructions sent as the system prompt.
package prompt

// Base is the default instruction text. It is fixed for the life of a process;
// only the previous-conversation section varies per run.
const Base = `You are an assistant with access to tools.

Tool usage:
- Use a tool only when the question needs information you do not already have.
- Call tools one step at a time when a later call depends on an earlier result.
- If a tool returns no useful result, say so plainly instead of guessing.

Response protocol:
- Answer general knowledge questions directly without tools.
- Give the direct answer only. Do not describe your reasoning or which tools you used.

All responses must be brief, accurate and clear.
`

// System returns base followed by a "Previous conversation" section when
// history is non-empty.
func System(base, history string) string {
	if history == "" {
		return base
	}
	return base + "\n\nPrevious conversation:\n" + history
}

package orchestrator

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/petasbytes/turnflow/internal/llm"
)

// ToolCall is one audit entry of an executed tool invocation.
type ToolCall struct {
	Index     int
	ToolName  string
	Input     json.RawMessage
	Result    string
	Timestamp time.Time
}

// Conversation is the state of a single run. Only the run mutates it; the
// accessors return copies.
//
// Invariant: ToolCallCount() == len(ToolCallHistory()).
type Conversation struct {
	messages        []llm.Message
	systemPrompt    string
	toolCallHistory []ToolCall
	metadata        map[string]any
}

func newConversation(query, systemPrompt string, metadata map[string]any) *Conversation {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Conversation{
		messages:     []llm.Message{llm.NewUserMessage(llm.TextBlock(query))},
		systemPrompt: systemPrompt,
		metadata:     metadata,
	}
}

// Messages returns a deep copy of the history.
func (c *Conversation) Messages() []llm.Message {
	return llm.CloneMessages(c.messages)
}

func (c *Conversation) SystemPrompt() string { return c.systemPrompt }

func (c *Conversation) ToolCallCount() int { return len(c.toolCallHistory) }

func (c *Conversation) ToolCallHistory() []ToolCall {
	out := make([]ToolCall, len(c.toolCallHistory))
	for i, call := range c.toolCallHistory {
		call.Input = slices.Clone(call.Input)
		out[i] = call
	}
	return out
}

// Metadata is the caller-supplied map, passed through untouched.
func (c *Conversation) Metadata() map[string]any { return c.metadata }

func (c *Conversation) append(m llm.Message) {
	c.messages = append(c.messages, m)
}

func (c *Conversation) recordToolCall(name string, input json.RawMessage, result string) ToolCall {
	call := ToolCall{
		Index:     len(c.toolCallHistory) + 1,
		ToolName:  name,
		Input:     slices.Clone(input),
		Result:    result,
		Timestamp: time.Now(),
	}
	c.toolCallHistory = append(c.toolCallHistory, call)
	return call
}

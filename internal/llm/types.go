package llm

import (
	"context"
	"encoding/json"
	"slices"
)

// Role tags a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason is the normalized reason a model stopped generating.
type StopReason int

const (
	StopOther StopReason = iota
	StopToolUse
	StopEndTurn
	StopMaxTokens
)

func (s StopReason) String() string {
	switch s {
	case StopToolUse:
		return "tool_use"
	case StopEndTurn:
		return "end_turn"
	case StopMaxTokens:
		return "max_tokens"
	default:
		return "other"
	}
}

// BlockKind discriminates ContentBlock variants.
type BlockKind int

const (
	BlockText BlockKind = iota + 1
	BlockToolUse
	BlockToolResult
)

// ToolUse is a model request to invoke a named tool.
// ID correlates the request with its ToolResult.
type ToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult carries the output of one ToolUse back to the model.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// ContentBlock is a tagged variant; only the field matching Kind is set.
type ContentBlock struct {
	Kind       BlockKind
	Text       string
	ToolUse    *ToolUse
	ToolResult *ToolResult
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

func ToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Kind: BlockToolUse, ToolUse: &ToolUse{ID: id, Name: name, Input: input}}
}

func ToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Kind: BlockToolResult, ToolResult: &ToolResult{ToolUseID: toolUseID, Content: content, IsError: isError}}
}

// Clone returns a copy that shares no memory with u.
func (u ToolUse) Clone() ToolUse {
	u.Input = slices.Clone(u.Input)
	return u
}

// Clone returns a copy of b with its variant payload copied.
func (b ContentBlock) Clone() ContentBlock {
	if b.ToolUse != nil {
		u := b.ToolUse.Clone()
		b.ToolUse = &u
	}
	if b.ToolResult != nil {
		r := *b.ToolResult
		b.ToolResult = &r
	}
	return b
}

// CloneBlocks deep-copies blocks.
func CloneBlocks(blocks []ContentBlock) []ContentBlock {
	if blocks == nil {
		return nil
	}
	out := make([]ContentBlock, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// Message is one role-tagged conversation entry.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// Clone returns a copy of m whose content can be modified independently.
func (m Message) Clone() Message {
	m.Content = CloneBlocks(m.Content)
	return m
}

// CloneMessages deep-copies msgs.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

func NewUserMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleUser, Content: blocks}
}

func NewAssistantMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleAssistant, Content: blocks}
}

// ToolDeclaration advertises a tool to the model. InputSchema is a JSON Schema
// object passed through untouched.
type ToolDeclaration struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolChoice selects how the model may pick tools.
type ToolChoice string

const (
	ToolChoiceNone ToolChoice = ""
	ToolChoiceAuto ToolChoice = "auto"
)

// Request is the outbound payload for one model call.
type Request struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	System      string
	Messages    []Message
	Tools       []ToolDeclaration
	ToolChoice  ToolChoice
}

// Response is a model reply. RawStopReason keeps the provider's own value so
// unrecognized reasons can be reported verbatim.
type Response struct {
	StopReason    StopReason
	RawStopReason string
	Content       []ContentBlock
}

// FirstText returns the first text-bearing block, if any.
func (r *Response) FirstText() (string, bool) {
	if r == nil {
		return "", false
	}
	for _, b := range r.Content {
		if b.Kind == BlockText {
			return b.Text, true
		}
	}
	return "", false
}

// Clone deep-copies r. A nil Response clones to nil.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Content = CloneBlocks(r.Content)
	return &c
}

// ToolUses returns copies of the tool-invocation requests in emission order.
func (r *Response) ToolUses() []ToolUse {
	if r == nil {
		return nil
	}
	var out []ToolUse
	for _, b := range r.Content {
		if b.Kind == BlockToolUse && b.ToolUse != nil {
			out = append(out, b.ToolUse.Clone())
		}
	}
	return out
}

// Client is the model service port. Implementations own transport, auth and
// retries; any returned error is fatal for the current run.
type Client interface {
	CreateMessage(ctx context.Context, req Request) (*Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (*Response, error)

func (f ClientFunc) CreateMessage(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/turnflow/internal/llm"
)

const DefaultAnthropicModel = string(anthropic.ModelClaude3_7SonnetLatest)

// Anthropic adapts the Messages API to llm.Client.
type Anthropic struct {
	client *anthropic.Client
}

var _ llm.Client = (*Anthropic)(nil)

// NewAnthropic builds a client. An empty apiKey falls back to
// ANTHROPIC_API_KEY; a nil httpClient uses the SDK default.
func NewAnthropic(apiKey, baseURL string, httpClient *http.Client) *Anthropic {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	c := anthropic.NewClient(opts...)
	return &Anthropic{client: &c}
}

func (a *Anthropic) CreateMessage(ctx context.Context, req llm.Request) (*llm.Response, error) {
	params, err := anthropicParams(req)
	if err != nil {
		return nil, err
	}
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return anthropicResponse(msg), nil
}

func anthropicParams(req llm.Request) (anthropic.MessageNewParams, error) {
	model := req.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages:    anthropicMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
		for _, d := range req.Tools {
			schema, err := anthropicSchema(d.InputSchema)
			if err != nil {
				return anthropic.MessageNewParams{}, fmt.Errorf("tool %s schema: %w", d.Name, err)
			}
			tool := anthropic.ToolParam{Name: d.Name, InputSchema: schema}
			if d.Description != "" {
				tool.Description = anthropic.String(d.Description)
			}
			tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
		}
		params.Tools = tools
	}
	if req.ToolChoice == llm.ToolChoiceAuto {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
	return params, nil
}

// anthropicSchema maps a JSON Schema object onto the SDK param. Keys the
// param has no field for (additionalProperties, $defs, ...) travel in
// ExtraFields so they reach the API unchanged.
func anthropicSchema(raw map[string]any) (anthropic.ToolInputSchemaParam, error) {
	var schema anthropic.ToolInputSchemaParam
	for k, v := range raw {
		switch k {
		case "type":
		case "properties":
			schema.Properties = v
		case "required":
			req, err := requiredNames(v)
			if err != nil {
				return anthropic.ToolInputSchemaParam{}, err
			}
			schema.Required = req
		default:
			if schema.ExtraFields == nil {
				schema.ExtraFields = make(map[string]any)
			}
			schema.ExtraFields[k] = v
		}
	}
	return schema, nil
}

func requiredNames(v any) ([]string, error) {
	switch req := v.(type) {
	case []string:
		return req, nil
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			name, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("required entry %v is not a string", r)
			}
			out = append(out, name)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("required must be a list, got %T", v)
	}
}

func anthropicMessages(msgs []llm.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
		for _, b := range m.Content {
			switch b.Kind {
			case llm.BlockText:
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			case llm.BlockToolUse:
				input := b.ToolUse.Input
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(b.ToolUse.ID, input, b.ToolUse.Name))
			case llm.BlockToolResult:
				r := b.ToolResult
				blocks = append(blocks, anthropic.NewToolResultBlock(r.ToolUseID, r.Content, r.IsError))
			}
		}
		if m.Role == llm.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

func anthropicResponse(msg *anthropic.Message) *llm.Response {
	resp := &llm.Response{RawStopReason: string(msg.StopReason)}
	switch msg.StopReason {
	case anthropic.StopReasonToolUse:
		resp.StopReason = llm.StopToolUse
	case anthropic.StopReasonEndTurn:
		resp.StopReason = llm.StopEndTurn
	case anthropic.StopReasonMaxTokens:
		resp.StopReason = llm.StopMaxTokens
	default:
		resp.StopReason = llm.StopOther
	}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Content = append(resp.Content, llm.TextBlock(v.Text))
		case anthropic.ToolUseBlock:
			resp.Content = append(resp.Content, llm.ToolUseBlock(v.ID, v.Name, json.RawMessage(v.JSON.Input.Raw())))
		}
	}
	return resp
}

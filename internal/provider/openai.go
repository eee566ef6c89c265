package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/petasbytes/turnflow/internal/llm"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI adapts Chat Completions (and compatible servers) to llm.Client.
type OpenAI struct {
	client openai.Client
}

var _ llm.Client = (*OpenAI)(nil)

// NewOpenAI builds a client. An empty apiKey falls back to OPENAI_API_KEY;
// baseURL points at any Chat Completions compatible server.
func NewOpenAI(apiKey, baseURL string, httpClient *http.Client) *OpenAI {
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
	return &OpenAI{client: openai.NewClient(opts...)}
}

func (o *OpenAI) CreateMessage(ctx context.Context, req llm.Request) (*llm.Response, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openaiParams(req))
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("openai: response has no choices")
	}
	return openaiResponse(completion.Choices[0]), nil
}

func openaiParams(req llm.Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	params := openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(model),
		MaxCompletionTokens: openai.Int(req.MaxTokens),
		Temperature:         openai.Float(req.Temperature),
		Messages:            openaiMessages(req.System, req.Messages),
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(req.Tools))
		for _, d := range req.Tools {
			tool := openai.ChatCompletionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:       d.Name,
					Parameters: functionParameters(d.InputSchema),
				},
			}
			if d.Description != "" {
				tool.Function.Description = openai.String(d.Description)
			}
			tools = append(tools, tool)
		}
		params.Tools = tools
	}
	if req.ToolChoice == llm.ToolChoiceAuto {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("auto")}
	}
	return params
}

func functionParameters(schema map[string]any) shared.FunctionParameters {
	out := make(shared.FunctionParameters, len(schema)+1)
	for k, v := range schema {
		out[k] = v
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	return out
}

// openaiMessages flattens the block model: tool results become one tool
// message each and assistant tool requests become tool_calls.
func openaiMessages(system string, msgs []llm.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, m := range msgs {
		if m.Role == llm.RoleAssistant {
			out = append(out, openaiAssistant(m))
			continue
		}
		var text string
		for _, b := range m.Content {
			switch b.Kind {
			case llm.BlockText:
				text += b.Text
			case llm.BlockToolResult:
				out = append(out, openai.ToolMessage(b.ToolResult.Content, b.ToolResult.ToolUseID))
			}
		}
		if text != "" {
			out = append(out, openai.UserMessage(text))
		}
	}
	return out
}

func openaiAssistant(m llm.Message) openai.ChatCompletionMessageParamUnion {
	var p openai.ChatCompletionAssistantMessageParam
	var text string
	for _, b := range m.Content {
		switch b.Kind {
		case llm.BlockText:
			text += b.Text
		case llm.BlockToolUse:
			args := string(b.ToolUse.Input)
			if args == "" {
				args = "{}"
			}
			p.ToolCalls = append(p.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: b.ToolUse.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      b.ToolUse.Name,
					Arguments: args,
				},
			})
		}
	}
	if text != "" {
		p.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(text)}
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &p}
}

func openaiResponse(choice openai.ChatCompletionChoice) *llm.Response {
	resp := &llm.Response{RawStopReason: choice.FinishReason}
	switch choice.FinishReason {
	case "tool_calls":
		resp.StopReason = llm.StopToolUse
	case "stop":
		resp.StopReason = llm.StopEndTurn
	case "length":
		resp.StopReason = llm.StopMaxTokens
	default:
		resp.StopReason = llm.StopOther
	}
	if choice.Message.Content != "" {
		resp.Content = append(resp.Content, llm.TextBlock(choice.Message.Content))
	}
	for _, tc := range choice.Message.ToolCalls {
		resp.Content = append(resp.Content, llm.ToolUseBlock(tc.ID, tc.Function.Name, toolArguments(tc.Function.Arguments)))
	}
	return resp
}

// toolArguments passes the model's arguments through. Empty arguments mean
// no input; text that is not JSON is kept verbatim as a JSON string so the
// tool sees what the model actually sent.
func toolArguments(raw string) json.RawMessage {
	if raw == "" {
		return json.RawMessage(`{}`)
	}
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	quoted, _ := json.Marshal(raw)
	return quoted
}

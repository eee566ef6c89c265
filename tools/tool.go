package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/petasbytes/turnflow/internal/llm"
)

// ToolDefinition is a tool the model can call. Function receives the raw JSON
// arguments produced by the model.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
	Function    func(input json.RawMessage) (string, error)
}

func (d ToolDefinition) Declaration() llm.ToolDeclaration {
	return llm.ToolDeclaration{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema}
}

// GenerateSchema reflects T into an inline JSON Schema object.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := json.Marshal(schema)
	if err != nil {
		panic("tools: marshal schema: " + err.Error())
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		panic("tools: unmarshal schema: " + err.Error())
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}

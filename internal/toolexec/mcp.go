package toolexec

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/turnflow/internal/llm"
)

// ServerConfig describes one MCP server connection.
type ServerConfig struct {
	Name string
	// Transport is "streamable-http" (default), "sse" or "command".
	Transport string
	URL       string
	Command   string
	Args      []string
}

// MCPClient serves the tools of a single MCP server through the executor port.
type MCPClient struct {
	cfg     ServerConfig
	session *mcp.ClientSession
	decls   []llm.ToolDeclaration
}

var _ Catalog = (*MCPClient)(nil)

// ConnectMCP dials the configured server and discovers its tools.
func ConnectMCP(ctx context.Context, cfg ServerConfig) (*MCPClient, error) {
	t, err := newTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating transport for %q: %w", cfg.Name, err)
	}
	return ConnectMCPWithTransport(ctx, cfg, t)
}

// ConnectMCPWithTransport is ConnectMCP over a caller-built transport.
func ConnectMCPWithTransport(ctx context.Context, cfg ServerConfig, t mcp.Transport) (*MCPClient, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "turnflow", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to MCP server %q: %w", cfg.Name, err)
	}
	c := &MCPClient{cfg: cfg, session: session}
	if err := c.discover(ctx); err != nil {
		_ = session.Close()
		return nil, err
	}
	return c, nil
}

func newTransport(cfg ServerConfig) (mcp.Transport, error) {
	switch cfg.Transport {
	case "streamable-http", "":
		if cfg.URL == "" {
			return nil, fmt.Errorf("url is required")
		}
		return &mcp.StreamableClientTransport{Endpoint: cfg.URL}, nil
	case "sse":
		if cfg.URL == "" {
			return nil, fmt.Errorf("url is required")
		}
		return &mcp.SSEClientTransport{Endpoint: cfg.URL}, nil
	case "command":
		if cfg.Command == "" {
			return nil, fmt.Errorf("command is required")
		}
		return &mcp.CommandTransport{Command: exec.Command(cfg.Command, cfg.Args...)}, nil
	default:
		return nil, fmt.Errorf("unsupported transport type %q", cfg.Transport)
	}
}

func (c *MCPClient) discover(ctx context.Context) error {
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return fmt.Errorf("listing tools from %q: %w", c.cfg.Name, err)
		}
		schema, err := schemaMap(tool.InputSchema)
		if err != nil {
			return fmt.Errorf("converting tool %q from %q: %w", tool.Name, c.cfg.Name, err)
		}
		c.decls = append(c.decls, llm.ToolDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}
	return nil
}

func schemaMap(s any) (map[string]any, error) {
	if s == nil {
		return map[string]any{"type": "object"}, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling input schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding input schema: %w", err)
	}
	return m, nil
}

// Declarations returns the tools discovered at connect time.
func (c *MCPClient) Declarations() []llm.ToolDeclaration {
	out := make([]llm.ToolDeclaration, len(c.decls))
	copy(out, c.decls)
	return out
}

// Execute calls the tool on the server. Protocol and tool errors are returned
// as result text so the model sees them.
func (c *MCPClient) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	var args map[string]any
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return fmt.Sprintf("invalid arguments JSON: %v", err), nil
		}
	}
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return fmt.Sprintf("MCP tool call error: %v", err), nil
	}
	var parts []string
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	out := strings.Join(parts, "\n")
	if res.IsError {
		return "error: " + out, nil
	}
	return out, nil
}

// Close ends the MCP session.
func (c *MCPClient) Close() error {
	if c.session == nil {
		return nil
	}
	return c.session.Close()
}

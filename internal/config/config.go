// Package config loads turnflow settings from defaults, an optional YAML file
// and AGT_* environment variables.
package config

import (
	"github.com/petasbytes/turnflow/internal/toolexec"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config is the full runtime configuration.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	// APIKey is optional; the provider SDKs read their own environment
	// variables when it is empty.
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"`

	MaxTokens     int64   `yaml:"max_tokens"`
	Temperature   float64 `yaml:"temperature"`
	MaxIterations int     `yaml:"max_iterations"`
	SystemPrompt  string  `yaml:"system_prompt"`

	LogLevel string `yaml:"log_level"`

	// HistoryPath is the transcript file used by chat sessions.
	HistoryPath string `yaml:"history_path"`
	// ReadRoot confines the built-in file tools.
	ReadRoot string `yaml:"read_root"`

	MCPServers []MCPServer `yaml:"mcp_servers"`
}

// MCPServer describes one external tool server.
type MCPServer struct {
	Name      string   `yaml:"name" json:"name"`
	Transport string   `yaml:"transport" json:"transport"`
	URL       string   `yaml:"url" json:"url"`
	Command   string   `yaml:"command" json:"command"`
	Args      []string `yaml:"args" json:"args"`
}

// ServerConfig converts to the executor's connection settings.
func (s MCPServer) ServerConfig() toolexec.ServerConfig {
	return toolexec.ServerConfig{
		Name:      s.Name,
		Transport: s.Transport,
		URL:       s.URL,
		Command:   s.Command,
		Args:      s.Args,
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Provider:      ProviderAnthropic,
		MaxTokens:     800,
		Temperature:   0,
		MaxIterations: 10,
		LogLevel:      "info",
		HistoryPath:   ".agent/history.json",
		ReadRoot:      ".",
	}
}

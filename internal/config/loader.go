package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration in layers:
//  1. Built-in defaults
//  2. YAML file (explicit path, AGT_CONFIG, ./turnflow.yaml)
//  3. AGT_* environment overrides
//  4. api_key_file resolution
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if path := discoverConfigFile(configPath); path != "" {
		if err := loadYAMLFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if cfg.APIKeyFile != "" && cfg.APIKey == "" {
		data, err := os.ReadFile(cfg.APIKeyFile)
		if err != nil {
			return nil, fmt.Errorf("api_key_file: %w", err)
		}
		cfg.APIKey = strings.TrimSpace(string(data))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv("AGT_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("turnflow.yaml"); err == nil {
		return "turnflow.yaml"
	}
	return ""
}

// loadYAMLFile decodes path over cfg; absent keys keep their current values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("AGT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("AGT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("AGT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("AGT_MAX_TOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid AGT_MAX_TOKENS %q: %w", v, err)
		}
		cfg.MaxTokens = n
	}
	if v := os.Getenv("AGT_MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGT_MAX_ITERATIONS %q: %w", v, err)
		}
		cfg.MaxIterations = n
	}
	if v := os.Getenv("AGT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AGT_READ_ROOT"); v != "" {
		cfg.ReadRoot = v
	}
	if v := os.Getenv("AGT_HISTORY_PATH"); v != "" {
		cfg.HistoryPath = v
	}
	// AGT_MCP_SERVERS: JSON array of server configs.
	if v := os.Getenv("AGT_MCP_SERVERS"); v != "" {
		var servers []MCPServer
		if err := json.Unmarshal([]byte(v), &servers); err != nil {
			return fmt.Errorf("parsing AGT_MCP_SERVERS: %w", err)
		}
		cfg.MCPServers = servers
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// Validate reports every invalid field, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("provider must be %q or %q, got %q", ProviderAnthropic, ProviderOpenAI, c.Provider))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be > 0, got %d", c.MaxTokens))
	}
	if c.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("max_iterations must be > 0, got %d", c.MaxIterations))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be within [0, 2], got %g", c.Temperature))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	seen := map[string]bool{}
	for i, s := range c.MCPServers {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("mcp_servers[%d].name is required", i))
		} else if seen[s.Name] {
			errs = append(errs, fmt.Errorf("mcp_servers[%d].name %q is duplicated", i, s.Name))
		}
		seen[s.Name] = true

		switch s.Transport {
		case "", "streamable-http", "sse":
			if s.URL == "" {
				errs = append(errs, fmt.Errorf("mcp_servers[%d].url is required for transport %q", i, s.Transport))
			}
		case "command":
			if s.Command == "" {
				errs = append(errs, fmt.Errorf("mcp_servers[%d].command is required for transport \"command\"", i))
			}
		default:
			errs = append(errs, fmt.Errorf("mcp_servers[%d].transport %q is not supported", i, s.Transport))
		}
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q is not a valid level", c.LogLevel)
	}
	return lvl, nil
}

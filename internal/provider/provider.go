// Package provider holds the model service adapters. Each adapter maps the
// vendor wire format to llm types once, so callers never see SDK types.
package provider

import (
	"fmt"
	"net/http"

	"github.com/petasbytes/turnflow/internal/config"
	"github.com/petasbytes/turnflow/internal/llm"
)

// New selects the adapter named by cfg.Provider. It also returns the model
// name to send, filling in the adapter default when cfg.Model is empty.
func New(cfg *config.Config, httpClient *http.Client) (llm.Client, string, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		model := cfg.Model
		if model == "" {
			model = DefaultAnthropicModel
		}
		return NewAnthropic(cfg.APIKey, cfg.BaseURL, httpClient), model, nil
	case config.ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, httpClient), model, nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

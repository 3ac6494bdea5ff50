package generation

import (
	"fmt"
	"strings"

	"leadconnect_backend/platform/ai/moonshot"
	"leadconnect_backend/platform/config"
)

const (
	ProviderMoonshot = "moonshot"
	ProviderOpenAI   = "openai"
)

// New builds the configured backend.
func New(cfg config.GenerationConfig) (Backend, error) {
	switch strings.ToLower(cfg.GetGenerationProvider()) {
	case "", ProviderMoonshot:
		return NewLLMBackend(ProviderMoonshot, moonshot.NewModel(moonshot.Config{
			APIKey:          cfg.GetGenerationAPIKey(),
			BaseURL:         cfg.GetGenerationBaseURL(),
			Model:           cfg.GetGenerationModel(),
			DisableThinking: true,
		})), nil
	case ProviderOpenAI:
		return NewOpenAIBackend(OpenAIConfig{
			APIKey:  cfg.GetGenerationAPIKey(),
			BaseURL: cfg.GetGenerationBaseURL(),
			Model:   cfg.GetGenerationModel(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.GetGenerationProvider())
	}
}

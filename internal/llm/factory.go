package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/veracitor/veracity/internal/model"
)

// NewProvider creates a narrative provider from configuration. An empty
// provider name returns (nil, nil), meaning narration is disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown narrative provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config, resolving
// the API key from the environment when the config leaves it empty.
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	config := Config{
		Provider:        modelConfig.Provider,
		Model:           modelConfig.Model,
		APIKey:          modelConfig.APIKey,
		BaseURL:         modelConfig.BaseURL,
		Timeout:         modelConfig.Timeout,
		StrictCitations: modelConfig.StrictCitations,
		MaxTokens:       modelConfig.MaxTokens,
	}

	if config.APIKey == "" {
		switch strings.ToLower(config.Provider) {
		case "openai":
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	return config
}

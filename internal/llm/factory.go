package llm

import (
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config selects and configures a completion provider.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	OllamaURL string
}

// New creates a chat client from explicit configuration.
func New(cfg Config) (Chat, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg.APIKey, cfg.Model)
	case ProviderOllama:
		return NewOllama(cfg.OllamaURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

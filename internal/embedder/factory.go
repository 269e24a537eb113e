package embedder

import (
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderLocal  = "local"
)

const defaultOllamaDim = 768 // nomic-embed-text

// Config selects and configures an embedding provider. Credentials are passed
// explicitly; no provider reads ambient global state.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	OllamaURL string
	Dimension int
}

// New creates an embedder from explicit configuration.
func New(cfg Config) (Embedder, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg.APIKey, cfg.Model)
	case ProviderOllama:
		dim := cfg.Dimension
		if dim == 0 {
			dim = defaultOllamaDim
		}
		return NewOllama(cfg.OllamaURL, cfg.Model, dim), nil
	case ProviderLocal:
		return NewLocal(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

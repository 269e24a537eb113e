package llm

import "context"

// systemMessage frames every completion request.
const systemMessage = "You are an AI coding assistant that helps users understand codebases."

// Completion parameters shared by all providers.
const (
	temperature = 0.2
	maxTokens   = 1000
)

// Chat produces a completion for a prompt. An empty model selects the
// provider's configured default.
type Chat interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

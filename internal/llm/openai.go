package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const openaiTimeout = 2 * time.Minute

// OpenAIChat calls the OpenAI chat completions API.
type OpenAIChat struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenAI creates a chat client with a default model.
func NewOpenAI(apiKey, defaultModel string) (*OpenAIChat, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set (export OPENAI_API_KEY)")
	}
	return &OpenAIChat{
		client:       openai.NewClient(apiKey),
		defaultModel: defaultModel,
	}, nil
}

// Complete sends the prompt and returns the assistant's response.
func (c *OpenAIChat) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.defaultModel
	}

	ctx, cancel := context.WithTimeout(ctx, openaiTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

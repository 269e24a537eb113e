package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// message is a single chat message on the Ollama wire format.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaChat calls the Ollama /api/chat endpoint for generative responses.
type OllamaChat struct {
	baseURL      string
	defaultModel string
	client       *http.Client
}

// NewOllama creates a chat client targeting the given Ollama instance.
func NewOllama(baseURL, defaultModel string) *OllamaChat {
	return &OllamaChat{
		baseURL:      baseURL,
		defaultModel: defaultModel,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  struct {
		Temperature float32 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type chatResponse struct {
	Message message `json:"message"`
}

// Complete sends the prompt and returns the assistant's response.
func (c *OllamaChat) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.defaultModel
	}

	reqBody := chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}
	reqBody.Options.Temperature = temperature
	reqBody.Options.NumPredict = maxTokens

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama chat returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}

	return result.Message.Content, nil
}

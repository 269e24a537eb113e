package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		assert.InDelta(t, temperature, req.Options.Temperature, 1e-6)
		assert.Equal(t, maxTokens, req.Options.NumPredict)

		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, systemMessage, req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "What does add do?", req.Messages[1].Content)

		json.NewEncoder(w).Encode(chatResponse{
			Message: message{Role: "assistant", Content: "It adds two numbers."},
		})
	}))
	defer srv.Close()

	chat := NewOllama(srv.URL, "llama3")
	out, err := chat.Complete(context.Background(), "What does add do?", "")
	require.NoError(t, err)
	assert.Equal(t, "It adds two numbers.", out)
}

func TestOllamaComplete_ModelOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "codellama", req.Model)
		json.NewEncoder(w).Encode(chatResponse{Message: message{Content: "ok"}})
	}))
	defer srv.Close()

	chat := NewOllama(srv.URL, "llama3")
	_, err := chat.Complete(context.Background(), "q", "codellama")
	require.NoError(t, err)
}

func TestOllamaComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	chat := NewOllama(srv.URL, "llama3")
	_, err := chat.Complete(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

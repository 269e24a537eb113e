package rag

import (
	"context"
	"fmt"
	"strings"

	"coderag/internal/llm"
	"coderag/internal/retriever"
)

// NoResultsContext is the canonical context when retrieval finds nothing.
// Callers can compare against it to distinguish "no matches" from a failed
// retrieval, which surfaces as an error instead.
const NoResultsContext = "No relevant code chunks found."

const promptTemplate = `You are an AI coding assistant. Answer the following question about the codebase based on the provided context.

Context:
%s

Question: %s

Please provide a clear, concise, and helpful answer. If the context doesn't contain enough information to answer the question, say so and suggest what additional information might be needed.
`

// Searcher is the retrieval dependency of the orchestrator.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]retriever.Result, error)
}

// Result is the total outcome of one question. All three fields are always
// populated; a completion failure is reported inside Response rather than
// raised.
type Result struct {
	Query    string `json:"query"`
	Context  string `json:"context"`
	Response string `json:"response"`
}

// Engine composes retrieval and completion into question answering.
type Engine struct {
	searcher Searcher
	chat     llm.Chat
}

// New creates an Engine.
func New(searcher Searcher, chat llm.Chat) *Engine {
	return &Engine{searcher: searcher, chat: chat}
}

// Answer retrieves context for the question, builds the prompt, and asks the
// completion provider. Completion failures are absorbed into Result.Response.
// Retrieval failures — missing or mismatched index, query embedding errors —
// return as errors so callers can tell them apart from an empty result set.
func (e *Engine) Answer(ctx context.Context, query string, topK int, model string) (*Result, error) {
	results, err := e.searcher.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	contextBlock := FormatContext(results)
	prompt := fmt.Sprintf(promptTemplate, contextBlock, query)

	response, err := e.chat.Complete(ctx, prompt, model)
	if err != nil {
		response = fmt.Sprintf("Error getting response from model: %v", err)
	}

	return &Result{
		Query:    query,
		Context:  contextBlock,
		Response: response,
	}, nil
}

// FormatContext renders retrieved chunks into the context block embedded in
// the prompt.
func FormatContext(results []retriever.Result) string {
	if len(results) == 0 {
		return NoResultsContext
	}

	var b strings.Builder
	b.WriteString("Here are the relevant code snippets:\n\n")

	for i, r := range results {
		fmt.Fprintf(&b, "--- Chunk %d ---\n", i+1)
		fmt.Fprintf(&b, "File: %s\n", r.Chunk.File)
		fmt.Fprintf(&b, "Kind: %s\n", r.Chunk.Kind)
		fmt.Fprintf(&b, "Name: %s\n", r.Chunk.Name)
		if r.Chunk.Owner != "" {
			fmt.Fprintf(&b, "Class: %s\n", r.Chunk.Owner)
		}
		if r.Chunk.Docstring != "" {
			fmt.Fprintf(&b, "Docstring: %s\n", r.Chunk.Docstring)
		}
		fmt.Fprintf(&b, "Code:\n%s\n\n", r.Chunk.Content)
	}

	return b.String()
}

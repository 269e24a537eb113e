package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderag/internal/chunk"
	"coderag/internal/retriever"
)

type stubSearcher struct {
	results []retriever.Result
	err     error
	gotK    int
}

func (s *stubSearcher) Search(ctx context.Context, query string, topK int) ([]retriever.Result, error) {
	s.gotK = topK
	return s.results, s.err
}

type stubChat struct {
	response string
	err      error
	prompt   string
	model    string
}

func (c *stubChat) Complete(ctx context.Context, prompt, model string) (string, error) {
	c.prompt = prompt
	c.model = model
	return c.response, c.err
}

func calcResults() []retriever.Result {
	return []retriever.Result{
		{
			Chunk: chunk.CodeChunk{
				ID: 0, Kind: chunk.KindClass, Name: "Calculator", File: "calc.py", Line: 1,
				Content: "class Calculator:\n    ...", Docstring: "A simple calculator.",
				Extra: &chunk.ClassDetail{NumMethods: 2},
			},
			Distance: 0.1,
		},
		{
			Chunk: chunk.CodeChunk{
				ID: 1, Kind: chunk.KindMethod, Name: "add", Owner: "Calculator", File: "calc.py", Line: 4,
				Content: "def add(self, a, b):\n    return a + b",
			},
			Distance: 0.3,
		},
	}
}

func TestAnswer(t *testing.T) {
	searcher := &stubSearcher{results: calcResults()}
	chat := &stubChat{response: "Calculator supports add."}
	engine := New(searcher, chat)

	result, err := engine.Answer(context.Background(), "How does the Calculator class work?", 5, "gpt-4")
	require.NoError(t, err)

	assert.Equal(t, "How does the Calculator class work?", result.Query)
	assert.Equal(t, "Calculator supports add.", result.Response)
	assert.Equal(t, 5, searcher.gotK)
	assert.Equal(t, "gpt-4", chat.model)

	// The prompt carries both the rendered context and the question.
	assert.Contains(t, chat.prompt, result.Context)
	assert.Contains(t, chat.prompt, "Question: How does the Calculator class work?")
}

func TestAnswer_NoResults(t *testing.T) {
	searcher := &stubSearcher{}
	chat := &stubChat{response: "I could not find anything relevant."}
	engine := New(searcher, chat)

	result, err := engine.Answer(context.Background(), "What does the Foo class do?", 5, "")
	require.NoError(t, err)

	assert.Equal(t, NoResultsContext, result.Context)
	assert.Contains(t, chat.prompt, NoResultsContext, "the model still sees the canonical empty context")
	assert.Equal(t, "I could not find anything relevant.", result.Response)
}

func TestAnswer_CompletionFailureAbsorbed(t *testing.T) {
	searcher := &stubSearcher{results: calcResults()}
	chat := &stubChat{err: errors.New("connection refused")}
	engine := New(searcher, chat)

	result, err := engine.Answer(context.Background(), "How does add work?", 3, "gpt-4")
	require.NoError(t, err, "a completion failure must not surface as an error")

	assert.Equal(t, "How does add work?", result.Query)
	assert.NotEmpty(t, result.Context)
	assert.Equal(t, "Error getting response from model: connection refused", result.Response)
}

func TestAnswer_RetrievalFailurePropagates(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("index not found")}
	chat := &stubChat{response: "unused"}
	engine := New(searcher, chat)

	result, err := engine.Answer(context.Background(), "anything", 5, "")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, chat.prompt, "no completion call on retrieval failure")
}

func TestFormatContext(t *testing.T) {
	out := FormatContext(calcResults())

	assert.Contains(t, out, "Here are the relevant code snippets:")
	assert.Contains(t, out, "--- Chunk 1 ---")
	assert.Contains(t, out, "--- Chunk 2 ---")
	assert.Contains(t, out, "File: calc.py")
	assert.Contains(t, out, "Kind: class")
	assert.Contains(t, out, "Name: Calculator")
	assert.Contains(t, out, "Docstring: A simple calculator.")
	assert.Contains(t, out, "Class: Calculator", "methods name their owning class")
	assert.Contains(t, out, "Code:\nclass Calculator:")
	assert.NotContains(t, out, "Docstring: \n", "empty docstrings are omitted")
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, NoResultsContext, FormatContext(nil))
	assert.Equal(t, NoResultsContext, FormatContext([]retriever.Result{}))
}

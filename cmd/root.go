package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"coderag/internal/embedder"
	"coderag/internal/llm"
	"coderag/internal/retriever"
	"coderag/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagIndex      string
	flagProvider   string
	flagEmbedModel string
	flagChatModel  string
	flagOllama     string
	flagDim        int
)

var rootCmd = &cobra.Command{
	Use:   "coderag",
	Short: "Ask natural-language questions about a codebase",
	Long: `coderag indexes a Python codebase into semantic chunks, embeds them,
and answers questions by retrieving the most relevant code for an LLM.`,
}

func Execute() {
	// Provider credentials come from the environment only; a .env file is a
	// convenience, not a requirement.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagIndex, "index", "", "index path (default <project>/.coderag/index.db)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "openai", "embedding/completion provider (openai, ollama, local)")
	rootCmd.PersistentFlags().StringVar(&flagEmbedModel, "embed-model", "text-embedding-3-small", "embedding model")
	rootCmd.PersistentFlags().StringVar(&flagChatModel, "chat-model", "gpt-4", "generative model for answers")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "http://localhost:11434", "ollama base URL")
	rootCmd.PersistentFlags().IntVar(&flagDim, "dim", 0, "embedding dimension override (ollama/local only)")
}

func newEmbedder() (embedder.Embedder, error) {
	return embedder.New(embedder.Config{
		Provider:  flagProvider,
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		Model:     flagEmbedModel,
		OllamaURL: flagOllama,
		Dimension: flagDim,
	})
}

func newChat() (llm.Chat, error) {
	provider := flagProvider
	if provider == "local" {
		// There is no local completion provider; fall back to openai.
		provider = "openai"
	}
	return llm.New(llm.Config{
		Provider:  provider,
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		Model:     flagChatModel,
		OllamaURL: flagOllama,
	})
}

func resolveIndexPath() (string, error) {
	if flagIndex != "" {
		return flagIndex, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, ".coderag", "index.db"), nil
}

// openRetriever loads the index and pairs it with a query embedder. The
// caller owns the returned store and must close it.
func openRetriever() (*retriever.Retriever, *store.Store, error) {
	path, err := resolveIndexPath()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w\nRun 'coderag index <path>' first to build the index", err)
	}

	emb, err := newEmbedder()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	r, err := retriever.New(st, emb)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return r, st, nil
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"coderag/internal/rag"
	"coderag/internal/retriever"
	"coderag/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing codebase search and QA tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	r, st, err := openRetriever()
	if err != nil {
		return err
	}
	defer st.Close()

	chat, err := newChat()
	if err != nil {
		return err
	}
	engine := rag.New(r, chat)

	s := mcpserver.NewMCPServer("coderag", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(searchCodebaseTool(), makeSearchHandler(r))
	s.AddTool(askCodebaseTool(), makeAskHandler(engine))
	s.AddTool(indexInfoTool(), makeIndexInfoHandler(st))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchCodebaseTool() mcp.Tool {
	return mcp.NewTool("search_codebase",
		mcp.WithDescription("Semantically search the indexed codebase. Returns the nearest code chunks with file paths, kinds, and line numbers."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query to search the codebase"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to return (default 10)"),
		),
	)
}

func askCodebaseTool() mcp.Tool {
	return mcp.NewTool("ask_codebase",
		mcp.WithDescription("Answer a natural-language question about the codebase using retrieved code context and an LLM."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithNumber("k",
			mcp.Description("Number of chunks to retrieve as context (default 5)"),
		),
	)
}

func indexInfoTool() mcp.Tool {
	return mcp.NewTool("index_info",
		mcp.WithDescription("Report the loaded index: chunk count, embedding model, and vector dimension."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeSearchHandler(r *retriever.Retriever) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", 10)
		if k <= 0 {
			k = 10
		}

		results, err := r.Search(ctx, query, k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return mcp.NewToolResultText(formatSearchResults(query, results)), nil
	}
}

func makeAskHandler(engine *rag.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		k := req.GetInt("k", 5)
		if k <= 0 {
			k = 5
		}

		result, err := engine.Answer(ctx, question, k, flagChatModel)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
		}

		return mcp.NewToolResultText(result.Response), nil
	}
}

func makeIndexInfoHandler(st *store.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Chunks: %d\nEmbedding model: %s\nDimension: %d",
			st.Count(), st.Model(), st.Dimension())), nil
	}
}

// --- Formatting helpers ---

func formatSearchResults(query string, results []retriever.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d chunks)\n\n", query, len(results))

	for i, res := range results {
		c := res.Chunk
		name := c.Name
		if c.Owner != "" {
			name = c.Owner + "." + name
		}
		fmt.Fprintf(&sb, "### Result %d: `%s`\n\n", i+1, c.File)
		fmt.Fprintf(&sb, "**Kind:** %s  \n**Name:** %s  \n**Line:** %d  \n**Distance:** %.4f\n\n",
			c.Kind, name, c.Line, res.Distance)
		fmt.Fprintf(&sb, "```python\n%s\n```\n\n", c.Content)
	}

	return sb.String()
}

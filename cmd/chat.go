package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"coderag/internal/rag"

	"github.com/spf13/cobra"
)

var flagChatK int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactively ask questions about the indexed codebase",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("coderag chat (type /help for commands, /exit to quit)")
		fmt.Println()

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}

			switch question {
			case "/exit", "/quit":
				fmt.Println("Goodbye.")
				return nil
			case "/help":
				fmt.Println("Commands:")
				fmt.Println("  /exit   - quit chat")
				fmt.Println("  /help   - show this help")
				continue
			}

			fmt.Println("[Searching...]")

			result, err := engine.Answer(cmd.Context(), question, flagChatK, flagChatModel)
			if err != nil {
				fmt.Fprintf(os.Stderr, "retrieval error: %v\n", err)
				continue
			}

			fmt.Println()
			fmt.Println(result.Response)
			fmt.Println()
		}

		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().IntVar(&flagChatK, "k", 5, "number of chunks to retrieve per question")
	rootCmd.AddCommand(chatCmd)
}

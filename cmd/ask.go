package cmd

import (
	"fmt"
	"strings"

	"coderag/internal/rag"

	"github.com/spf13/cobra"
)

var (
	flagK           int
	flagShowContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed codebase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

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
		result, err := engine.Answer(cmd.Context(), question, flagK, flagChatModel)
		if err != nil {
			return err
		}

		if flagShowContext {
			fmt.Println(result.Context)
			fmt.Println("---")
		}
		fmt.Println(result.Response)
		return nil
	},
}

func init() {
	askCmd.Flags().IntVar(&flagK, "k", 5, "number of chunks to retrieve")
	askCmd.Flags().BoolVar(&flagShowContext, "show-context", false, "print the retrieved context before the answer")
	rootCmd.AddCommand(askCmd)
}

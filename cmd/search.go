package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flagSearchK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve the code chunks most similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		r, st, err := openRetriever()
		if err != nil {
			return err
		}
		defer st.Close()

		results, err := r.Search(cmd.Context(), query, flagSearchK)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results.")
			return nil
		}

		for i, res := range results {
			c := res.Chunk
			name := c.Name
			if c.Owner != "" {
				name = c.Owner + "." + name
			}
			fmt.Printf("%d. %s %s (%s:%d) distance=%.4f\n", i+1, c.Kind, name, c.File, c.Line, res.Distance)
			if c.Docstring != "" {
				fmt.Printf("   %s\n", firstLine(c.Docstring))
			}
		}
		return nil
	},
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchK, "k", 10, "number of results to return")
	rootCmd.AddCommand(searchCmd)
}

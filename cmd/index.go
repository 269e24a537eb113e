package cmd

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"coderag/internal/index"

	"github.com/spf13/cobra"
)

var flagWorkers int

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index a codebase for question answering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		// Default index path is <project>/.coderag/index.db.
		dbPath := flagIndex
		if dbPath == "" {
			dbPath = filepath.Join(root, ".coderag", "index.db")
		}

		emb, err := newEmbedder()
		if err != nil {
			return err
		}

		ix := index.New(index.Config{
			IndexPath: dbPath,
			Embedder:  emb,
			Workers:   flagWorkers,
		})

		fmt.Printf("Indexing %s...\n", root)

		stats, err := ix.Build(cmd.Context(), root)

		if stats != nil {
			fmt.Printf("\nDone in %s\n", stats.Elapsed.Round(time.Millisecond))
			fmt.Printf("  Files:   %d total, %d parsed, %d failed\n",
				stats.FilesTotal, stats.FilesParsed, stats.FilesFailed)
			fmt.Printf("  Chunks:  %d\n", stats.Chunks)
		}

		return err
	},
}

func init() {
	indexCmd.Flags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "parallel embedding workers")
	rootCmd.AddCommand(indexCmd)
}

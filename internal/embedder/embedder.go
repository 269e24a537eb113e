package embedder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"coderag/internal/chunk"
)

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	// Embed converts a single text into a vector of Dimension() floats.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Model identifies the provider/model pair. Indexes record it so queries
	// embedded with a different transform can be rejected.
	Model() string
	// Dimension is the length of every vector this embedder produces.
	Dimension() int
}

// EmbedChunks embeds every chunk and returns one vector per chunk, with row i
// holding the vector for chunks[i]. Up to workers provider calls run at once;
// results are written back by chunk index, so concurrency never reorders
// rows. The first provider error cancels remaining work and fails the whole
// batch — callers must not persist anything in that case.
func EmbedChunks(ctx context.Context, emb Embedder, chunks []chunk.CodeChunk, workers int) ([][]float32, error) {
	if workers <= 0 {
		workers = 1
	}

	vectors := make([][]float32, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range chunks {
		g.Go(func() error {
			vec, err := emb.Embed(ctx, c.EmbedText())
			if err != nil {
				return fmt.Errorf("embed chunk %d (%s %s): %w", c.ID, c.Kind, c.Name, err)
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

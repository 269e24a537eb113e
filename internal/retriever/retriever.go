package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"coderag/internal/chunk"
	"coderag/internal/embedder"
	"coderag/internal/store"
)

// ErrModelMismatch reports an index built with a different embedding
// transform than the configured query embedder. Distances computed across
// mismatched transforms are meaningless, so the query is rejected outright.
var ErrModelMismatch = errors.New("embedding model mismatch")

// Result is a retrieved chunk with its distance to the query. Smaller is
// closer.
type Result struct {
	Chunk    chunk.CodeChunk
	Distance float64 `json:"distance"`
}

// Retriever answers similarity queries against a loaded index.
type Retriever struct {
	store *store.Store
	emb   embedder.Embedder
}

// New pairs a loaded store with a query embedder. The embedder must be the
// same model (and dimension) the index was built with.
func New(st *store.Store, emb embedder.Embedder) (*Retriever, error) {
	if st.Model() != emb.Model() {
		return nil, fmt.Errorf("%w: index built with %q, query embedder is %q",
			ErrModelMismatch, st.Model(), emb.Model())
	}
	if st.Dimension() != emb.Dimension() {
		return nil, fmt.Errorf("%w: index dimension %d, embedder dimension %d",
			ErrModelMismatch, st.Dimension(), emb.Dimension())
	}
	return &Retriever{store: st, emb: emb}, nil
}

// Search embeds the query and returns up to topK chunks ordered by ascending
// distance, ties broken by ascending chunk id. Requesting more results than
// the index holds returns everything available, never an error.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}
	if topK > r.store.Count() {
		topK = r.store.Count()
	}

	vec, err := r.emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Fetch the whole corpus and cut to topK only after the deterministic
	// sort below. vec0 picks its k candidates with arbitrary tie order, so a
	// tie straddling the k boundary would otherwise select the wrong chunk.
	scored, err := r.store.Search(vec, r.store.Count())
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(scored))
	for _, sc := range scored {
		// Guard against a stale or corrupt chunk/embedding pairing.
		if sc.Chunk.ID < 0 || sc.Chunk.ID >= r.store.Count() {
			continue
		}
		results = append(results, Result{Chunk: sc.Chunk, Distance: sc.Distance})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

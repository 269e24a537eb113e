package embedder

import (
	"context"
	"errors"
	"math"
)

// LocalEmbedder is a deterministic, offline embedder: identical text always
// maps to an identical unit vector. It has no semantic power and exists for
// tests and for exercising the pipeline without a provider credential.
type LocalEmbedder struct {
	dim int
}

// NewLocal creates a local embedder with the given dimension.
func NewLocal(dim int) *LocalEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &LocalEmbedder{dim: dim}
}

// Embed produces a normalized character-histogram vector.
func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}

	vec := make([]float32, e.dim)
	for i, r := range text {
		vec[(int(r)+i)%e.dim] += float32(r) / 1000.0
	}

	var sum float32
	for _, v := range vec {
		sum += v * v
	}
	if sum > 0 {
		inv := float32(1.0 / math.Sqrt(float64(sum)))
		for i := range vec {
			vec[i] *= inv
		}
	}

	return vec, nil
}

// Model returns the local model identifier.
func (e *LocalEmbedder) Model() string { return "local/char-v1" }

// Dimension returns the embedding dimension.
func (e *LocalEmbedder) Dimension() int { return e.dim }

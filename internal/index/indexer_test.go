package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderag/internal/chunk"
	"coderag/internal/embedder"
	"coderag/internal/retriever"
	"coderag/internal/store"
	"coderag/internal/walker"
)

const calculatorSrc = `"""Calculator example."""


class Calculator:
    """A simple calculator."""

    def add(self, a, b):
        """Add two numbers."""
        return a + b


def main():
    calc = Calculator()
    print(calc.add(1, 2))
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestIndexer(t *testing.T) (*Indexer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "index.db")
	ix := New(Config{
		IndexPath: dbPath,
		Embedder:  embedder.NewLocal(64),
		Workers:   2,
	})
	return ix, dbPath
}

// seededEmbedder pins specific query texts to known vectors so retrieval
// outcomes do not depend on the local embedder's geometry.
type seededEmbedder struct {
	*embedder.LocalEmbedder
	seeds map[string][]float32
}

func (s *seededEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.seeds[text]; ok {
		return vec, nil
	}
	return s.LocalEmbedder.Embed(ctx, text)
}

func TestBuild_EndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "calc.py", calculatorSrc)
	writeFile(t, root, "notes.txt", "not python\n")

	ix, dbPath := newTestIndexer(t)
	ctx := context.Background()

	stats, err := ix.Build(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesTotal)
	assert.Equal(t, 1, stats.FilesParsed)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Equal(t, 3, stats.Chunks)
	assert.Positive(t, stats.Elapsed)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	require.Equal(t, 3, st.Count())

	// Pull every chunk to locate the class, then seed the question with the
	// class chunk's own embedding so it must rank first.
	local := embedder.NewLocal(64)
	probe, err := local.Embed(ctx, "probe")
	require.NoError(t, err)
	all, err := st.Search(probe, st.Count())
	require.NoError(t, err)
	require.Len(t, all, 3)

	var class *chunk.CodeChunk
	kinds := map[chunk.Kind]string{}
	for i := range all {
		c := all[i].Chunk
		kinds[c.Kind] = c.Name
		if c.Kind == chunk.KindClass {
			class = &all[i].Chunk
		}
	}
	require.NotNil(t, class)
	assert.Equal(t, "Calculator", kinds[chunk.KindClass])
	assert.Equal(t, "add", kinds[chunk.KindMethod])
	assert.Equal(t, "main", kinds[chunk.KindFunction])
	assert.Equal(t, "A simple calculator.", class.Docstring)
	assert.Equal(t, "calc.py", class.File)

	classVec, err := local.Embed(ctx, class.EmbedText())
	require.NoError(t, err)

	question := "How does the Calculator class work?"
	emb := &seededEmbedder{
		LocalEmbedder: local,
		seeds:         map[string][]float32{question: classVec},
	}
	r, err := retriever.New(st, emb)
	require.NoError(t, err)

	results, err := r.Search(ctx, question, 5)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, chunk.KindClass, results[0].Chunk.Kind)
	assert.Equal(t, "Calculator", results[0].Chunk.Name)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
}

func TestBuild_EmptyCorpus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "nothing indexable here\n")

	ix, dbPath := newTestIndexer(t)
	_, err := ix.Build(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, chunk.ErrEmptyCorpus)

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "no artifact on an empty corpus")
}

func TestBuild_MissingRoot(t *testing.T) {
	ix, _ := newTestIndexer(t)
	_, err := ix.Build(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, walker.ErrPathNotFound)
}

func TestBuild_ParseFailureAbsorbed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "calc.py", calculatorSrc)
	writeFile(t, root, "bad.py", "def broken(:\n")

	ix, dbPath := newTestIndexer(t)
	stats, err := ix.Build(context.Background(), root)
	require.NoError(t, err, "one bad file must not sink the build")

	assert.Equal(t, 2, stats.FilesTotal)
	assert.Equal(t, 1, stats.FilesParsed)
	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, 3, stats.Chunks)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, 3, st.Count())
}

func TestBuild_Rebuild(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "calc.py", calculatorSrc)

	ix, dbPath := newTestIndexer(t)
	ctx := context.Background()

	_, err := ix.Build(ctx, root)
	require.NoError(t, err)

	writeFile(t, root, "util.py", "def helper():\n    return 42\n")
	stats, err := ix.Build(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Chunks)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, 4, st.Count())
}

func TestBuildLock(t *testing.T) {
	var l buildLock
	require.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire(), "second acquire must fail while held")
	l.Release()
	assert.True(t, l.TryAcquire())
}

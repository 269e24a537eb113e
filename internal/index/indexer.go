package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"time"

	"coderag/internal/chunk"
	"coderag/internal/embedder"
	"coderag/internal/parser"
	"coderag/internal/store"
	"coderag/internal/walker"
)

// ErrBuildInProgress reports a rejected concurrent build attempt.
var ErrBuildInProgress = errors.New("index build already in progress")

// Config holds the indexer configuration.
type Config struct {
	IndexPath string
	Embedder  embedder.Embedder
	Workers   int
}

// Stats reports build results.
type Stats struct {
	FilesTotal  int
	FilesParsed int
	FilesFailed int
	Chunks      int
	Elapsed     time.Duration
}

// Indexer builds the persisted index container from a codebase root.
type Indexer struct {
	cfg    Config
	parser *parser.Parser
	lock   buildLock
}

// New creates an Indexer.
func New(cfg Config) *Indexer {
	return &Indexer{
		cfg:    cfg,
		parser: parser.New(),
	}
}

// Build walks root, parses every source file, generates chunks, embeds them,
// and atomically persists the container. Per-file parse failures are logged
// and absorbed; any embedding failure aborts the build with nothing written,
// so no partial index ever replaces a previous good one.
func (ix *Indexer) Build(ctx context.Context, root string) (*Stats, error) {
	if !ix.lock.TryAcquire() {
		return nil, ErrBuildInProgress
	}
	defer ix.lock.Release()

	start := time.Now()
	stats := &Stats{}
	defer func() { stats.Elapsed = time.Since(start) }()

	files, walkErrs := walker.Walk(root)
	var parsed []parser.FileResult
	for fi := range files {
		stats.FilesTotal++

		src, err := os.ReadFile(fi.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", fi.RelPath, err)
			stats.FilesFailed++
			continue
		}

		res, err := ix.parser.ParseFile(ctx, fi.RelPath, src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", fi.RelPath, err)
			stats.FilesFailed++
			continue
		}

		parsed = append(parsed, *res)
		stats.FilesParsed++
	}
	if err := <-walkErrs; err != nil {
		return nil, err
	}

	chunks, err := chunk.Generate(parsed)
	if err != nil {
		return stats, err
	}
	stats.Chunks = len(chunks)

	vectors, err := embedder.EmbedChunks(ctx, ix.cfg.Embedder, chunks, ix.cfg.Workers)
	if err != nil {
		return stats, fmt.Errorf("embedding failed, no index written: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(ix.cfg.IndexPath), 0o755); err != nil {
		return stats, fmt.Errorf("create index directory: %w", err)
	}
	if err := store.Build(ix.cfg.IndexPath, ix.cfg.Embedder.Model(), chunks, vectors); err != nil {
		return stats, fmt.Errorf("persist index: %w", err)
	}

	return stats, nil
}

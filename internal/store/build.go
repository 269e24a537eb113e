package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"coderag/internal/chunk"
)

// Build writes a complete index container to path. The container is built in
// full at a temporary location and renamed into place, so a concurrent reader
// observes either the previous complete container or the new one, never a
// partially written pair. Any failure removes the temporary file and leaves a
// pre-existing container untouched.
func Build(path, model string, chunks []chunk.CodeChunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return fmt.Errorf("refusing to build an empty index")
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", ErrArtifactMismatch, len(chunks), len(vectors))
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := writeContainer(tmp, model, dim, chunks, vectors); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("swap index into place: %w", err)
	}
	return nil
}

func writeContainer(path, model string, dim int, chunks []chunk.CodeChunk, vectors [][]float32) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(ddl(dim)); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	chunkStmt, err := tx.Prepare(
		"INSERT INTO chunks (id, kind, name, owner, file, line, content, docstring, extra) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer chunkStmt.Close()

	vecStmt, err := tx.Prepare("INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer vecStmt.Close()

	for i, c := range chunks {
		if c.ID != i {
			return fmt.Errorf("%w: chunk at row %d has id %d", ErrArtifactMismatch, i, c.ID)
		}
		if !c.Kind.Valid() {
			return fmt.Errorf("chunk %d has unknown kind %q", c.ID, c.Kind)
		}
		if c.Content == "" {
			return fmt.Errorf("chunk %d (%s %s) has empty content", c.ID, c.Kind, c.Name)
		}

		extra := ""
		if c.Extra != nil {
			b, err := json.Marshal(c.Extra)
			if err != nil {
				return fmt.Errorf("marshal extra for chunk %d: %w", c.ID, err)
			}
			extra = string(b)
		}

		if _, err := chunkStmt.Exec(c.ID, string(c.Kind), c.Name, c.Owner, c.File, c.Line, c.Content, c.Docstring, extra); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.ID, err)
		}

		blob, err := sqlite_vec.SerializeFloat32(vectors[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for chunk %d: %w", c.ID, err)
		}
		if _, err := vecStmt.Exec(c.ID, blob); err != nil {
			return fmt.Errorf("insert embedding for chunk %d: %w", c.ID, err)
		}
	}

	manifest := map[string]string{
		metaSchemaVersion:  schemaVersion,
		metaEmbeddingModel: model,
		metaDimension:      strconv.Itoa(dim),
		metaChunkCount:     strconv.Itoa(len(chunks)),
		metaCreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range manifest {
		if _, err := tx.Exec("INSERT INTO manifest (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	return tx.Commit()
}

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"coderag/internal/chunk"
)

func init() {
	sqlite_vec.Auto()
}

var (
	// ErrArtifactMissing reports an index container that does not exist.
	ErrArtifactMissing = errors.New("index artifact missing")
	// ErrArtifactMismatch reports a container whose manifest, chunk rows, and
	// embedding rows disagree.
	ErrArtifactMismatch = errors.New("index artifact mismatch")
)

// ScoredChunk is a chunk row joined with its distance to a query vector.
type ScoredChunk struct {
	Chunk    chunk.CodeChunk
	Distance float64
}

// Store is a read-only handle on a built index container. Loading is
// all-or-nothing: a missing or internally inconsistent container fails hard,
// there is no empty fallback. A Store is safe for concurrent queries.
type Store struct {
	db    *sql.DB
	model string
	dim   int
	count int
}

// Open loads the container at path and verifies its manifest against the
// actual chunk and embedding row counts.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("stat index: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	s := &Store{db: db}
	if err := s.verify(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// verify cross-checks the manifest against both tables, so a reader never
// trusts the chunk/embedding pairing by convention alone.
func (s *Store) verify() error {
	rows, err := s.db.Query("SELECT key, value FROM manifest")
	if err != nil {
		return fmt.Errorf("%w: no manifest (%v)", ErrArtifactMismatch, err)
	}
	manifest := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return err
		}
		manifest[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if manifest[metaSchemaVersion] != schemaVersion {
		return fmt.Errorf("%w: schema version %q, want %q", ErrArtifactMismatch, manifest[metaSchemaVersion], schemaVersion)
	}

	s.model = manifest[metaEmbeddingModel]
	if s.model == "" {
		return fmt.Errorf("%w: manifest missing embedding model", ErrArtifactMismatch)
	}
	s.dim, err = strconv.Atoi(manifest[metaDimension])
	if err != nil || s.dim <= 0 {
		return fmt.Errorf("%w: bad dimension %q", ErrArtifactMismatch, manifest[metaDimension])
	}
	s.count, err = strconv.Atoi(manifest[metaChunkCount])
	if err != nil || s.count <= 0 {
		return fmt.Errorf("%w: bad chunk count %q", ErrArtifactMismatch, manifest[metaChunkCount])
	}

	var chunkRows, vecRows int
	if err := s.db.QueryRow("SELECT count(*) FROM chunks").Scan(&chunkRows); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactMismatch, err)
	}
	if err := s.db.QueryRow("SELECT count(*) FROM vec_chunks").Scan(&vecRows); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactMismatch, err)
	}
	if chunkRows != s.count || vecRows != s.count {
		return fmt.Errorf("%w: manifest says %d chunks, found %d chunk rows and %d embeddings",
			ErrArtifactMismatch, s.count, chunkRows, vecRows)
	}

	// IDs must be dense 0..N-1 so a chunk's id equals its embedding row.
	var minID, maxID int
	if err := s.db.QueryRow("SELECT MIN(id), MAX(id) FROM chunks").Scan(&minID, &maxID); err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactMismatch, err)
	}
	if minID != 0 || maxID != s.count-1 {
		return fmt.Errorf("%w: chunk ids span [%d,%d], want [0,%d]", ErrArtifactMismatch, minID, maxID, s.count-1)
	}

	return nil
}

// Model returns the embedding model recorded at build time.
func (s *Store) Model() string { return s.model }

// Dimension returns the embedding dimension recorded at build time.
func (s *Store) Dimension() int { return s.dim }

// Count returns the number of chunks in the index.
func (s *Store) Count() int { return s.count }

// Search returns the k chunks nearest to the query vector, ascending by
// distance, via an exhaustive scan of the stored embeddings. Distances are
// Euclidean (L2), not squared; ranking is the same but magnitudes differ.
// The KNN runs in a subquery because vec0 requires the k constraint on the
// virtual table itself, not through a join.
func (s *Store) Search(queryVec []float32, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	blob, err := sqlite_vec.SerializeFloat32(queryVec)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT v.chunk_id, v.distance,
		       c.kind, c.name, c.owner, c.file, c.line, c.content, c.docstring, c.extra
		FROM (
			SELECT chunk_id, distance
			FROM vec_chunks
			WHERE embedding MATCH ? AND k = ?
		) v
		JOIN chunks c ON c.id = v.chunk_id
		ORDER BY v.distance
	`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []ScoredChunk
	for rows.Next() {
		var r ScoredChunk
		var kind, extra string
		err := rows.Scan(
			&r.Chunk.ID, &r.Distance,
			&kind, &r.Chunk.Name, &r.Chunk.Owner, &r.Chunk.File, &r.Chunk.Line,
			&r.Chunk.Content, &r.Chunk.Docstring, &extra,
		)
		if err != nil {
			return nil, err
		}
		r.Chunk.Kind = chunk.Kind(kind)
		if extra != "" {
			var detail chunk.ClassDetail
			if err := json.Unmarshal([]byte(extra), &detail); err == nil {
				r.Chunk.Extra = &detail
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

package store

import "fmt"

const schemaVersion = "1"

// Manifest keys. The manifest is written last and verified on every open, so
// a reader can detect a mismatched or truncated container cheaply.
const (
	metaSchemaVersion  = "schema_version"
	metaEmbeddingModel = "embedding_model"
	metaDimension      = "dimension"
	metaChunkCount     = "chunk_count"
	metaCreatedAt      = "created_at"
)

// ddl builds the container schema. The vec0 dimension is fixed per index, so
// the DDL is generated at build time from the embedder's dimension.
func ddl(dim int) string {
	return fmt.Sprintf(`
PRAGMA journal_mode=WAL;

CREATE TABLE chunks (
    id        INTEGER PRIMARY KEY,
    kind      TEXT NOT NULL,
    name      TEXT NOT NULL,
    owner     TEXT NOT NULL DEFAULT '',
    file      TEXT NOT NULL,
    line      INTEGER NOT NULL,
    content   TEXT NOT NULL,
    docstring TEXT NOT NULL DEFAULT '',
    extra     TEXT NOT NULL DEFAULT ''
);

CREATE VIRTUAL TABLE vec_chunks USING vec0(
    chunk_id INTEGER PRIMARY KEY,
    embedding float[%d]
);

CREATE TABLE manifest (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`, dim)
}

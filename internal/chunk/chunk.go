package chunk

// Kind discriminates the chunk variants.
type Kind string

const (
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindFunction Kind = "function"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindClass, KindMethod, KindFunction:
		return true
	}
	return false
}

// ClassDetail is the kind-specific payload carried only by class chunks.
type ClassDetail struct {
	NumMethods int `json:"num_methods"`
}

// CodeChunk is the unit of retrieval. IDs are dense and assigned in emission
// order; a chunk's ID always equals its row in the embedding matrix.
type CodeChunk struct {
	ID        int          `json:"id"`
	Kind      Kind         `json:"kind"`
	Name      string       `json:"name"`
	Owner     string       `json:"owner,omitempty"` // enclosing class; methods only
	File      string       `json:"file"`
	Line      int          `json:"line"`
	Content   string       `json:"content"`
	Docstring string       `json:"docstring"`
	Extra     *ClassDetail `json:"extra,omitempty"` // classes only
}

// EmbedText is the exact text sent to the embedding provider for this chunk.
// The same transform must be applied to queries at retrieval time.
func (c CodeChunk) EmbedText() string {
	if c.Docstring != "" {
		return c.Docstring + "\n\n" + c.Content
	}
	return c.Content
}

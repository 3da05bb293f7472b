package ragdrive

import (
	"time"

	"github.com/teilomillet/ragdrive/rag"
)

// Vector is an embedding vector.
type Vector = rag.Vector

// Record is one id-addressed entry in a vector index.
type Record = rag.Record

// Match is one query result with its similarity score.
type Match = rag.Match

// IndexStats summarises the index contents.
type IndexStats = rag.Stats

// VectorIndex is a similarity index over embedding vectors. Upserting
// an existing id overwrites its entry rather than duplicating it.
type VectorIndex = rag.VectorIndex

// VectorIndexOption configures the index factory.
type VectorIndexOption func(*rag.Config)

// WithType selects the backend: "milvus", "chromem" or "memory".
func WithType(indexType string) VectorIndexOption {
	return func(c *rag.Config) {
		c.Type = indexType
	}
}

// WithAddress sets where the backend lives: a host:port for milvus, a
// directory path for persistent chromem.
func WithAddress(address string) VectorIndexOption {
	return func(c *rag.Config) {
		c.Address = address
	}
}

// WithCollection names the collection records are stored in.
func WithCollection(collection string) VectorIndexOption {
	return func(c *rag.Config) {
		c.Collection = collection
	}
}

// WithDimension sets the embedding dimension the index expects.
func WithDimension(dimension int) VectorIndexOption {
	return func(c *rag.Config) {
		c.Dimension = dimension
	}
}

// WithTimeout bounds backend operations.
func WithTimeout(timeout time.Duration) VectorIndexOption {
	return func(c *rag.Config) {
		c.Timeout = timeout
	}
}

// NewVectorIndex creates a vector index backend from the given options.
// With no options it returns an in-memory index with 1536 dimensions.
func NewVectorIndex(opts ...VectorIndexOption) (VectorIndex, error) {
	cfg := &rag.Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return rag.NewVectorIndex(cfg)
}

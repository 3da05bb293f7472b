package rag

import (
	"context"
	"fmt"
	"time"
)

// Vector is a fixed-dimension embedding.
type Vector []float64

// Metadata travels with every stored vector and comes back on query.
// Every record carries at least "name" and "source".
type Metadata map[string]interface{}

// Record is the unit persisted in a vector index: the id is either a chunk
// id or a raw URL for un-chunked web pages.
type Record struct {
	ID       string
	Vector   Vector
	Metadata Metadata
}

// Match is a single nearest-neighbor result.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Stats reports aggregate index state.
type Stats struct {
	TotalCount int64
}

// VectorIndex stores (id, vector, metadata) triples. Upsert is idempotent
// by id: re-writing an id overwrites rather than duplicates. Query returns
// matches in descending similarity order under the cosine metric.
type VectorIndex interface {
	Connect(ctx context.Context) error
	Close() error
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector Vector, topK int, includeMetadata bool) ([]Match, error)
	Stats(ctx context.Context) (Stats, error)
}

// Config selects and parameterizes a vector index backend.
type Config struct {
	Type       string // "milvus", "chromem" or "memory"
	Address    string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

func (c *Config) withDefaults() *Config {
	if c.Collection == "" {
		c.Collection = "documents"
	}
	if c.Dimension <= 0 {
		c.Dimension = 1536
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// NewVectorIndex creates a backend for the given configuration.
func NewVectorIndex(cfg *Config) (VectorIndex, error) {
	cfg = cfg.withDefaults()
	switch cfg.Type {
	case "milvus":
		return newMilvusIndex(cfg)
	case "chromem":
		return newChromemIndex(cfg)
	case "memory", "":
		return newMemoryIndex(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported vector index type %q", ErrInvalidConfiguration, cfg.Type)
	}
}

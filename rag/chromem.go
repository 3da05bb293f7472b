package rag

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemIndex implements VectorIndex on chromem-go, an embedded
// pure-Go vector store. With an empty Address the data lives in memory;
// with an Address it persists to that directory.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	cfg        *Config
}

func newChromemIndex(cfg *Config) (*ChromemIndex, error) {
	return &ChromemIndex{cfg: cfg}, nil
}

func (c *ChromemIndex) Connect(ctx context.Context) error {
	var (
		db  *chromem.DB
		err error
	)
	if c.cfg.Address != "" {
		db, err = chromem.NewPersistentDB(c.cfg.Address, false)
		if err != nil {
			return fmt.Errorf("failed to open persistent store: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	c.db = db

	// Embeddings are always supplied by the caller, so the collection's
	// embedding func must never run.
	col, err := db.GetOrCreateCollection(c.cfg.Collection, nil, func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("embeddings must be provided explicitly")
	})
	if err != nil {
		return fmt.Errorf("failed to open collection: %w", err)
	}
	c.collection = col
	return nil
}

func (c *ChromemIndex) Close() error {
	return nil
}

// Upsert adds documents by id. chromem replaces an existing document with
// the same id, which gives the overwrite-not-duplicate behaviour.
func (c *ChromemIndex) Upsert(ctx context.Context, records []Record) error {
	for _, r := range records {
		meta := make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = fmt.Sprintf("%v", v)
		}
		doc := chromem.Document{
			ID:        r.ID,
			Metadata:  meta,
			Embedding: toFloat32(r.Vector),
		}
		if text, ok := r.Metadata["text"].(string); ok {
			doc.Content = text
		}
		if err := c.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to add document %s: %w", r.ID, err)
		}
	}
	return nil
}

func (c *ChromemIndex) Query(ctx context.Context, vector Vector, topK int, includeMetadata bool) ([]Match, error) {
	// chromem rejects nResults larger than the collection size.
	count := c.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := c.collection.QueryEmbedding(ctx, toFloat32(vector), topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		match := Match{
			ID:    r.ID,
			Score: float64(r.Similarity),
		}
		if includeMetadata {
			meta := make(Metadata, len(r.Metadata)+1)
			for k, v := range r.Metadata {
				meta[k] = v
			}
			if r.Content != "" {
				meta["text"] = r.Content
			}
			match.Metadata = meta
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (c *ChromemIndex) Stats(ctx context.Context) (Stats, error) {
	return Stats{TotalCount: int64(c.collection.Count())}, nil
}

package rag

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex implements VectorIndex with in-process storage. It is the
// lightweight option for tests, prototyping, and small corpora that do not
// need persistence.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[string]Record
}

func newMemoryIndex(cfg *Config) (*MemoryIndex, error) {
	return &MemoryIndex{
		records: make(map[string]Record),
	}, nil
}

// Connect is a no-op for the in-memory index.
func (m *MemoryIndex) Connect(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory index.
func (m *MemoryIndex) Close() error {
	return nil
}

// Upsert inserts or replaces records by id. Last writer wins.
func (m *MemoryIndex) Upsert(ctx context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

// Query scans all records, scores them by cosine similarity against the
// query vector, and returns the topK best in descending score order.
func (m *MemoryIndex) Query(ctx context.Context, vector Vector, topK int, includeMetadata bool) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.records))
	for id, r := range m.records {
		match := Match{
			ID:    id,
			Score: cosineSimilarity(vector, r.Vector),
		}
		if includeMetadata {
			match.Metadata = r.Metadata
		}
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// Stats returns the number of stored records.
func (m *MemoryIndex) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{TotalCount: int64(len(m.records))}, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector is zero-length or the dimensions disagree.
func cosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

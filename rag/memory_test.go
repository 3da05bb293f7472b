package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	idx, err := newMemoryIndex(&Config{})
	require.NoError(t, err)
	require.NoError(t, idx.Connect(context.Background()))
	return idx
}

func TestMemoryIndexUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	idx := newTestMemoryIndex(t)

	require.NoError(t, idx.Upsert(ctx, []Record{
		{ID: "a", Vector: Vector{1, 0}, Metadata: Metadata{"name": "old"}},
	}))
	require.NoError(t, idx.Upsert(ctx, []Record{
		{ID: "a", Vector: Vector{0, 1}, Metadata: Metadata{"name": "new"}},
	}))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCount)

	matches, err := idx.Query(ctx, Vector{0, 1}, 1, true)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "new", matches[0].Metadata["name"])
}

func TestMemoryIndexQueryOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := newTestMemoryIndex(t)

	require.NoError(t, idx.Upsert(ctx, []Record{
		{ID: "orthogonal", Vector: Vector{0, 1}},
		{ID: "aligned", Vector: Vector{1, 0}},
		{ID: "diagonal", Vector: Vector{1, 1}},
	}))

	matches, err := idx.Query(ctx, Vector{1, 0}, 3, false)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "aligned", matches[0].ID)
	assert.Equal(t, "diagonal", matches[1].ID)
	assert.Equal(t, "orthogonal", matches[2].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.Greater(t, matches[1].Score, matches[2].Score)
}

func TestMemoryIndexQueryTruncatesToTopK(t *testing.T) {
	ctx := context.Background()
	idx := newTestMemoryIndex(t)

	records := make([]Record, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, Record{
			ID:     ChunkID("doc", i),
			Vector: Vector{float64(i + 1), 1},
		})
	}
	require.NoError(t, idx.Upsert(ctx, records))

	matches, err := idx.Query(ctx, Vector{1, 0}, 3, false)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestMemoryIndexQueryEmpty(t *testing.T) {
	idx := newTestMemoryIndex(t)

	matches, err := idx.Query(context.Background(), Vector{1, 0}, 5, false)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{1, 2, 3}, Vector{1, 2, 3}, 1},
		{"opposite", Vector{1, 0}, Vector{-1, 0}, -1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"dimension mismatch", Vector{1, 0}, Vector{1, 0, 0}, 0},
		{"zero vector", Vector{0, 0}, Vector{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNewVectorIndexFactory(t *testing.T) {
	idx, err := NewVectorIndex(&Config{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryIndex{}, idx)

	idx, err = NewVectorIndex(&Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryIndex{}, idx)

	_, err = NewVectorIndex(&Config{Type: "pinecone"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewVectorIndex(&Config{Type: "milvus"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

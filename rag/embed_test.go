package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedderRequiresProvider(t *testing.T) {
	_, err := NewEmbedder()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	_, err := NewEmbedder(SetProvider("does-not-exist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestNewEmbedderOpenAIRequiresAPIKey(t *testing.T) {
	_, err := NewEmbedder(SetProvider("openai"))
	require.Error(t, err)
}

type stubEmbedder struct {
	fail bool
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if s.fail {
		return nil, errors.New("boom")
	}
	return []float64{1, 2, 3}, nil
}

func (s *stubEmbedder) GetDimension() (int, error) {
	return 3, nil
}

func TestEmbeddingServiceWrapsFailures(t *testing.T) {
	svc := NewEmbeddingService(&stubEmbedder{fail: true})

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbeddingServiceEmbedChunk(t *testing.T) {
	svc := NewEmbeddingService(&stubEmbedder{})

	chunk := Chunk{
		ID:        ChunkID("F1", 0),
		SourceID:  "F1",
		Ordinal:   0,
		Text:      "some text",
		TokenSize: 2,
	}

	embedded, err := svc.EmbedChunk(context.Background(), chunk, map[string]interface{}{
		"name":   "file.pdf",
		"source": "drive",
	})
	require.NoError(t, err)

	assert.Equal(t, "F1_chunk_0", embedded.ID)
	assert.Equal(t, []float64{1, 2, 3}, embedded.Embedding)
	assert.Equal(t, "F1", embedded.Metadata["source_id"])
	assert.Equal(t, 0, embedded.Metadata["ordinal"])
	assert.Equal(t, "drive", embedded.Metadata["source"])

	dim, err := svc.Dimension()
	require.NoError(t, err)
	assert.Equal(t, 3, dim)
}

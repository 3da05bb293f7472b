package rag

import (
	"context"
	"fmt"

	"github.com/teilomillet/ragdrive/rag/providers"
)

// EmbedderConfig holds the configuration for creating an Embedder
type EmbedderConfig struct {
	Provider string
	Options  map[string]interface{}
}

// EmbedderOption is a function type for configuring the EmbedderConfig
type EmbedderOption func(*EmbedderConfig)

// SetProvider sets the provider for the Embedder
func SetProvider(provider string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Provider = provider
	}
}

// SetModel sets the model for the Embedder
func SetModel(model string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options["model"] = model
	}
}

// SetAPIKey sets the API key for the Embedder
func SetAPIKey(apiKey string) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options["api_key"] = apiKey
	}
}

// SetOption sets a custom option for the Embedder
func SetOption(key string, value interface{}) EmbedderOption {
	return func(c *EmbedderConfig) {
		c.Options[key] = value
	}
}

// NewEmbedder creates a new Embedder instance based on the provided options
func NewEmbedder(opts ...EmbedderOption) (providers.Embedder, error) {
	config := &EmbedderConfig{
		Options: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.Provider == "" {
		return nil, fmt.Errorf("%w: embedding provider must be specified", ErrInvalidConfiguration)
	}
	factory, err := providers.GetEmbedderFactory(config.Provider)
	if err != nil {
		return nil, err
	}
	return factory(config.Options)
}

// EmbeddedChunk is a chunk of text together with its embedding and the
// metadata that accompanies it into the vector index.
type EmbeddedChunk struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Embedding []float64              `json:"embedding"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// EmbeddingService embeds chunks one at a time so that a single failed
// chunk never poisons its neighbours.
type EmbeddingService struct {
	embedder providers.Embedder
}

// NewEmbeddingService creates a new embedding service with a single embedder
func NewEmbeddingService(embedder providers.Embedder) *EmbeddingService {
	return &EmbeddingService{embedder: embedder}
}

// Embed returns the vector for a single piece of text. Failures are
// wrapped in ErrEmbeddingFailed so callers can decide to skip the item.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float64, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	return embedding, nil
}

// EmbedChunk embeds one chunk and attaches its index metadata.
func (s *EmbeddingService) EmbedChunk(ctx context.Context, chunk Chunk, metadata map[string]interface{}) (EmbeddedChunk, error) {
	GlobalLogger.Debug("embedding chunk", "id", chunk.ID, "length", len(chunk.Text))

	embedding, err := s.Embed(ctx, chunk.Text)
	if err != nil {
		return EmbeddedChunk{}, err
	}

	meta := map[string]interface{}{
		"source_id":  chunk.SourceID,
		"ordinal":    chunk.Ordinal,
		"token_size": chunk.TokenSize,
	}
	for k, v := range metadata {
		meta[k] = v
	}

	return EmbeddedChunk{
		ID:        chunk.ID,
		Text:      chunk.Text,
		Embedding: embedding,
		Metadata:  meta,
	}, nil
}

// Dimension reports the embedder's output vector size.
func (s *EmbeddingService) Dimension() (int, error) {
	return s.embedder.GetDimension()
}

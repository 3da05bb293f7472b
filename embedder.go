package ragdrive

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/teilomillet/ragdrive/rag"
	"github.com/teilomillet/ragdrive/rag/providers"
)

// EmbeddedChunk represents a chunk of text with its embedding and the
// metadata stored alongside it in the vector index.
type EmbeddedChunk = rag.EmbeddedChunk

// EmbedderOption is a function type for configuring the Embedder.
type EmbedderOption = rag.EmbedderOption

// SetEmbedderProvider sets the provider for the Embedder, e.g. "openai".
func SetEmbedderProvider(provider string) EmbedderOption {
	return rag.SetProvider(provider)
}

// SetEmbedderModel sets the specific model to use for embedding, e.g.
// "text-embedding-ada-002".
func SetEmbedderModel(model string) EmbedderOption {
	return rag.SetModel(model)
}

// SetEmbedderAPIKey sets the authentication key for the embedding service.
func SetEmbedderAPIKey(apiKey string) EmbedderOption {
	return rag.SetAPIKey(apiKey)
}

// SetOption sets a custom provider-specific option for the Embedder.
func SetOption(key string, value interface{}) EmbedderOption {
	return rag.SetOption(key, value)
}

// Embedder interface defines the contract for embedding implementations.
type Embedder = providers.Embedder

// NewEmbedder creates a new Embedder instance based on the provided options.
func NewEmbedder(opts ...EmbedderOption) (Embedder, error) {
	return rag.NewEmbedder(opts...)
}

// RateLimitedEmbedder wraps an Embedder with a request rate limit so
// bulk indexing stays inside the provider's quota.
type RateLimitedEmbedder struct {
	embedder Embedder
	limiter  *rate.Limiter
}

// NewRateLimitedEmbedder limits embedding calls to requestsPerSecond,
// allowing bursts of up to burst requests.
func NewRateLimitedEmbedder(embedder Embedder, requestsPerSecond float64, burst int) (*RateLimitedEmbedder, error) {
	if requestsPerSecond <= 0 || burst <= 0 {
		return nil, fmt.Errorf("%w: rate limit and burst must be positive", ErrInvalidConfiguration)
	}
	return &RateLimitedEmbedder{
		embedder: embedder,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}, nil
}

// Embed waits for limiter capacity, then delegates to the wrapped
// embedder.
func (r *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}
	return r.embedder.Embed(ctx, text)
}

// GetDimension reports the wrapped embedder's output dimension.
func (r *RateLimitedEmbedder) GetDimension() (int, error) {
	return r.embedder.GetDimension()
}

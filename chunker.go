// Package ragdrive turns a shared Google Drive folder and ad hoc web
// searches into a question-answering assistant. Documents are chunked,
// embedded and upserted into a vector index; questions retrieve the
// closest chunks and hand them to a language model as context.
package ragdrive

import (
	"github.com/teilomillet/ragdrive/rag"
)

// Chunk represents a contiguous slice of a document's text, identified
// by its source and ordinal position.
type Chunk = rag.Chunk

// ChunkID returns the deterministic chunk identifier for a source and
// ordinal, e.g. "F1_chunk_0".
func ChunkID(sourceID string, ordinal int) string {
	return rag.ChunkID(sourceID, ordinal)
}

// Chunker defines the interface for text chunking implementations.
type Chunker interface {
	// Chunk splits text belonging to a source into ordered chunks.
	Chunk(sourceID, text string) []Chunk
}

// TokenCounter defines the interface for counting tokens in text.
type TokenCounter interface {
	Count(text string) int
}

// ChunkerOption is a function type for configuring Chunker instances.
type ChunkerOption = rag.TextChunkerOption

// NewChunker creates a new Chunker with the given options. By default
// it splits text into 3000-character windows with no overlap.
func NewChunker(options ...ChunkerOption) (Chunker, error) {
	return rag.NewTextChunker(options...)
}

// ChunkSize sets the maximum number of characters per chunk.
func ChunkSize(size int) ChunkerOption {
	return func(tc *rag.TextChunker) {
		tc.MaxSize = size
	}
}

// WithTokenCounter sets a custom token counter implementation.
func WithTokenCounter(counter TokenCounter) ChunkerOption {
	return func(tc *rag.TextChunker) {
		tc.TokenCounter = counter
	}
}

// NewDefaultTokenCounter creates a simple word-based token counter.
func NewDefaultTokenCounter() TokenCounter {
	return &rag.DefaultTokenCounter{}
}

// NewTikTokenCounter creates a token counter using the tiktoken library,
// matching the tokenization used by OpenAI models. The encoding
// parameter selects the tokenization model, e.g. "cl100k_base".
func NewTikTokenCounter(encoding string) (TokenCounter, error) {
	return rag.NewTikTokenCounter(encoding)
}

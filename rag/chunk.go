package rag

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunk is a contiguous slice of a document's extracted text. Concatenating
// a document's chunks in ordinal order reproduces the extracted text exactly.
type Chunk struct {
	ID        string
	SourceID  string
	Ordinal   int
	Text      string
	TokenSize int
}

// ChunkID returns the deterministic identifier for ordinal n of a source.
func ChunkID(sourceID string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", sourceID, ordinal)
}

// Chunker defines the interface for text chunking
type Chunker interface {
	Chunk(sourceID, text string) []Chunk
}

// TokenCounter defines the interface for counting tokens in a string
type TokenCounter interface {
	Count(text string) int
}

// TextChunker splits text into fixed-width character windows. The last
// chunk may be shorter; chunks never overlap.
type TextChunker struct {
	MaxSize      int // maximum characters per chunk
	TokenCounter TokenCounter
}

// TextChunkerOption is a function type for configuring TextChunker
type TextChunkerOption func(*TextChunker)

// NewTextChunker creates a new TextChunker with the given options.
// A non-positive MaxSize is rejected as ErrInvalidConfiguration.
func NewTextChunker(options ...TextChunkerOption) (*TextChunker, error) {
	tc := &TextChunker{
		MaxSize:      3000,
		TokenCounter: &DefaultTokenCounter{},
	}

	for _, option := range options {
		option(tc)
	}

	if tc.MaxSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, tc.MaxSize)
	}

	return tc, nil
}

// Chunk splits the input text into consecutive windows of at most MaxSize
// characters. The same text and size always yield the same chunks and ids.
// Empty text yields no chunks.
func (tc *TextChunker) Chunk(sourceID, text string) []Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]Chunk, 0, (len(runes)+tc.MaxSize-1)/tc.MaxSize)

	for start, n := 0, 0; start < len(runes); start, n = start+tc.MaxSize, n+1 {
		end := start + tc.MaxSize
		if end > len(runes) {
			end = len(runes)
		}
		slice := string(runes[start:end])
		chunks = append(chunks, Chunk{
			ID:        ChunkID(sourceID, n),
			SourceID:  sourceID,
			Ordinal:   n,
			Text:      slice,
			TokenSize: tc.TokenCounter.Count(slice),
		})
	}

	return chunks
}

// DefaultTokenCounter is a simple word-based token counter
type DefaultTokenCounter struct{}

func (dtc *DefaultTokenCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TikTokenCounter is a token counter that uses the tiktoken library
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a new TikTokenCounter with the specified encoding
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

func (ttc *TikTokenCounter) Count(text string) int {
	return len(ttc.tke.Encode(text, nil, nil))
}

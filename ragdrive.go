package ragdrive

import (
	"context"
	"fmt"

	"github.com/teilomillet/gollm"

	"github.com/teilomillet/ragdrive/config"
	"github.com/teilomillet/ragdrive/drive"
	"github.com/teilomillet/ragdrive/rag"
	"github.com/teilomillet/ragdrive/websearch"
)

// System bundles a fully wired indexer and assistant.
type System struct {
	Indexer   *Indexer
	Assistant *Assistant
	Index     VectorIndex
}

// New builds a complete system from configuration: embedder, language
// model, vector index, Drive store and web collector. The vector index
// is connected before returning. Sources whose credentials are missing
// are simply not attached, so a config without a SerpAPI key still
// serves Drive-only answering.
func New(ctx context.Context, cfg *config.Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	if level, err := rag.ParseLogLevel(cfg.LogLevel); err == nil {
		SetLogLevel(level)
	}

	var embedder Embedder
	embedder, err := NewEmbedder(
		SetEmbedderProvider("openai"),
		SetEmbedderModel(cfg.EmbeddingModel),
		SetEmbedderAPIKey(cfg.OpenAIAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if cfg.EmbedRPS > 0 && cfg.EmbedBurst > 0 {
		embedder, err = NewRateLimitedEmbedder(embedder, cfg.EmbedRPS, cfg.EmbedBurst)
		if err != nil {
			return nil, err
		}
	}

	llm, err := gollm.NewLLM(
		gollm.SetProvider("openai"),
		gollm.SetModel(cfg.ChatModel),
		gollm.SetAPIKey(cfg.OpenAIAPIKey),
		gollm.SetTemperature(cfg.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	index, err := NewVectorIndex(
		WithType(cfg.IndexType),
		WithAddress(cfg.IndexAddr),
		WithCollection(cfg.Collection),
		WithDimension(cfg.Dimension),
		WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}
	if err := index.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to vector index: %w", err)
	}

	chunker, err := NewChunker(ChunkSize(cfg.ChunkSize))
	if err != nil {
		return nil, err
	}

	indexerOpts := []IndexerOption{WithChunker(chunker)}

	if cfg.DriveCredentials != "" && cfg.DriveSharedFolder != "" {
		store, err := drive.NewStore(ctx, []byte(cfg.DriveCredentials), cfg.DriveSharedFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to create drive store: %w", err)
		}
		indexerOpts = append(indexerOpts, WithContentStore(store))
	}

	if cfg.SerpAPIKey != "" {
		indexerOpts = append(indexerOpts, WithWebCollector(websearch.New(cfg.SerpAPIKey)))
	}

	indexer, err := NewIndexer(embedder, index, indexerOpts...)
	if err != nil {
		return nil, err
	}

	assistant, err := NewAssistant(WrapLLM(llm), embedder, index,
		WithIndexer(indexer),
		WithTopK(cfg.TopK),
		WithSearchTopK(cfg.SearchTopK),
	)
	if err != nil {
		return nil, err
	}

	return &System{
		Indexer:   indexer,
		Assistant: assistant,
		Index:     index,
	}, nil
}

// Close releases the system's index connection.
func (s *System) Close() error {
	return s.Index.Close()
}

// Package config manages settings for the ragdrive assistant. It loads
// configuration from multiple sources with the following precedence
// (highest to lowest):
//  1. Environment variables
//  2. Configuration file (JSON)
//  3. Default values
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ErrInvalid marks configuration that can never work.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings for the assistant: API credentials, the
// Drive folder to index, chunking and retrieval parameters, and the
// vector index backend.
type Config struct {
	// Credentials for external services
	OpenAIAPIKey      string // OpenAI key for embeddings and generation
	SerpAPIKey        string // SerpAPI key for web search
	DriveCredentials  string // Google service account JSON (inline)
	DriveSharedFolder string // ID of the shared Drive folder to index

	// Model selection
	EmbeddingModel string // e.g. "text-embedding-ada-002"
	ChatModel      string // e.g. "gpt-4"
	Temperature    float64

	// Document processing
	ChunkSize int // characters per chunk

	// Retrieval
	TopK       int // snippets per answer
	SearchTopK int // web pages indexed per on-demand search

	// Embedding rate limit, requests per second against the provider
	EmbedRPS   float64
	EmbedBurst int

	// Vector index backend
	IndexType  string // "milvus", "chromem" or "memory"
	IndexAddr  string // host:port or directory, backend dependent
	Collection string
	Dimension  int

	// System settings
	Timeout  time.Duration
	LogLevel string
}

// Load reads configuration from file and environment.
//
// Configuration file search paths:
//  1. $RAGDRIVE_CONFIG environment variable
//  2. ~/.ragdrive/config.json
//  3. ~/.config/ragdrive/config.json
//  4. ./ragdrive.json
//
// Environment variable overrides:
//   - OPENAI_API_KEY / RAGDRIVE_OPENAI_API_KEY
//   - SERPAPI_API_KEY
//   - RAGDRIVE_DRIVE_CREDENTIALS
//   - RAGDRIVE_DRIVE_FOLDER
//   - RAGDRIVE_INDEX_TYPE, RAGDRIVE_INDEX_ADDR, RAGDRIVE_COLLECTION
//   - RAGDRIVE_CHUNK_SIZE, RAGDRIVE_TOP_K
//   - RAGDRIVE_LOG_LEVEL
func Load() (*Config, error) {
	cfg := &Config{
		EmbeddingModel: "text-embedding-ada-002",
		ChatModel:      "gpt-4",
		Temperature:    0.7,
		ChunkSize:      3000,
		TopK:           5,
		SearchTopK:     3,
		EmbedRPS:       5,
		EmbedBurst:     10,
		IndexType:      "memory",
		Collection:     "documents",
		Dimension:      1536,
		Timeout:        30 * time.Second,
		LogLevel:       "info",
	}

	configFile := os.Getenv("RAGDRIVE_CONFIG")
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			candidates := []string{
				filepath.Join(home, ".ragdrive", "config.json"),
				filepath.Join(home, ".config", "ragdrive", "config.json"),
				"ragdrive.json",
			}
			for _, candidate := range candidates {
				if _, err := os.Stat(candidate); err == nil {
					configFile = candidate
					break
				}
			}
		}
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, configFile, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key := os.Getenv("RAGDRIVE_OPENAI_API_KEY"); key != "" {
		cfg.OpenAIAPIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIAPIKey = key
	}
	if key := os.Getenv("SERPAPI_API_KEY"); key != "" {
		cfg.SerpAPIKey = key
	}
	if creds := os.Getenv("RAGDRIVE_DRIVE_CREDENTIALS"); creds != "" {
		cfg.DriveCredentials = creds
	}
	if folder := os.Getenv("RAGDRIVE_DRIVE_FOLDER"); folder != "" {
		cfg.DriveSharedFolder = folder
	}
	if t := os.Getenv("RAGDRIVE_INDEX_TYPE"); t != "" {
		cfg.IndexType = t
	}
	if addr := os.Getenv("RAGDRIVE_INDEX_ADDR"); addr != "" {
		cfg.IndexAddr = addr
	}
	if coll := os.Getenv("RAGDRIVE_COLLECTION"); coll != "" {
		cfg.Collection = coll
	}
	if size := os.Getenv("RAGDRIVE_CHUNK_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			cfg.ChunkSize = n
		}
	}
	if topK := os.Getenv("RAGDRIVE_TOP_K"); topK != "" {
		if n, err := strconv.Atoi(topK); err == nil {
			cfg.TopK = n
		}
	}
	if level := os.Getenv("RAGDRIVE_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}

// Validate checks that the configuration can actually run. It is called
// before any component is constructed so misconfiguration surfaces at
// startup, not mid-run.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OpenAI API key is required", ErrInvalid)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalid, c.ChunkSize)
	}
	if c.TopK <= 0 || c.SearchTopK <= 0 {
		return fmt.Errorf("%w: topK values must be positive", ErrInvalid)
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: embedding dimension must be positive, got %d", ErrInvalid, c.Dimension)
	}
	switch c.IndexType {
	case "milvus":
		if c.IndexAddr == "" {
			return fmt.Errorf("%w: milvus index requires an address", ErrInvalid)
		}
	case "chromem", "memory", "":
	default:
		return fmt.Errorf("%w: unsupported index type %q", ErrInvalid, c.IndexType)
	}
	return nil
}

// Save persists the configuration to a JSON file at the specified path,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

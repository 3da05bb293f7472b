// Package providers implements embedding service providers for ragdrive.
// Each provider converts text into vector representations that capture
// semantic meaning. The registration system allows new providers to be
// added while keeping a consistent interface for the rest of the system.
package providers

import (
	"context"
	"fmt"
	"sync"
)

// Embedder interface defines the contract for embedding implementations
type Embedder interface {
	// Embed generates embeddings for the given text
	Embed(ctx context.Context, text string) ([]float64, error)

	// GetDimension returns the dimension of the embeddings for the current model
	GetDimension() (int, error)
}

// EmbedderFactory is a function type that creates a new Embedder
type EmbedderFactory func(config map[string]interface{}) (Embedder, error)

var (
	embedderFactories = make(map[string]EmbedderFactory)
	mu                sync.RWMutex
)

// RegisterEmbedder registers a new embedder factory
func RegisterEmbedder(name string, factory EmbedderFactory) {
	mu.Lock()
	defer mu.Unlock()
	embedderFactories[name] = factory
}

// GetEmbedderFactory returns the factory for the given embedder name
func GetEmbedderFactory(name string) (EmbedderFactory, error) {
	mu.RLock()
	defer mu.RUnlock()
	factory, ok := embedderFactories[name]
	if !ok {
		return nil, fmt.Errorf("embedder not found: %s", name)
	}
	return factory, nil
}

// List returns the names of all registered embedder providers.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(embedderFactories))
	for name := range embedderFactories {
		names = append(names, name)
	}
	return names
}

// Package semantic provides an LLM cache that matches prompts by embedding
// similarity rather than exact equality, backed by a vector store.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/vendly/cache"
	"github.com/viant/vendly/embeddings"
	"github.com/viant/vendly/llms"
	"github.com/viant/vendly/schema"
	"github.com/viant/vendly/vectordb"
	"github.com/viant/vendly/vectorstores"
)

const (
	defaultThreshold = 0.8
	generationsKey   = "generations"
)

// Option configures the semantic cache.
type Option func(*Cache)

// WithScoreThreshold sets the minimum similarity score for a hit.
func WithScoreThreshold(threshold float32) Option {
	return func(c *Cache) { c.threshold = threshold }
}

// Cache is a cache.LLMCache that stores prompt embeddings in a vector store.
// Entries are namespaced per llm identity string, so similar prompts only
// match within the same model configuration.
type Cache struct {
	store     vectordb.VectorStore
	embedder  embeddings.Embedder
	threshold float32
}

// New creates a semantic cache over a vector store and embedder.
func New(store vectordb.VectorStore, embedder embeddings.Embedder, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("semantic: vector store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("semantic: embedder is required")
	}
	c := &Cache{store: store, embedder: embedder, threshold: defaultThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup returns generations cached under a prompt similar enough to the
// given one, or nil when nothing clears the score threshold.
func (c *Cache) Lookup(ctx context.Context, prompt, llmString string) ([]llms.Generation, error) {
	namespace, err := namespaceFor(llmString)
	if err != nil {
		return nil, err
	}
	docs, err := c.store.SimilaritySearch(ctx, prompt, 1,
		vectorstores.WithEmbedder(c.embedder), vectorstores.WithNameSpace(namespace))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 || docs[0].Score < c.threshold {
		return nil, nil
	}
	encoded, ok := docs[0].Metadata[generationsKey].(string)
	if !ok {
		return nil, fmt.Errorf("semantic: entry %v has no generations", docs[0].Metadata["id"])
	}
	var generations []llms.Generation
	if err := json.Unmarshal([]byte(encoded), &generations); err != nil {
		return nil, fmt.Errorf("semantic: decode entry: %w", err)
	}
	return generations, nil
}

// Update stores generations under the prompt's embedding.
func (c *Cache) Update(ctx context.Context, prompt, llmString string, generations []llms.Generation) error {
	namespace, err := namespaceFor(llmString)
	if err != nil {
		return err
	}
	id, err := cache.Key(prompt, llmString)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(generations)
	if err != nil {
		return fmt.Errorf("semantic: encode entry: %w", err)
	}
	doc := schema.Document{
		PageContent: prompt,
		Metadata: map[string]interface{}{
			"id":           id,
			generationsKey: string(encoded),
		},
	}
	_, err = c.store.AddDocuments(ctx, []schema.Document{doc},
		vectorstores.WithEmbedder(c.embedder), vectorstores.WithNameSpace(namespace))
	return err
}

// Clear removes every entry across all llm identity namespaces.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx, "")
}

func namespaceFor(llmString string) (string, error) {
	key, err := cache.Key(llmString, "namespace")
	if err != nil {
		return "", err
	}
	return "llm_" + key, nil
}

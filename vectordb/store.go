package vectordb

import (
	"context"

	"github.com/viant/vendly/schema"
	"github.com/viant/vendly/vectorstores"
)

// VectorStore defines saving and querying documents using vector embeddings.
type VectorStore interface {
	AddDocuments(ctx context.Context, docs []schema.Document, opts ...vectorstores.Option) ([]string, error)
	SimilaritySearch(ctx context.Context, query string, numDocuments int, opts ...vectorstores.Option) ([]schema.Document, error)
	Remove(ctx context.Context, id string, opts ...vectorstores.Option) error
	// Clear removes every document in the namespace; an empty namespace
	// clears the whole store.
	Clear(ctx context.Context, namespace string) error
}

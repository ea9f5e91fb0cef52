package embeddings

import "context"

// Embedder is a minimal interface for computing vector embeddings
// for documents and queries.
type Embedder interface {
	EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// InputType tells the remote service whether a text is embedded as a stored
// document or as a search query. Some providers use distinct internal
// representations for each.
type InputType string

const (
	// Document marks texts embedded for storage.
	Document InputType = "document"
	// Query marks texts embedded for search.
	Query InputType = "query"
)

// BatchClient is the remote embedding service contract. One call embeds up
// to the provider's per-request limit of texts and returns one vector per
// text, in input order.
type BatchClient interface {
	Embed(ctx context.Context, texts []string, inputType InputType) ([][]float32, error)
}

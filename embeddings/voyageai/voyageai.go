package voyageai

import (
	"context"

	"github.com/viant/vendly/embeddings"
)

// fallbackBatchSize applies to models absent from the batch size table.
const fallbackBatchSize = 7

// DefaultBatchSizes maps known high-capacity model variants to their default
// per-request batch size. Callers with newer models supply their own table
// via WithBatchSizeTable instead of waiting for this one to catch up.
var DefaultBatchSizes = map[string]int{
	"voyage-2":  72,
	"voyage-02": 72,
}

// DefaultBatchSize returns the per-request batch size for model, consulting
// table when non-nil and the package defaults otherwise.
func DefaultBatchSize(model string, table map[string]int) int {
	if table == nil {
		table = DefaultBatchSizes
	}
	if size, ok := table[model]; ok && size > 0 {
		return size
	}
	return fallbackBatchSize
}

// Option configures the VoyageAI embedder.
type Option func(*options)

type options struct {
	batchSize    int
	batchSizes   map[string]int
	progress     embeddings.ProgressFunc
	showProgress bool
	clientOpts   []ClientOption
}

// WithBatchSize fixes the per-request batch size, bypassing the model table.
func WithBatchSize(size int) Option {
	return func(o *options) { o.batchSize = size }
}

// WithBatchSizeTable overrides the model to batch size table used to pick
// the default batch size.
func WithBatchSizeTable(table map[string]int) Option {
	return func(o *options) { o.batchSizes = table }
}

// WithProgress installs a per-chunk progress renderer.
func WithProgress(fn embeddings.ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
		o.showProgress = fn != nil
	}
}

// WithShowProgress requests progress reporting; a renderer must also be
// installed with WithProgress.
func WithShowProgress(show bool) Option {
	return func(o *options) { o.showProgress = show }
}

// WithClientOptions forwards options to the underlying HTTP client.
func WithClientOptions(opts ...ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// Embedder bridges the VoyageAI client to the embeddings.Embedder interface,
// batching requests to respect the per-request input limit.
type Embedder struct {
	client  *Client
	batcher *embeddings.Batcher
}

// New creates a VoyageAI embedder for the given model. The API key falls
// back to VOYAGE_API_KEY when empty.
func New(apiKey, model string, opts ...Option) (*Embedder, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	client, err := NewClient(apiKey, model, o.clientOpts...)
	if err != nil {
		return nil, err
	}
	size := o.batchSize
	if size == 0 {
		size = DefaultBatchSize(model, o.batchSizes)
	}
	batcherOpts := []embeddings.BatcherOption{embeddings.WithBatchSize(size)}
	if o.progress != nil {
		batcherOpts = append(batcherOpts, embeddings.WithProgress(o.progress))
	}
	if o.showProgress {
		batcherOpts = append(batcherOpts, embeddings.WithShowProgress(true))
	}
	batcher, err := embeddings.NewBatcher(client, batcherOpts...)
	if err != nil {
		return nil, err
	}
	return &Embedder{client: client, batcher: batcher}, nil
}

// BatchSize returns the effective per-request batch size.
func (e *Embedder) BatchSize() int { return e.batcher.BatchSize() }

// EmbedDocuments embeds documents, issuing one remote call per batch.
func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	return e.batcher.EmbedDocuments(ctx, docs)
}

// EmbedQuery embeds a single query text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.batcher.EmbedQuery(ctx, text)
}

// EmbedDocumentsAsync embeds documents on a background goroutine; chunk
// dispatch stays sequential.
func (e *Embedder) EmbedDocumentsAsync(ctx context.Context, docs []string) <-chan embeddings.BatchResult {
	return e.batcher.EmbedDocumentsAsync(ctx, docs)
}

package embeddings

import (
	"context"
	"errors"
	"fmt"
)

const defaultBatchSize = 64

// ErrProgressUnavailable is returned when progress reporting was requested
// but no renderer has been installed.
var ErrProgressUnavailable = errors.New("embeddings: progress requested but no renderer installed")

// ProgressFunc is notified once per completed chunk with the number of
// completed chunks and the total chunk count. It must not affect results.
type ProgressFunc func(done, total int)

// BatchResult carries the outcome of an asynchronous embed call.
type BatchResult struct {
	Vectors [][]float32
	Err     error
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher)

// WithBatchSize sets the maximum number of texts submitted per remote call.
func WithBatchSize(size int) BatcherOption {
	return func(b *Batcher) { b.batchSize = size }
}

// WithProgress installs a per-chunk progress renderer and enables reporting.
func WithProgress(fn ProgressFunc) BatcherOption {
	return func(b *Batcher) {
		b.progress = fn
		b.showProgress = fn != nil
	}
}

// WithShowProgress requests per-chunk progress reporting. A renderer must
// also be installed with WithProgress, otherwise embed calls fail with
// ErrProgressUnavailable.
func WithShowProgress(show bool) BatcherOption {
	return func(b *Batcher) { b.showProgress = show }
}

// Batcher presents one logical "embed N texts" operation over a remote
// service with a per-request batch size limit. It partitions input into
// contiguous chunks, issues one remote call per chunk in order and
// concatenates the per-chunk vectors so that result[i] corresponds to
// texts[i]. Configuration is immutable after construction; concurrent calls
// share no mutable state.
type Batcher struct {
	client       BatchClient
	batchSize    int
	showProgress bool
	progress     ProgressFunc
}

// NewBatcher creates a Batcher over the supplied remote client.
func NewBatcher(client BatchClient, opts ...BatcherOption) (*Batcher, error) {
	if client == nil {
		return nil, fmt.Errorf("embeddings: batch client is required")
	}
	b := &Batcher{client: client, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(b)
	}
	if b.batchSize <= 0 {
		return nil, fmt.Errorf("embeddings: batch size must be positive, got %d", b.batchSize)
	}
	return b, nil
}

// BatchSize returns the configured per-request limit.
func (b *Batcher) BatchSize() int { return b.batchSize }

// EmbedDocuments embeds texts in input order, one remote call per chunk of
// at most the configured batch size. A failing chunk fails the whole call
// and no partial results are returned.
func (b *Batcher) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return b.embed(ctx, texts, Document)
}

// EmbedQuery embeds a single query text.
func (b *Batcher) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := b.embed(ctx, []string{text}, Query)
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embeddings: got %d vectors for 1 query", len(vecs))
	}
	return vecs[0], nil
}

// EmbedDocumentsAsync runs EmbedDocuments in its own goroutine and delivers
// the outcome on the returned channel. Chunk dispatch stays strictly
// sequential: chunk k+1 is not issued before chunk k's call returned.
func (b *Batcher) EmbedDocumentsAsync(ctx context.Context, texts []string) <-chan BatchResult {
	out := make(chan BatchResult, 1)
	go func() {
		defer close(out)
		vecs, err := b.embed(ctx, texts, Document)
		out <- BatchResult{Vectors: vecs, Err: err}
	}()
	return out
}

func (b *Batcher) embed(ctx context.Context, texts []string, inputType InputType) ([][]float32, error) {
	if b.showProgress && b.progress == nil {
		return nil, ErrProgressUnavailable
	}
	total := (len(texts) + b.batchSize - 1) / b.batchSize
	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += b.batchSize {
		end := i + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		chunk := texts[i:end]
		vecs, err := b.client.Embed(ctx, chunk, inputType)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(chunk) {
			return nil, fmt.Errorf("embeddings: service returned %d vectors for %d texts", len(vecs), len(chunk))
		}
		out = append(out, vecs...)
		if b.showProgress {
			b.progress(i/b.batchSize+1, total)
		}
	}
	return out, nil
}

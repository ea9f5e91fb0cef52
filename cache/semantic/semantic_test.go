package semantic

import (
	"context"
	"reflect"
	"testing"

	"github.com/viant/vendly/llms"
	"github.com/viant/vendly/vectordb/sqlitevec"
)

// constantEmbedder maps every text to the same vector, so any prompt is a
// perfect match for any other.
type constantEmbedder struct{}

func (constantEmbedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i := range out {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

func (constantEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	store, err := sqlitevec.NewStore(sqlitevec.WithDSN(t.TempDir() + "/cache.sqlite"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	c, err := New(store, constantEmbedder{})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return c
}

func TestCache_SimilarPromptHits(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	want := []llms.Generation{{Text: "fizz"}, {Text: "Buzz"}}
	if err := c.Update(ctx, "foo", "model-a", want); err != nil {
		t.Fatalf("update: %v", err)
	}

	// foo and bar share an embedding under the constant embedder.
	got, err := c.Lookup(ctx, "bar", "model-a")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCache_LLMStringIsolation(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Update(ctx, "foo", "model-a", []llms.Generation{{Text: "fizz"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := c.Lookup(ctx, "foo", "model-b")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss for different llm string, got %v", got)
	}
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Update(ctx, "foo", "model-a", []llms.Generation{{Text: "fizz"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err := c.Lookup(ctx, "bar", "model-a")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss after clear, got %v", got)
	}
}

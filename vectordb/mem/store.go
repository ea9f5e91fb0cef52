// Package mem provides an in-process vector store with optional binary
// snapshot persistence. It suits tests and single-process caches that do
// not warrant a SQLite database.
package mem

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/minio/highwayhash"
	"github.com/viant/vendly/schema"
	"github.com/viant/vendly/vectorstores"
)

const defaultNamespace = "default"

var hashKey = []byte("vendly.vectordb.mem.v1.hash.key!")

type record struct {
	id        string
	embedding []float32
	doc       schema.Document
}

type set struct {
	records []record
}

// Option configures the store.
type Option func(*Store)

// WithSnapshotPath enables Persist and initial load from the given file.
func WithSnapshotPath(path string) Option {
	return func(s *Store) { s.path = path }
}

// Store keeps documents and their embeddings in memory, partitioned by
// namespace. All methods are safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	sets map[string]*set
	path string
}

// NewStore creates a store, loading a prior snapshot when a snapshot path
// is configured and the file exists.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{sets: map[string]*set{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.path != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddDocuments embeds and stores documents, returning their ids. A document
// with an id already present in the namespace is replaced.
func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document, opts ...vectorstores.Option) ([]string, error) {
	options := applyOptions(opts)
	if options.Embedder == nil {
		return nil, fmt.Errorf("mem: embedder is required")
	}
	if len(docs) == 0 {
		return nil, nil
	}
	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].PageContent
	}
	// The embedder owns request batching.
	vectors, err := options.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("mem: embedder returned %d vectors, expected %d", len(vectors), len(docs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.set(namespace(options))
	ids := make([]string, len(docs))
	for i, doc := range docs {
		id := doc.ID()
		if id == "" {
			id = contentID(doc.PageContent)
		}
		ids[i] = id
		target.upsert(record{id: id, embedding: vectors[i], doc: doc})
	}
	return ids, nil
}

// SimilaritySearch returns up to numDocuments entries ranked by cosine
// similarity to the query, scores populated.
func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, opts ...vectorstores.Option) ([]schema.Document, error) {
	options := applyOptions(opts)
	if options.Embedder == nil {
		return nil, fmt.Errorf("mem: embedder is required")
	}
	vector, err := options.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	target, ok := s.sets[namespace(options)]
	if !ok {
		return nil, nil
	}
	scored := make([]schema.Document, 0, len(target.records))
	for _, rec := range target.records {
		doc := rec.doc
		doc.Score = cosine(vector, rec.embedding)
		scored = append(scored, doc)
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if numDocuments > 0 && len(scored) > numDocuments {
		scored = scored[:numDocuments]
	}
	return scored, nil
}

// Remove deletes the document with the given id from the namespace.
func (s *Store) Remove(ctx context.Context, id string, opts ...vectorstores.Option) error {
	options := applyOptions(opts)
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.sets[namespace(options)]
	if !ok {
		return nil
	}
	target.remove(id)
	return nil
}

// Clear removes every document in the namespace; an empty namespace clears
// the whole store.
func (s *Store) Clear(ctx context.Context, ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns == "" {
		s.sets = map[string]*set{}
		return nil
	}
	delete(s.sets, ns)
	return nil
}

func (s *Store) set(name string) *set {
	target, ok := s.sets[name]
	if !ok {
		target = &set{}
		s.sets[name] = target
	}
	return target
}

func (t *set) upsert(rec record) {
	for i := range t.records {
		if t.records[i].id == rec.id {
			t.records[i] = rec
			return
		}
	}
	t.records = append(t.records, rec)
}

func (t *set) remove(id string) {
	for i := range t.records {
		if t.records[i].id == id {
			t.records = append(t.records[:i], t.records[i+1:]...)
			return
		}
	}
}

func applyOptions(opts []vectorstores.Option) vectorstores.Options {
	options := vectorstores.Options{}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func namespace(options vectorstores.Options) string {
	if options.NameSpace == "" {
		return defaultNamespace
	}
	return options.NameSpace
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func contentID(content string) string {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return content
	}
	_, _ = h.Write([]byte(content))
	return fmt.Sprintf("%016x", h.Sum64())
}

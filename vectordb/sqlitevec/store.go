package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minio/highwayhash"
	"github.com/viant/sqlite-vec/engine"
	"github.com/viant/sqlite-vec/vec"
	"github.com/viant/sqlite-vec/vector"
	"github.com/viant/vendly/schema"
	"github.com/viant/vendly/vectorstores"
)

const defaultNamespace = "default"

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Store is a sqlite-vec backed VectorStore.
type Store struct {
	db            *sql.DB
	dsn           string
	vtable        string
	shadow        string
	ensureSchema  bool
	embedModel    string
	openedLocally bool
}

// Option configures the sqlite-vec store.
type Option func(*Store)

// WithDB sets an existing *sql.DB to use.
func WithDB(db *sql.DB) Option {
	return func(s *Store) { s.db = db }
}

// WithDSN sets the SQLite DSN to open (e.g. /path/to/db.sqlite).
func WithDSN(dsn string) Option {
	return func(s *Store) { s.dsn = dsn }
}

// WithVTable sets the vec virtual table name (default: cache_docs).
func WithVTable(name string) Option {
	return func(s *Store) { s.vtable = name }
}

// WithEnsureSchema controls whether schema and indexes are created automatically.
func WithEnsureSchema(enabled bool) Option {
	return func(s *Store) { s.ensureSchema = enabled }
}

// WithEmbeddingModel sets the embedding_model stored with rows.
func WithEmbeddingModel(model string) Option {
	return func(s *Store) { s.embedModel = model }
}

// NewStore opens/initializes a sqlite-vec Store.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		vtable:       "cache_docs",
		ensureSchema: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.vtable == "" {
		s.vtable = "cache_docs"
	}
	s.shadow = "_vec_" + s.vtable

	if s.db == nil {
		if s.dsn == "" {
			return nil, fmt.Errorf("sqlitevec: dsn required")
		}
		db, err := engine.Open(ensurePragmas(s.dsn))
		if err != nil {
			return nil, err
		}
		s.db = db
		s.db.SetMaxOpenConns(4)
		s.db.SetMaxIdleConns(4)
		s.openedLocally = true
	}
	if err := vec.Register(s.db); err != nil {
		return nil, err
	}
	if s.ensureSchema {
		if err := s.ensureSchemaDDL(context.Background()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying DB if Store opened it.
func (s *Store) Close() error {
	if s.openedLocally && s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// AddDocuments embeds and upserts documents into the shadow table.
func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document, opts ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	options := vectorstores.Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	namespace := options.NameSpace
	if namespace == "" {
		namespace = defaultNamespace
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].PageContent
	}
	// The embedder owns request batching; one logical call embeds them all.
	vecs, err := options.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d docs", len(vecs), len(docs))
	}

	stmt, err := s.db.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s(dataset_id, id, asset_id, content, meta, embedding, embedding_model, scn, archived)
VALUES(?,?,?,?,?,?,?,0,0)
ON CONFLICT(dataset_id, id) DO UPDATE SET
	asset_id=excluded.asset_id,
	content=excluded.content,
	meta=excluded.meta,
	embedding=excluded.embedding,
	embedding_model=excluded.embedding_model,
	archived=0`, s.shadow))
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, len(docs))
	for i, doc := range docs {
		id := doc.ID()
		if id == "" {
			id = contentID(doc.PageContent)
		}
		ids[i] = id
		metaJSON, err := encodeMeta(doc.Metadata)
		if err != nil {
			return nil, err
		}
		blob, err := vector.EncodeEmbedding(vecs[i])
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, namespace, id, id, doc.PageContent, metaJSON, blob, s.embedModel); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// SimilaritySearch performs a MATCH query over the sqlite-vec virtual table.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int, opts ...vectorstores.Option) ([]schema.Document, error) {
	options := vectorstores.Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	namespace := options.NameSpace
	if namespace == "" {
		namespace = defaultNamespace
	}
	if k <= 0 {
		k = 10
	}
	qvec, err := options.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	blob, err := vector.EncodeEmbedding(qvec)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT d.id, d.content, d.meta, v.match_score
FROM %s v
JOIN %s d ON d.dataset_id = v.dataset_id AND d.id = v.doc_id
WHERE v.dataset_id = ?
  AND v.doc_id MATCH ?
  AND d.archived = 0
ORDER BY v.match_score DESC
LIMIT ?`, s.vtable, s.shadow), namespace, blob, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []schema.Document
	for rows.Next() {
		var id, content, metaJSON string
		var score float64
		if err := rows.Scan(&id, &content, &metaJSON, &score); err != nil {
			return nil, err
		}
		metaMap, err := decodeMeta(metaJSON)
		if err != nil {
			return nil, err
		}
		if _, ok := metaMap["id"]; !ok {
			metaMap["id"] = id
		}
		docs = append(docs, schema.Document{PageContent: content, Metadata: metaMap, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Remove soft-deletes a document by id.
func (s *Store) Remove(ctx context.Context, id string, opts ...vectorstores.Option) error {
	options := vectorstores.Options{}
	for _, opt := range opts {
		opt(&options)
	}
	namespace := options.NameSpace
	if namespace == "" {
		namespace = defaultNamespace
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET archived=1 WHERE dataset_id=? AND id=?`, s.shadow), namespace, id)
	return err
}

// Clear hard-deletes every document in the namespace; an empty namespace
// clears the whole store.
func (s *Store) Clear(ctx context.Context, namespace string) error {
	if namespace == "" {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.shadow))
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE dataset_id=?`, s.shadow), namespace)
	return err
}

func (s *Store) ensureSchemaDDL(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			dataset_id       TEXT NOT NULL,
			id               TEXT NOT NULL,
			asset_id         TEXT NOT NULL,
			content          TEXT,
			meta             TEXT,
			embedding        BLOB,
			embedding_model  TEXT,
			scn              INTEGER NOT NULL,
			archived         INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (dataset_id, id)
		);`, s.shadow),
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec(doc_id);`, s.vtable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_archived ON %s(dataset_id, archived);`, s.vtable, s.shadow),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ensurePragmas appends WAL and busy-timeout pragmas to file DSNs when missing.
func ensurePragmas(dsn string) string {
	lower := strings.ToLower(dsn)
	if dsn == ":memory:" || strings.HasPrefix(lower, "file::memory:") {
		return dsn
	}
	if !strings.Contains(lower, "_pragma=journal_mode") {
		dsn = addPragma(dsn, "journal_mode(WAL)")
	}
	if !strings.Contains(lower, "_pragma=busy_timeout") {
		dsn = addPragma(dsn, "busy_timeout(5000)")
	}
	return dsn
}

func addPragma(dsn, pragma string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + pragma
}

func contentID(content string) string {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return content
	}
	_, _ = h.Write([]byte(content))
	return fmt.Sprintf("%016x", h.Sum64())
}

func encodeMeta(metaIn map[string]interface{}) (string, error) {
	if metaIn == nil {
		metaIn = map[string]interface{}{}
	}
	data, err := json.Marshal(metaIn)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMeta(metaJSON string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if strings.TrimSpace(metaJSON) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(metaJSON), &out); err != nil {
		return nil, err
	}
	return out, nil
}

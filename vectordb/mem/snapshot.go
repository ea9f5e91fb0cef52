package mem

import (
	"os"

	"github.com/viant/bintly"
	"github.com/viant/vendly/schema"
	"github.com/viant/vendly/vectordb"
)

// Persist writes the whole store to the configured snapshot file.
func (s *Store) Persist() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	writers := bintly.NewWriters()
	writer := writers.Get()
	defer writers.Put(writer)

	total := 0
	for _, target := range s.sets {
		total += len(target.records)
	}
	writer.Int(total)
	for name, target := range s.sets {
		for _, rec := range target.records {
			writer.String(name)
			writer.String(rec.id)
			writer.Int(len(rec.embedding))
			for _, v := range rec.embedding {
				writer.Float32(v)
			}
			doc := vectordb.Document(rec.doc)
			if err := doc.EncodeBinary(writer); err != nil {
				return err
			}
		}
	}
	return os.WriteFile(s.path, writer.Bytes(), 0o644)
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	readers := bintly.NewReaders()
	reader := readers.Get()
	defer readers.Put(reader)
	if err := reader.FromBytes(data); err != nil {
		return err
	}

	var total int
	reader.Int(&total)
	for i := 0; i < total; i++ {
		var name, id string
		reader.String(&name)
		reader.String(&id)
		var dim int
		reader.Int(&dim)
		embedding := make([]float32, dim)
		for j := 0; j < dim; j++ {
			reader.Float32(&embedding[j])
		}
		var doc vectordb.Document
		if err := doc.DecodeBinary(reader); err != nil {
			return err
		}
		s.set(name).upsert(record{id: id, embedding: embedding, doc: schema.Document(doc)})
	}
	return nil
}

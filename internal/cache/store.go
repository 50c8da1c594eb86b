package cache

import (
	"context"
	"encoding/hex"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "cache_entries"

// Store is the persistent cache_entries(key, value) table from spec
// §4.H, backed by chromem-go's embedded, file-persisted document store
// instead of a SQL engine — the closest pure-Go embeddable store
// available in this module's dependency set. Every document's ID is
// the hex-encoded query hash and its Content is the cached result
// path, so this is used purely as a key/value table: the embedding
// function is a constant stub because no similarity search ever runs
// over this collection.
type Store struct {
	collection *chromem.Collection
}

// noopEmbedding satisfies chromem-go's EmbeddingFunc requirement
// without computing anything: every document gets the same
// single-dimension vector since this collection is never queried by
// similarity, only by exact ID.
func noopEmbedding(_ context.Context, _ string) ([]float32, error) {
	return []float32{0}, nil
}

// OpenStore opens (creating if absent) the persistent cache database
// under dir, per spec §4.H's "single embedded ... database file under
// cache_path".
func OpenStore(dir string) (*Store, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open cache store at %s: %w", dir, err)
	}
	coll, err := db.GetOrCreateCollection(collectionName, nil, noopEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open cache collection: %w", err)
	}
	return &Store{collection: coll}, nil
}

func encodeKey(key []byte) string {
	return hex.EncodeToString(key)
}

// Get returns the cached result path for key, if a record exists.
func (s *Store) Get(ctx context.Context, key []byte) (string, bool, error) {
	doc, err := s.collection.GetByID(ctx, encodeKey(key))
	if err != nil {
		return "", false, nil
	}
	return doc.Content, true, nil
}

// Put inserts or overwrites the record for key. AddDocument errors on
// a duplicate ID, so an existing record is deleted first to give this
// call upsert semantics.
func (s *Store) Put(ctx context.Context, key []byte, resultPath string) error {
	_ = s.collection.Delete(ctx, nil, nil, encodeKey(key))
	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:      encodeKey(key),
		Content: resultPath,
	})
	if err != nil {
		return fmt.Errorf("write cache record: %w", err)
	}
	return nil
}

// Delete removes the record for key, used by read-time validation when
// the artifact it names no longer exists on disk.
func (s *Store) Delete(ctx context.Context, key []byte) error {
	return s.collection.Delete(ctx, nil, nil, encodeKey(key))
}

// Record is one cache_entries row, surfaced for the `cache stats`/`cache
// gc` CLI supplement (SPEC_FULL §12).
type Record struct {
	KeyHex     string
	ResultPath string
}

// All returns every record currently in the store. chromem-go has no
// list-all API, so this runs one query asking for Count() results; the
// noop embedding ignores the query text, which only has to be
// non-empty. The order of the returned records is not defined.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	docs, err := s.collection.Query(ctx, "all", count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list cache records: %w", err)
	}
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, Record{KeyHex: doc.ID, ResultPath: doc.Content})
	}
	return records, nil
}

// Count reports the number of records currently in the store.
func (s *Store) Count() int {
	return s.collection.Count()
}

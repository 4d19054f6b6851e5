package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/paintball-league/internal/domain/document"
)

// DocumentStore keeps collections in process. Stored and returned field maps
// are deep copies.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

func NewDocumentStore(seed map[string][]document.Document) *DocumentStore {
	s := &DocumentStore{collections: make(map[string]map[string]map[string]any)}
	for collection, docs := range seed {
		for _, doc := range docs {
			s.bucket(collection)[doc.ID] = cloneFields(doc.Fields)
		}
	}
	return s
}

func (s *DocumentStore) Get(_ context.Context, collection, id string) (document.Document, bool, error) {
	if err := document.ValidateKey(collection, id); err != nil {
		return document.Document{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.collections[collection][id]
	if !ok {
		return document.Document{}, false, nil
	}
	return document.Document{ID: id, Fields: cloneFields(fields)}, true, nil
}

func (s *DocumentStore) Set(_ context.Context, collection, id string, fields map[string]any, opts document.SetOptions) error {
	if err := document.ValidateKey(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(collection)
	bucket[id] = cloneFields(document.Apply(bucket[id], fields, opts))
	return nil
}

// List returns documents ordered by id.
func (s *DocumentStore) List(_ context.Context, collection string) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.collections[collection]
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, document.Document{ID: id, Fields: cloneFields(bucket[id])})
	}
	return out, nil
}

func (s *DocumentStore) bucket(collection string) map[string]map[string]any {
	bucket, ok := s.collections[collection]
	if !ok {
		bucket = make(map[string]map[string]any)
		s.collections[collection] = bucket
	}
	return bucket
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
)

// MemStore is an in-memory Store for tests and ephemeral environments.
// Documents are kept as marshalled JSON so reads observe the same value
// normalization as the Postgres store.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string]map[string][]byte)}
}

func (s *MemStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrDocNotFound
	}
	return decode(data)
}

func (s *MemStore) Set(ctx context.Context, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = data
	return nil
}

func (s *MemStore) Insert(ctx context.Context, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(collection)
	if _, exists := col[id]; exists {
		return ErrDocExists
	}
	col[id] = data
	return nil
}

func (s *MemStore) Merge(ctx context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(collection)
	doc := Document{}
	if existing, ok := col[id]; ok {
		var err error
		if doc, err = decode(existing); err != nil {
			return err
		}
	}
	for k, v := range fields {
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	col[id] = data
	return nil
}

func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *MemStore) QueryByEquals(ctx context.Context, collection string, filters map[string]any) ([]Document, error) {
	probe, err := normalize(filters)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0)
	for _, data := range s.collections[collection] {
		doc, err := decode(data)
		if err != nil {
			return nil, err
		}
		if matches(doc, probe) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// collection returns the named collection map, creating it if needed.
// Callers must hold the write lock.
func (s *MemStore) collection(name string) map[string][]byte {
	col, ok := s.collections[name]
	if !ok {
		col = make(map[string][]byte)
		s.collections[name] = col
	}
	return col
}

// normalize round-trips the filter through JSON so filter values compare
// against stored values in the same representation.
func normalize(filters map[string]any) (Document, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(filters)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func matches(doc, probe Document) bool {
	for k, want := range probe {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

package storage

import (
	"bytes"
	"context"
	"sync"

	"github.com/riskibarqy/paintball-league/internal/domain/objectstore"
)

type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]objectstore.Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]objectstore.Object)}
}

func (s *MemoryStore) Put(_ context.Context, obj objectstore.Object) error {
	path, err := cleanPath(obj.Path)
	if err != nil {
		return err
	}
	obj.Path = path
	obj.Data = bytes.Clone(obj.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = obj
	return nil
}

func (s *MemoryStore) Get(_ context.Context, path string) (objectstore.Object, bool, error) {
	path, err := cleanPath(path)
	if err != nil {
		return objectstore.Object{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	if !ok {
		return objectstore.Object{}, false, nil
	}
	obj.Data = bytes.Clone(obj.Data)
	return obj, true, nil
}

func (s *MemoryStore) Exists(_ context.Context, path string) (bool, error) {
	path, err := cleanPath(path)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok, nil
}

package catalog

import (
	"context"
	"slices"
	"sync"
)

type MemStore struct {
	mu       sync.RWMutex
	products []Product

	// LoadErr and SaveErr, when set, are returned instead of touching the list.
	LoadErr error
	SaveErr error
}

func NewMemStore(seed ...Product) *MemStore {
	return &MemStore{products: slices.Clone(seed)}
}

func (s *MemStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LoadErr
}

func (s *MemStore) Load(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *MemStore) Save(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.products = slices.Clone(products)
	return nil
}

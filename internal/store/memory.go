package store

import (
	"context"
	"sync"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/collab"
)

// MemoryStore is a map-backed Store for tests and single-node
// development.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*collab.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*collab.Document)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*collab.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, collab.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, doc *collab.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.Clone()
	return nil
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Package memory keeps chunks and documents in process memory. Intended for
// single-node deployments and tests; reads during concurrent writes see an
// eventually consistent snapshot, which is acceptable for chat retrieval.
package memory

import (
	"context"
	"sync"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/domain"
)

type Store struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
	order  []string
}

func NewStore() *Store {
	return &Store{chunks: make(map[string]domain.Chunk)}
}

func (s *Store) UpsertChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		if _, exists := s.chunks[chunk.ID]; !exists {
			s.order = append(s.order, chunk.ID)
		}
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// FindByFilter returns chunks in insertion order. Document IDs take priority
// over tags; tags match if the chunk shares at least one. An empty filter
// returns every chunk (full scan).
func (s *Store) FindByFilter(_ context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keep func(domain.Chunk) bool
	switch {
	case len(filter.DocumentIDs) > 0:
		wanted := make(map[string]bool, len(filter.DocumentIDs))
		for _, id := range filter.DocumentIDs {
			wanted[id] = true
		}
		keep = func(c domain.Chunk) bool { return wanted[c.DocumentID] }
	case len(filter.Tags) > 0:
		keep = func(c domain.Chunk) bool {
			for _, tag := range filter.Tags {
				if c.HasTag(tag) {
					return true
				}
			}
			return false
		}
	default:
		keep = func(domain.Chunk) bool { return true }
	}

	var out []domain.Chunk
	for _, id := range s.order {
		chunk := s.chunks[id]
		if keep(chunk) {
			out = append(out, chunk)
		}
	}
	return out, nil
}

func (s *Store) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.order[:0]
	for _, id := range s.order {
		if s.chunks[id].DocumentID == documentID {
			delete(s.chunks, id)
			continue
		}
		remaining = append(remaining, id)
	}
	s.order = remaining
	return nil
}

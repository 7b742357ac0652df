package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobscout/internal/model"
)

// MemoryStore is an in-process PostingStore used by the one-shot check
// command and by tests. Same contract as SQLiteStore, nothing persisted.
type MemoryStore struct {
	mu       sync.Mutex
	postings map[string]model.EnrichedPosting
	health   map[model.Source]model.SourceHealth
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		postings: make(map[string]model.EnrichedPosting),
		health:   make(map[model.Source]model.SourceHealth),
	}
}

func (s *MemoryStore) Exists(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.postings[url]
	return ok, nil
}

func (s *MemoryStore) Insert(_ context.Context, p model.EnrichedPosting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.postings[p.URL]; ok {
		return model.ErrDuplicate
	}
	s.postings[p.URL] = p
	return nil
}

func (s *MemoryStore) ListRecent(_ context.Context, since time.Time) ([]model.EnrichedPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.EnrichedPosting
	for _, p := range s.postings {
		if p.DiscoveredAt.Before(since) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DiscoveredAt.After(out[j].DiscoveredAt) })
	return out, nil
}

func (s *MemoryStore) UpsertHealth(_ context.Context, h model.SourceHealth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health[h.Source] = h
	return nil
}

func (s *MemoryStore) ListHealth(_ context.Context) ([]model.SourceHealth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SourceHealth, 0, len(s.health))
	for _, h := range s.health {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}

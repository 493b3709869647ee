package memorystore

import (
	"sync"

	"ledgerviz/pkg/kraken"
)

// MemoryPairStore tracks the pairs the feed is configured to collect.
type MemoryPairStore struct {
	mu    sync.Mutex
	pairs []string
	seen  map[string]struct{}
}

func NewPairStore(pairs ...string) *MemoryPairStore {
	s := &MemoryPairStore{
		pairs: make([]string, 0, len(pairs)),
		seen:  make(map[string]struct{}, len(pairs)),
	}
	for _, p := range pairs {
		s.Add(p)
	}
	return s
}

// Add registers pair; duplicates are ignored.
func (s *MemoryPairStore) Add(pair string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[pair]; ok {
		return
	}
	s.seen[pair] = struct{}{}
	s.pairs = append(s.pairs, pair)
}

func (s *MemoryPairStore) Contains(pair string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[pair]
	return ok
}

func (s *MemoryPairStore) GetAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// GetRESTNames returns the pairs in REST altname form ("XBTUSD").
func (s *MemoryPairStore) GetRESTNames() []string {
	pairs := s.GetAll()
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = kraken.AltName(p)
	}
	return out
}

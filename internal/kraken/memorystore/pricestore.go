package memorystore

import (
	"sort"
	"sync"

	"ledgerviz/pkg/kraken"
)

// MemoryPriceStore keeps the latest normalized record per pair plus a
// bounded history, oldest first.
type MemoryPriceStore struct {
	globalMu sync.RWMutex
	data     map[string]*pairPriceStore
	capacity int
}

type pairPriceStore struct {
	mu      sync.Mutex
	history []kraken.PriceData // ring buffer
	start   int                // index of the oldest record
	latest  kraken.PriceData
	hasData bool
}

func NewPriceStore(capacity int) *MemoryPriceStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryPriceStore{
		data:     make(map[string]*pairPriceStore),
		capacity: capacity,
	}
}

// Add appends p to its pair's history. The latest record only moves
// forward in time, so a late REST snapshot never hides a newer stream update.
func (s *MemoryPriceStore) Add(p kraken.PriceData) {
	// Fast path: lock per-pair store only
	s.globalMu.RLock()
	store, ok := s.data[p.Pair]
	s.globalMu.RUnlock()

	if !ok {
		s.globalMu.Lock()
		if store, ok = s.data[p.Pair]; !ok {
			store = &pairPriceStore{history: make([]kraken.PriceData, 0, s.capacity)}
			s.data[p.Pair] = store
		}
		s.globalMu.Unlock()
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if len(store.history) < s.capacity {
		store.history = append(store.history, p)
	} else {
		store.history[store.start] = p
		store.start = (store.start + 1) % s.capacity
	}

	if !store.hasData || !p.Timestamp.Before(store.latest.Timestamp) {
		store.latest = p
		store.hasData = true
	}
}

// Latest returns the newest record for pair.
func (s *MemoryPriceStore) Latest(pair string) (kraken.PriceData, bool) {
	s.globalMu.RLock()
	store, ok := s.data[pair]
	s.globalMu.RUnlock()
	if !ok {
		return kraken.PriceData{}, false
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	return store.latest, store.hasData
}

// LatestAll returns the newest record of every pair.
func (s *MemoryPriceStore) LatestAll() map[string]kraken.PriceData {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	result := make(map[string]kraken.PriceData, len(s.data))
	for pair, store := range s.data {
		store.mu.Lock()
		if store.hasData {
			result[pair] = store.latest
		}
		store.mu.Unlock()
	}
	return result
}

// History returns a copy of the stored records for pair in insertion order.
func (s *MemoryPriceStore) History(pair string) []kraken.PriceData {
	s.globalMu.RLock()
	store, ok := s.data[pair]
	s.globalMu.RUnlock()
	if !ok {
		return nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	n := len(store.history)
	cp := make([]kraken.PriceData, 0, n)
	cp = append(cp, store.history[store.start:]...)
	cp = append(cp, store.history[:store.start]...)
	return cp
}

// Pairs returns the known pairs, sorted.
func (s *MemoryPriceStore) Pairs() []string {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	out := make([]string, 0, len(s.data))
	for pair := range s.data {
		out = append(out, pair)
	}
	sort.Strings(out)
	return out
}

// CountAll returns the total number of records stored across all pairs.
func (s *MemoryPriceStore) CountAll() int {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	total := 0
	for _, store := range s.data {
		store.mu.Lock()
		total += len(store.history)
		store.mu.Unlock()
	}
	return total
}

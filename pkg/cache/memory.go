package cache

import (
	"context"
	"sync"

	"github.com/evelooter/looter/pkg/esi"
)

// MemoryStore is the default in-process cache backend. Each store has its
// own mutex so detail hydration and name resolution never contend.
type MemoryStore struct {
	detailMu sync.Mutex
	details  map[int64]esi.Killmail

	nameMu sync.Mutex
	names  map[int64]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		details: make(map[int64]esi.Killmail),
		names:   make(map[int64]string),
	}
}

// GetDetail returns the cached detail record for a killmail ID.
func (s *MemoryStore) GetDetail(_ context.Context, id int64) (esi.Killmail, bool) {
	s.detailMu.Lock()
	defer s.detailMu.Unlock()

	km, ok := s.details[id]
	if ok {
		CacheHits.WithLabelValues(storeDetail).Inc()
	} else {
		CacheMisses.WithLabelValues(storeDetail).Inc()
	}
	return km, ok
}

// PutDetail stores a detail record. The first write for an ID wins;
// later writes are dropped to keep entries immutable.
func (s *MemoryStore) PutDetail(_ context.Context, id int64, km esi.Killmail) {
	s.detailMu.Lock()
	defer s.detailMu.Unlock()

	if _, exists := s.details[id]; exists {
		return
	}
	s.details[id] = km
	CacheEntries.WithLabelValues(storeDetail).Inc()
}

// ContainsDetail reports whether a detail record is cached.
func (s *MemoryStore) ContainsDetail(_ context.Context, id int64) bool {
	s.detailMu.Lock()
	defer s.detailMu.Unlock()
	_, ok := s.details[id]
	return ok
}

// GetName returns the cached display name for an entity ID.
func (s *MemoryStore) GetName(_ context.Context, id int64) (string, bool) {
	s.nameMu.Lock()
	defer s.nameMu.Unlock()

	name, ok := s.names[id]
	if ok {
		CacheHits.WithLabelValues(storeName).Inc()
	} else {
		CacheMisses.WithLabelValues(storeName).Inc()
	}
	return name, ok
}

// PutName stores a resolved name. First write wins.
func (s *MemoryStore) PutName(_ context.Context, id int64, name string) {
	s.nameMu.Lock()
	defer s.nameMu.Unlock()

	if _, exists := s.names[id]; exists {
		return
	}
	s.names[id] = name
	CacheEntries.WithLabelValues(storeName).Inc()
}

// ContainsName reports whether a name is cached.
func (s *MemoryStore) ContainsName(_ context.Context, id int64) bool {
	s.nameMu.Lock()
	defer s.nameMu.Unlock()
	_, ok := s.names[id]
	return ok
}

// DetailCount returns the number of cached detail records.
func (s *MemoryStore) DetailCount() int {
	s.detailMu.Lock()
	defer s.detailMu.Unlock()
	return len(s.details)
}

// NameCount returns the number of cached names.
func (s *MemoryStore) NameCount() int {
	s.nameMu.Lock()
	defer s.nameMu.Unlock()
	return len(s.names)
}

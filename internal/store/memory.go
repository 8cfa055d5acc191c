package store

import (
	"context"
	"sync"
)

// MemoryStore keeps history in process memory. It is an owned object: each
// session or server creates its own, and nothing is shared implicitly.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AppendRecord(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records = append(s.records, rec.clone())
	return nil
}

func (s *MemoryStore) ListRecords(_ context.Context, filter HistoryFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	var out []*Record
	for _, r := range s.records {
		if filter.IntegrationPair != "" && r.IntegrationPair != filter.IntegrationPair {
			continue
		}
		out = append(out, r.clone())
	}
	return applyLimit(out, filter.Limit), nil
}

// Len returns the number of records held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

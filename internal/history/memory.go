package history

import (
	"context"
	"sync"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

type key struct {
	symbol    string
	timeframe types.Timeframe
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[key][]Entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[key][]Entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Last(_ context.Context, symbol string, timeframe types.Timeframe) (optional.Option[Entry], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[key{symbol, timeframe}]
	if len(entries) == 0 {
		return optional.None[Entry](), nil
	}

	return optional.Some(entries[len(entries)-1]), nil
}

func (s *MemoryStore) Record(_ context.Context, entry Entry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{entry.Symbol, entry.Timeframe}
	s.entries[k] = append(s.entries[k], entry)

	return nil
}

func (s *MemoryStore) List(_ context.Context, symbol string, timeframe types.Timeframe, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[key{symbol, timeframe}]

	n := len(entries)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Entry, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}

	return out, nil
}

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

// MemoryStore is the in-process Store used by tests and by handler
// wiring when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	nowUTC  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nowUTC: func() time.Time { return time.Now().UTC() }}
}

func (s *MemoryStore) Append(_ context.Context, e Entry) (Entry, error) {
	if err := validateEntry(e); err != nil {
		return Entry{}, err
	}
	id, err := uuidv7.NewString()
	if err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = id
	e.Detail = normalizeDetail(e.Detail)
	e.CreatedAt = s.nowUTC().Format(time.RFC3339)
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := f.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	var out []Entry
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if f.Entity != "" && e.Entity != f.Entity {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		if f.Actor != "" && e.Actor != f.Actor {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/adesina-femi/staffcore/modules/cooperatives/domain/ports"
	"github.com/adesina-femi/staffcore/modules/cooperatives/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

type MemoryStore struct {
	mu     sync.Mutex
	byID   map[string]types.Cooperative
	byName map[string]string
	nowUTC func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]types.Cooperative),
		byName: make(map[string]string),
		nowUTC: func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.CooperativeStore = (*MemoryStore)(nil)

func (s *MemoryStore) CreateCooperative(_ context.Context, c types.Cooperative) (types.Cooperative, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Cooperative{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[c.Name]; ok {
		return types.Cooperative{}, httperr.NewConflict("a cooperative with this name already exists")
	}

	now := s.nowUTC().Format(time.RFC3339)
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	s.byID[id] = c
	s.byName[c.Name] = id
	return c, nil
}

func (s *MemoryStore) GetCooperative(_ context.Context, id string) (types.Cooperative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return types.Cooperative{}, httperr.NewNotFound("cooperative not found")
	}
	return c, nil
}

func (s *MemoryStore) GetCooperativeByName(_ context.Context, name string) (types.Cooperative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[name]
	if !ok {
		return types.Cooperative{}, httperr.NewNotFound("cooperative not found")
	}
	return s.byID[id], nil
}

func (s *MemoryStore) ListCooperatives(_ context.Context, activeOnly bool) ([]types.Cooperative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Cooperative, 0, len(s.byID))
	for _, c := range s.byID {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sortByName(out)
	return out, nil
}

func (s *MemoryStore) UpdateCooperative(_ context.Context, c types.Cooperative) (types.Cooperative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[c.ID]
	if !ok {
		return types.Cooperative{}, httperr.NewNotFound("cooperative not found")
	}
	if c.Name != existing.Name {
		if _, taken := s.byName[c.Name]; taken {
			return types.Cooperative{}, httperr.NewConflict("a cooperative with this name already exists")
		}
		delete(s.byName, existing.Name)
		s.byName[c.Name] = c.ID
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[c.ID] = c
	return c, nil
}

func (s *MemoryStore) DeleteCooperative(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return httperr.NewNotFound("cooperative not found")
	}
	delete(s.byID, id)
	delete(s.byName, c.Name)
	return nil
}

func sortByName(list []types.Cooperative) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].Name < list[i].Name {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
}

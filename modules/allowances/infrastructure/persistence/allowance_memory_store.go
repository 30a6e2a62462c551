package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/adesina-femi/staffcore/modules/allowances/domain/ports"
	"github.com/adesina-femi/staffcore/modules/allowances/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

type MemoryStore struct {
	mu         sync.Mutex
	rules      map[string]types.Rule
	ruleNames  map[string]string
	individual map[string]types.Individual
	nowUTC     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules:      make(map[string]types.Rule),
		ruleNames:  make(map[string]string),
		individual: make(map[string]types.Individual),
		nowUTC:     func() time.Time { return time.Now().UTC() },
	}
}

var (
	_ ports.RuleStore       = (*MemoryStore)(nil)
	_ ports.IndividualStore = (*MemoryStore)(nil)
)

func (s *MemoryStore) CreateRule(_ context.Context, r types.Rule) (types.Rule, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Rule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ruleNames[r.Name]; ok {
		return types.Rule{}, httperr.NewConflict("an allowance rule with this name already exists")
	}

	now := s.nowUTC().Format(time.RFC3339)
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rules[id] = r
	s.ruleNames[r.Name] = id
	return r, nil
}

func (s *MemoryStore) GetRule(_ context.Context, id string) (types.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return types.Rule{}, httperr.NewNotFound("allowance rule not found")
	}
	return r, nil
}

func (s *MemoryStore) GetRuleByName(_ context.Context, name string) (types.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.ruleNames[name]
	if !ok {
		return types.Rule{}, httperr.NewNotFound("allowance rule not found")
	}
	return s.rules[id], nil
}

func (s *MemoryStore) ListRules(_ context.Context, activeOnly bool) ([]types.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	sortRulesByName(out)
	return out, nil
}

func (s *MemoryStore) UpdateRule(_ context.Context, r types.Rule) (types.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[r.ID]
	if !ok {
		return types.Rule{}, httperr.NewNotFound("allowance rule not found")
	}
	if r.Name != existing.Name {
		if _, taken := s.ruleNames[r.Name]; taken {
			return types.Rule{}, httperr.NewConflict("an allowance rule with this name already exists")
		}
		delete(s.ruleNames, existing.Name)
		s.ruleNames[r.Name] = r.ID
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.rules[r.ID] = r
	return r, nil
}

func (s *MemoryStore) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok {
		return httperr.NewNotFound("allowance rule not found")
	}
	delete(s.rules, id)
	delete(s.ruleNames, r.Name)
	return nil
}

func (s *MemoryStore) CreateIndividual(_ context.Context, a types.Individual) (types.Individual, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Individual{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowUTC().Format(time.RFC3339)
	a.ID = id
	a.CreatedAt = now
	a.UpdatedAt = now
	s.individual[id] = a
	return a, nil
}

func (s *MemoryStore) GetIndividual(_ context.Context, id string) (types.Individual, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.individual[id]
	if !ok {
		return types.Individual{}, httperr.NewNotFound("individual allowance not found")
	}
	return a, nil
}

func (s *MemoryStore) ListIndividual(_ context.Context, f ports.IndividualFilter) ([]types.Individual, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Individual, 0, len(s.individual))
	for _, a := range s.individual {
		if f.StaffID != "" && a.StaffID != f.StaffID {
			continue
		}
		if f.Period != "" && a.Period != f.Period {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	sortIndividualByCreatedAt(out)
	return out, nil
}

func (s *MemoryStore) SetIndividualStatus(_ context.Context, id, status string) (types.Individual, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.individual[id]
	if !ok {
		return types.Individual{}, httperr.NewNotFound("individual allowance not found")
	}
	if a.Status != types.StatusPending {
		return types.Individual{}, httperr.NewConflict("allowance is already " + a.Status)
	}

	a.Status = status
	a.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.individual[id] = a
	return a, nil
}

func sortRulesByName(list []types.Rule) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].Name < list[i].Name {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
}

func sortIndividualByCreatedAt(list []types.Individual) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].CreatedAt < list[i].CreatedAt ||
				(list[j].CreatedAt == list[i].CreatedAt && list[j].ID < list[i].ID) {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
}

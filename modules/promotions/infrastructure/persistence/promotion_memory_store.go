package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/adesina-femi/staffcore/modules/promotions/domain/ports"
	"github.com/adesina-femi/staffcore/modules/promotions/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

// GradeStepApplier is the staff-side write a promotion approval needs.
// The staff memory store satisfies it.
type GradeStepApplier interface {
	ApplyGradeStep(id string, gradeLevel, step int) error
}

type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]types.Promotion
	applier GradeStepApplier
	nowUTC  func() time.Time
}

func NewMemoryStore(applier GradeStepApplier) *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]types.Promotion),
		applier: applier,
		nowUTC:  func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.PromotionStore = (*MemoryStore)(nil)

func (s *MemoryStore) CreatePromotion(_ context.Context, p types.Promotion) (types.Promotion, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Promotion{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowUTC().Format(time.RFC3339)
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	s.byID[id] = p
	return p, nil
}

func (s *MemoryStore) GetPromotion(_ context.Context, id string) (types.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return types.Promotion{}, httperr.NewNotFound("promotion not found")
	}
	return p, nil
}

func (s *MemoryStore) ListPromotions(_ context.Context, f ports.ListFilter) ([]types.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Promotion, 0, len(s.byID))
	for _, p := range s.byID {
		if f.StaffID != "" && p.StaffID != f.StaffID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	sortByCreatedAt(out)
	return out, nil
}

// ApprovePromotion flips the status and applies the grade/step to the
// staff record while holding the promotions lock, so no second approval
// can interleave.
func (s *MemoryStore) ApprovePromotion(_ context.Context, id, approvedBy, approvedAt string) (types.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return types.Promotion{}, httperr.NewNotFound("promotion not found")
	}
	if p.Status != types.StatusPending {
		return types.Promotion{}, httperr.NewConflict("promotion is already " + p.Status)
	}

	if err := s.applier.ApplyGradeStep(p.StaffID, p.ToGradeLevel, p.ToStep); err != nil {
		return types.Promotion{}, err
	}

	p.Status = types.StatusApproved
	p.ApprovedBy = approvedBy
	p.ApprovedAt = approvedAt
	p.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[id] = p
	return p, nil
}

func (s *MemoryStore) RejectPromotion(_ context.Context, id, rejectedBy, rejectedAt string) (types.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return types.Promotion{}, httperr.NewNotFound("promotion not found")
	}
	if p.Status != types.StatusPending {
		return types.Promotion{}, httperr.NewConflict("promotion is already " + p.Status)
	}

	p.Status = types.StatusRejected
	p.ApprovedBy = rejectedBy
	p.ApprovedAt = rejectedAt
	p.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[id] = p
	return p, nil
}

func sortByCreatedAt(list []types.Promotion) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].CreatedAt < list[i].CreatedAt ||
				(list[j].CreatedAt == list[i].CreatedAt && list[j].ID < list[i].ID) {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
}

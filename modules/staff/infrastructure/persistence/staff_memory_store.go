package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/adesina-femi/staffcore/modules/staff/domain/ports"
	"github.com/adesina-femi/staffcore/modules/staff/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

// MemoryStore keeps staff rows in process. Tests and DB-less wiring use
// it; the promotions memory store also reaches into it to apply approved
// grade/step changes under one lock.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[string]types.Staff
	byNumber map[string]string
	nowUTC   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]types.Staff),
		byNumber: make(map[string]string),
		nowUTC:   func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.StaffStore = (*MemoryStore)(nil)

func (s *MemoryStore) CreateStaff(_ context.Context, st types.Staff) (types.Staff, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Staff{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byNumber[st.StaffNumber]; ok {
		return types.Staff{}, httperr.NewConflict("staff_number already exists")
	}

	now := s.nowUTC().Format(time.RFC3339)
	st.ID = id
	st.CreatedAt = now
	st.UpdatedAt = now
	s.byID[id] = st
	s.byNumber[st.StaffNumber] = id
	return st, nil
}

func (s *MemoryStore) GetStaff(_ context.Context, id string) (types.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byID[id]
	if !ok {
		return types.Staff{}, httperr.NewNotFound("staff not found")
	}
	return st, nil
}

func (s *MemoryStore) GetStaffByNumber(_ context.Context, staffNumber string) (types.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byNumber[staffNumber]
	if !ok {
		return types.Staff{}, httperr.NewNotFound("staff not found")
	}
	return s.byID[id], nil
}

func (s *MemoryStore) ListStaff(_ context.Context, f ports.ListFilter) ([]types.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Staff, 0, len(s.byID))
	for _, st := range s.byID {
		if f.EmploymentStatus != "" && st.EmploymentStatus != f.EmploymentStatus {
			continue
		}
		if f.GradeLevel != 0 && st.GradeLevel != f.GradeLevel {
			continue
		}
		out = append(out, st)
	}
	sortByStaffNumber(out)
	return out, nil
}

func (s *MemoryStore) UpdateStaff(_ context.Context, st types.Staff) (types.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[st.ID]
	if !ok {
		return types.Staff{}, httperr.NewNotFound("staff not found")
	}
	st.StaffNumber = existing.StaffNumber
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[st.ID] = st
	return st, nil
}

// ApplyGradeStep mutates grade/step directly; the promotions memory store
// calls it while holding its own approval lock so promotion approval and
// the staff update land together, mirroring the single-transaction pg
// path.
func (s *MemoryStore) ApplyGradeStep(id string, gradeLevel, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[id]
	if !ok {
		return httperr.NewNotFound("staff not found")
	}
	st.GradeLevel = gradeLevel
	st.Step = step
	st.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[id] = st
	return nil
}

func sortByStaffNumber(list []types.Staff) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].StaffNumber < list[i].StaffNumber {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
}

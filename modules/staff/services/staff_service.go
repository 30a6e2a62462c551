package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/modules/staff/domain/ports"
	"github.com/adesina-femi/staffcore/modules/staff/domain/types"
	"github.com/adesina-femi/staffcore/pkg/conjuss"
	"github.com/adesina-femi/staffcore/pkg/httperr"
)

type StaffService struct {
	store ports.StaffStore
	table *conjuss.Table
	trail audit.Store
	log   *logrus.Logger
}

func NewStaffService(store ports.StaffStore, table *conjuss.Table, trail audit.Store, log *logrus.Logger) *StaffService {
	return &StaffService{store: store, table: table, trail: trail, log: log}
}

type CreateStaffInput struct {
	StaffNumber      string
	FirstName        string
	LastName         string
	Email            string
	GradeLevel       int
	Step             int
	EmploymentStatus string
	HireDate         string
}

func validateStaffInput(in CreateStaffInput) error {
	if strings.TrimSpace(in.StaffNumber) == "" {
		return httperr.NewBadRequest("staff_number is required")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return httperr.NewBadRequest("first_name and last_name are required")
	}
	if !conjuss.ValidGradeLevel(in.GradeLevel) {
		return httperr.NewBadRequest(fmt.Sprintf("grade_level must be between %d and %d", conjuss.MinGradeLevel, conjuss.MaxGradeLevel))
	}
	if !conjuss.ValidStep(in.Step) {
		return httperr.NewBadRequest(fmt.Sprintf("step must be between %d and %d", conjuss.MinStep, conjuss.MaxStep))
	}
	if in.EmploymentStatus != "" && !types.ValidEmploymentStatus(in.EmploymentStatus) {
		return httperr.NewBadRequest("employment_status must be active, suspended or exited")
	}
	if in.HireDate != "" {
		if _, err := time.Parse("2006-01-02", in.HireDate); err != nil {
			return httperr.NewBadRequest("hire_date must be YYYY-MM-DD")
		}
	}
	return nil
}

func (s *StaffService) Create(ctx context.Context, actor string, in CreateStaffInput) (types.Staff, error) {
	if err := validateStaffInput(in); err != nil {
		return types.Staff{}, err
	}
	if _, err := s.store.GetStaffByNumber(ctx, strings.TrimSpace(in.StaffNumber)); err == nil {
		return types.Staff{}, httperr.NewConflict("staff_number already exists")
	} else if !httperr.IsNotFound(err) {
		return types.Staff{}, err
	}

	status := in.EmploymentStatus
	if status == "" {
		status = types.EmploymentActive
	}

	created, err := s.store.CreateStaff(ctx, types.Staff{
		StaffNumber:      strings.TrimSpace(in.StaffNumber),
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Email:            strings.TrimSpace(in.Email),
		GradeLevel:       in.GradeLevel,
		Step:             in.Step,
		EmploymentStatus: status,
		HireDate:         in.HireDate,
	})
	if err != nil {
		return types.Staff{}, err
	}

	detail, _ := json.Marshal(map[string]any{"staff_number": created.StaffNumber, "grade_level": created.GradeLevel, "step": created.Step})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "staff.create", Entity: "staff", EntityID: created.ID, Detail: detail,
	}); err != nil {
		return types.Staff{}, err
	}
	s.log.Infof("staff created: %s (%s)", created.ID, created.StaffNumber)
	return s.decorate(created), nil
}

type UpdateStaffInput struct {
	FirstName        string
	LastName         string
	Email            string
	EmploymentStatus string
}

func (s *StaffService) Update(ctx context.Context, actor string, id string, in UpdateStaffInput) (types.Staff, error) {
	existing, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return types.Staff{}, err
	}

	if in.FirstName != "" {
		existing.FirstName = strings.TrimSpace(in.FirstName)
	}
	if in.LastName != "" {
		existing.LastName = strings.TrimSpace(in.LastName)
	}
	if in.Email != "" {
		existing.Email = strings.TrimSpace(in.Email)
	}
	if in.EmploymentStatus != "" {
		if !types.ValidEmploymentStatus(in.EmploymentStatus) {
			return types.Staff{}, httperr.NewBadRequest("employment_status must be active, suspended or exited")
		}
		existing.EmploymentStatus = in.EmploymentStatus
	}

	updated, err := s.store.UpdateStaff(ctx, existing)
	if err != nil {
		return types.Staff{}, err
	}

	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "staff.update", Entity: "staff", EntityID: updated.ID,
	}); err != nil {
		return types.Staff{}, err
	}
	return s.decorate(updated), nil
}

func (s *StaffService) Get(ctx context.Context, id string) (types.Staff, error) {
	st, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return types.Staff{}, err
	}
	return s.decorate(st), nil
}

func (s *StaffService) List(ctx context.Context, f ports.ListFilter) ([]types.Staff, error) {
	list, err := s.store.ListStaff(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = s.decorate(list[i])
	}
	return list, nil
}

// decorate fills BasePay from the CONJUSS table where an entry exists.
func (s *StaffService) decorate(st types.Staff) types.Staff {
	if pay, ok := s.table.BasePay(st.GradeLevel, st.Step); ok {
		st.BasePay = pay.StringFixed(2)
	}
	return st
}

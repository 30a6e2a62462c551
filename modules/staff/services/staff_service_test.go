package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/modules/staff/domain/ports"
	"github.com/adesina-femi/staffcore/modules/staff/domain/types"
	"github.com/adesina-femi/staffcore/modules/staff/infrastructure/persistence"
	"github.com/adesina-femi/staffcore/pkg/conjuss"
	"github.com/adesina-femi/staffcore/pkg/httperr"
)

const testTable = `
grades:
  - grade: 5
    steps:
      - step: 3
        base_pay: "84500.50"
`

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T) (*StaffService, *audit.MemoryStore) {
	t.Helper()
	table, err := conjuss.Parse([]byte(testTable))
	if err != nil {
		t.Fatalf("conjuss: %v", err)
	}
	trail := audit.NewMemoryStore()
	return NewStaffService(persistence.NewMemoryStore(), table, trail, quietLogger()), trail
}

func validInput() CreateStaffInput {
	return CreateStaffInput{
		StaffNumber: "ST-0042",
		FirstName:   "Amina",
		LastName:    "Yusuf",
		Email:       "amina@example.com",
		GradeLevel:  5,
		Step:        3,
		HireDate:    "2020-06-01",
	}
}

func TestCreate_FillsDefaultsAndBasePay(t *testing.T) {
	svc, trail := newTestService(t)

	created, err := svc.Create(context.Background(), "admin@example.com", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("missing id")
	}
	if created.EmploymentStatus != types.EmploymentActive {
		t.Fatalf("status=%s", created.EmploymentStatus)
	}
	if created.BasePay != "84500.50" {
		t.Fatalf("base pay=%q", created.BasePay)
	}

	entries, err := trail.List(context.Background(), audit.Filter{Entity: "staff"})
	if err != nil || len(entries) != 1 {
		t.Fatalf("audit entries=%d err=%v", len(entries), err)
	}
	if entries[0].Action != "staff.create" {
		t.Fatalf("audit action=%s", entries[0].Action)
	}
}

func TestCreate_DuplicateStaffNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "admin", validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, "admin", validInput())
	if !httperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateStaffInput)
	}{
		{"missing staff number", func(in *CreateStaffInput) { in.StaffNumber = " " }},
		{"missing name", func(in *CreateStaffInput) { in.FirstName = "" }},
		{"grade too high", func(in *CreateStaffInput) { in.GradeLevel = 18 }},
		{"grade too low", func(in *CreateStaffInput) { in.GradeLevel = 0 }},
		{"step too high", func(in *CreateStaffInput) { in.Step = 16 }},
		{"bad status", func(in *CreateStaffInput) { in.EmploymentStatus = "retired" }},
		{"bad hire date", func(in *CreateStaffInput) { in.HireDate = "01/06/2020" }},
	}
	for _, c := range cases {
		in := validInput()
		c.mutate(&in)
		if _, err := svc.Create(ctx, "admin", in); !httperr.IsBadRequest(err) {
			t.Fatalf("%s: expected bad request, got %v", c.name, err)
		}
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, "admin", created.ID, UpdateStaffInput{EmploymentStatus: types.EmploymentSuspended})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.EmploymentStatus != types.EmploymentSuspended {
		t.Fatalf("status=%s", updated.EmploymentStatus)
	}
	if updated.FirstName != "Amina" {
		t.Fatalf("first name lost: %q", updated.FirstName)
	}

	if _, err := svc.Update(ctx, "admin", created.ID, UpdateStaffInput{EmploymentStatus: "gone"}); !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if _, err := svc.Update(ctx, "admin", "b8e2c9a0-0000-7000-8000-000000000000", UpdateStaffInput{FirstName: "X"}); !httperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := validInput()
	b := validInput()
	b.StaffNumber = "ST-0043"
	b.GradeLevel = 7
	b.Step = 1
	if _, err := svc.Create(ctx, "admin", a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "admin", b); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.List(ctx, ports.ListFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("all=%d err=%v", len(all), err)
	}
	if all[0].StaffNumber != "ST-0042" {
		t.Fatalf("order: %s", all[0].StaffNumber)
	}

	grade7, err := svc.List(ctx, ports.ListFilter{GradeLevel: 7})
	if err != nil || len(grade7) != 1 {
		t.Fatalf("grade7=%d err=%v", len(grade7), err)
	}
}

package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/modules/promotions/domain/types"
	"github.com/adesina-femi/staffcore/modules/promotions/infrastructure/persistence"
	stafftypes "github.com/adesina-femi/staffcore/modules/staff/domain/types"
	staffpersistence "github.com/adesina-femi/staffcore/modules/staff/infrastructure/persistence"
	"github.com/adesina-femi/staffcore/pkg/httperr"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixture struct {
	svc   *PromotionsService
	staff *staffpersistence.MemoryStore
	id    string
}

// newFixture seeds one staff member at GL5 step 3.
func newFixture(t *testing.T) fixture {
	t.Helper()

	staff := staffpersistence.NewMemoryStore()
	member, err := staff.CreateStaff(context.Background(), stafftypes.Staff{
		StaffNumber:      "FCDA/0042",
		FirstName:        "Amina",
		LastName:         "Bello",
		GradeLevel:       5,
		Step:             3,
		EmploymentStatus: stafftypes.EmploymentActive,
	})
	if err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	svc := NewPromotionsService(persistence.NewMemoryStore(staff), staff, audit.NewMemoryStore(), quietLogger())
	svc.NowUTC = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, staff: staff, id: member.ID}
}

func (f fixture) input() CreatePromotionInput {
	return CreatePromotionInput{
		StaffID:       f.id,
		Type:          types.TypeRegular,
		ToGradeLevel:  6,
		ToStep:        1,
		EffectiveDate: "2024-04-01",
		Reason:        "annual review",
	}
}

func TestCreate_SnapshotsCurrentPosition(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), "hr", f.input())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.FromGradeLevel != 5 || created.FromStep != 3 {
		t.Fatalf("from=%d/%d", created.FromGradeLevel, created.FromStep)
	}
	if created.Status != types.StatusPending {
		t.Fatalf("status=%s", created.Status)
	}
}

func TestCreate_DirectionRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// GL5/S3 -> GL5/S2 is a downward move whatever the label says.
	in := f.input()
	in.ToGradeLevel = 5
	in.ToStep = 2
	if _, err := f.svc.Create(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("step down as regular: expected bad request, got %v", err)
	}

	in = f.input()
	in.ToGradeLevel = 5
	in.ToStep = 3
	if _, err := f.svc.Create(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("no movement: expected bad request, got %v", err)
	}

	// Higher grade with a lower step is still an upward move.
	in = f.input()
	in.ToGradeLevel = 6
	in.ToStep = 1
	if _, err := f.svc.Create(ctx, "hr", in); err != nil {
		t.Fatalf("grade up, step reset: %v", err)
	}

	in = f.input()
	in.Type = types.TypeDemotion
	in.ToGradeLevel = 5
	in.ToStep = 2
	if _, err := f.svc.Create(ctx, "hr", in); err != nil {
		t.Fatalf("demotion down: %v", err)
	}

	in = f.input()
	in.Type = types.TypeDemotion
	in.ToGradeLevel = 6
	in.ToStep = 1
	if _, err := f.svc.Create(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("demotion up: expected bad request, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input()
	in.Type = "battlefield"
	if _, err := f.svc.Create(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("bad type: expected bad request, got %v", err)
	}

	in = f.input()
	in.ToGradeLevel = 18
	if _, err := f.svc.Create(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("grade out of range: expected bad request, got %v", err)
	}

	in = f.input()
	in.EffectiveDate = "2024-03-01"
	if _, err := f.svc.Create(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("past effective date: expected bad request, got %v", err)
	}

	in = f.input()
	in.StaffID = "missing"
	if _, err := f.svc.Create(ctx, "hr", in); !httperr.IsNotFound(err) {
		t.Fatalf("unknown staff: expected not found, got %v", err)
	}
}

func TestApprove_AppliesGradeStepOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "hr", f.input())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approved, err := f.svc.Approve(ctx, "director", created.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != types.StatusApproved || approved.ApprovedBy != "director" {
		t.Fatalf("approved=%+v", approved)
	}

	member, err := f.staff.GetStaff(ctx, f.id)
	if err != nil {
		t.Fatalf("get staff: %v", err)
	}
	if member.GradeLevel != 6 || member.Step != 1 {
		t.Fatalf("staff position=%d/%d", member.GradeLevel, member.Step)
	}

	if _, err := f.svc.Approve(ctx, "director", created.ID); !httperr.IsConflict(err) {
		t.Fatalf("second approve: expected conflict, got %v", err)
	}
	if _, err := f.svc.Reject(ctx, "director", created.ID); !httperr.IsConflict(err) {
		t.Fatalf("reject after approve: expected conflict, got %v", err)
	}
}

func TestReject_LeavesStaffUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "hr", f.input())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rejected, err := f.svc.Reject(ctx, "director", created.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != types.StatusRejected {
		t.Fatalf("status=%s", rejected.Status)
	}

	member, err := f.staff.GetStaff(ctx, f.id)
	if err != nil {
		t.Fatalf("get staff: %v", err)
	}
	if member.GradeLevel != 5 || member.Step != 3 {
		t.Fatalf("staff position=%d/%d", member.GradeLevel, member.Step)
	}
}

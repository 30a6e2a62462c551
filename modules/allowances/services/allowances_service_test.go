package services

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/modules/allowances/domain/ports"
	"github.com/adesina-femi/staffcore/modules/allowances/domain/types"
	"github.com/adesina-femi/staffcore/modules/allowances/infrastructure/persistence"
	stafftypes "github.com/adesina-femi/staffcore/modules/staff/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
)

type stubStaffDirectory struct {
	ids map[string]bool
}

func (d stubStaffDirectory) GetStaff(_ context.Context, id string) (stafftypes.Staff, error) {
	if !d.ids[id] {
		return stafftypes.Staff{}, httperr.NewNotFound("staff not found")
	}
	return stafftypes.Staff{ID: id}, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService() *AllowancesService {
	store := persistence.NewMemoryStore()
	staff := stubStaffDirectory{ids: map[string]bool{"st-1": true}}
	return NewAllowancesService(store, store, staff, audit.NewMemoryStore(), quietLogger())
}

func TestApplyRules(t *testing.T) {
	gross := decimal.NewFromInt(200000)
	rules := []types.Rule{
		{Name: "Housing", Kind: types.KindPercentage, Value: "20", IsActive: true},
		{Name: "Transport", Kind: types.KindFixed, Value: "15000", IsActive: true},
		{Name: "Hazard", Kind: types.KindPercentage, Value: "10", IsActive: false},
	}

	total, err := ApplyRules(gross, rules)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	// 20% of 200000 plus 15000; the inactive rule contributes nothing.
	if total.StringFixed(2) != "55000.00" {
		t.Fatalf("total=%s", total)
	}

	total, err = ApplyRules(gross, nil)
	if err != nil {
		t.Fatalf("apply empty: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("empty rules total=%s", total)
	}
}

func TestCreateRule_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   RuleInput
	}{
		{"empty name", RuleInput{Name: " ", Kind: "fixed", Value: "1000"}},
		{"bad kind", RuleInput{Name: "Housing", Kind: "bonus", Value: "20"}},
		{"bad value", RuleInput{Name: "Housing", Kind: "fixed", Value: "lots"}},
		{"zero value", RuleInput{Name: "Housing", Kind: "fixed", Value: "0"}},
		{"percentage over 100", RuleInput{Name: "Housing", Kind: "percentage", Value: "120"}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateRule(ctx, "payroll", tc.in); !httperr.IsBadRequest(err) {
			t.Fatalf("%s: expected bad request, got %v", tc.name, err)
		}
	}
}

func TestCreateRule_DuplicateName(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := RuleInput{Name: "Housing", Kind: "percentage", Value: "20"}
	if _, err := svc.CreateRule(ctx, "payroll", in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateRule(ctx, "payroll", in); !httperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateRule_Toggle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateRule(ctx, "payroll", RuleInput{Name: "Housing", Kind: "percentage", Value: "20"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.IsActive {
		t.Fatalf("expected active by default")
	}

	inactive := false
	updated, err := svc.UpdateRule(ctx, "payroll", created.ID, RuleInput{Name: "Housing", Kind: "percentage", Value: "25", IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Value != "25" || updated.IsActive {
		t.Fatalf("updated=%+v", updated)
	}

	active, err := svc.ListRules(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active=%d", len(active))
	}
}

func TestIndividual_Lifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := IndividualInput{StaffID: "st-1", Type: "relocation", Description: "Relocation support", Amount: "50000", Period: "2024-05"}
	created, err := svc.CreateIndividual(ctx, "hr", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != types.StatusPending || created.Amount != "50000.00" {
		t.Fatalf("created=%+v", created)
	}
	if created.Type != "relocation" {
		t.Fatalf("type=%s", created.Type)
	}
	got, err := svc.GetIndividual(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Type != "relocation" {
		t.Fatalf("stored type=%s", got.Type)
	}

	applied, err := svc.MarkApplied(ctx, "payroll", created.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied.Status != types.StatusApplied {
		t.Fatalf("status=%s", applied.Status)
	}

	// Applied allowances are payroll history; cancellation is refused.
	if _, err := svc.Cancel(ctx, "hr", created.ID); !httperr.IsConflict(err) {
		t.Fatalf("cancel applied: expected conflict, got %v", err)
	}

	second, err := svc.CreateIndividual(ctx, "hr", in)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	cancelled, err := svc.Cancel(ctx, "hr", second.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != types.StatusCancelled {
		t.Fatalf("status=%s", cancelled.Status)
	}
	if _, err := svc.MarkApplied(ctx, "payroll", second.ID); !httperr.IsConflict(err) {
		t.Fatalf("apply cancelled: expected conflict, got %v", err)
	}
}

func TestIndividual_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	base := IndividualInput{StaffID: "st-1", Type: "bonus", Description: "Bonus", Amount: "10000", Period: "2024-05"}

	in := base
	in.Type = "  "
	if _, err := svc.CreateIndividual(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("empty type: expected bad request, got %v", err)
	}

	in = base
	in.Description = "  "
	if _, err := svc.CreateIndividual(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("empty description: expected bad request, got %v", err)
	}

	in = base
	in.Amount = "-10"
	if _, err := svc.CreateIndividual(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("negative amount: expected bad request, got %v", err)
	}

	in = base
	in.Period = "May 2024"
	if _, err := svc.CreateIndividual(ctx, "hr", in); !httperr.IsBadRequest(err) {
		t.Fatalf("bad period: expected bad request, got %v", err)
	}

	in = base
	in.StaffID = "missing"
	if _, err := svc.CreateIndividual(ctx, "hr", in); !httperr.IsNotFound(err) {
		t.Fatalf("unknown staff: expected not found, got %v", err)
	}
}

func TestListIndividual_Filters(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	may := IndividualInput{StaffID: "st-1", Type: "bonus", Description: "Bonus", Amount: "10000", Period: "2024-05"}
	june := IndividualInput{StaffID: "st-1", Type: "bonus", Description: "Bonus", Amount: "10000", Period: "2024-06"}
	if _, err := svc.CreateIndividual(ctx, "hr", may); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateIndividual(ctx, "hr", june); err != nil {
		t.Fatalf("create: %v", err)
	}

	byPeriod, err := svc.ListIndividual(ctx, ports.IndividualFilter{Period: "2024-06"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byPeriod) != 1 || byPeriod[0].Period != "2024-06" {
		t.Fatalf("byPeriod=%+v", byPeriod)
	}
}

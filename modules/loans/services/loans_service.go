package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/modules/loans/domain/ports"
	"github.com/adesina-femi/staffcore/modules/loans/domain/types"
	stafftypes "github.com/adesina-femi/staffcore/modules/staff/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/loanmath"
)

type LoansService struct {
	store  ports.LoanStore
	staff  ports.StaffDirectory
	coops  ports.CooperativeDirectory
	trail  audit.Store
	log    *logrus.Logger
	NowUTC func() time.Time
}

func NewLoansService(store ports.LoanStore, staff ports.StaffDirectory, coops ports.CooperativeDirectory, trail audit.Store, log *logrus.Logger) *LoansService {
	return &LoansService{
		store:  store,
		staff:  staff,
		coops:  coops,
		trail:  trail,
		log:    log,
		NowUTC: func() time.Time { return time.Now().UTC() },
	}
}

// LoanTermsInput carries the amortization terms for create and for the
// pre-repayment term edit. Amounts and rates travel as strings and are
// parsed here, never coerced.
type LoanTermsInput struct {
	TotalAmount       string
	AnnualRatePercent string
	Method            string
	Installments      int
	StartDate         string
}

type CreateLoanInput struct {
	StaffID       string
	CooperativeID string
	Notes         string
	Terms         LoanTermsInput
}

// parsedTerms is the validated, decimal form of LoanTermsInput.
type parsedTerms struct {
	amount    decimal.Decimal
	rate      decimal.Decimal
	method    loanmath.Method
	n         int
	startDate time.Time
}

func parseTerms(in LoanTermsInput) (parsedTerms, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.TotalAmount))
	if err != nil {
		return parsedTerms{}, httperr.NewBadRequest("total_amount must be a decimal number")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(in.AnnualRatePercent))
	if err != nil {
		return parsedTerms{}, httperr.NewBadRequest("annual_rate_percent must be a decimal number")
	}
	method, err := loanmath.ParseMethod(in.Method)
	if err != nil {
		return parsedTerms{}, err
	}
	start, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return parsedTerms{}, httperr.NewBadRequest("start_date must be YYYY-MM-DD")
	}
	return parsedTerms{amount: amount, rate: rate, method: method, n: in.Installments, startDate: start}, nil
}

// applyTerms writes the term fields and the baseline figures derived from
// them onto the loan.
func applyTerms(loan types.Loan, t parsedTerms) (types.Loan, error) {
	summary, err := loanmath.ComputeSchedule(t.amount, t.rate, t.n, t.method)
	if err != nil {
		return types.Loan{}, err
	}

	loan.TotalAmount = t.amount.StringFixed(2)
	loan.AnnualRatePercent = t.rate.String()
	loan.Method = string(t.method)
	loan.Installments = t.n
	loan.StartDate = t.startDate.Format("2006-01-02")
	loan.MonthlyPrincipal = summary.MonthlyPrincipal.StringFixed(2)
	loan.MonthlyInterest = summary.MonthlyInterest.StringFixed(2)
	loan.MonthlyTotal = summary.MonthlyTotal.StringFixed(2)
	loan.TotalInterest = summary.TotalInterest.StringFixed(2)
	loan.EndDate = loanmath.EndDate(t.startDate, t.n).Format("2006-01-02")
	return loan, nil
}

func (s *LoansService) Create(ctx context.Context, actor string, in CreateLoanInput) (types.Loan, error) {
	t, err := parseTerms(in.Terms)
	if err != nil {
		return types.Loan{}, err
	}

	member, err := s.staff.GetStaff(ctx, in.StaffID)
	if err != nil {
		return types.Loan{}, err
	}
	if member.EmploymentStatus == stafftypes.EmploymentExited {
		return types.Loan{}, httperr.NewConflict("cannot open a loan for exited staff")
	}

	if in.CooperativeID != "" {
		coop, err := s.coops.GetCooperative(ctx, in.CooperativeID)
		if err != nil {
			return types.Loan{}, err
		}
		if !coop.IsActive {
			return types.Loan{}, httperr.NewConflict("cooperative is inactive")
		}
	}

	loan, err := applyTerms(types.Loan{
		StaffID:          in.StaffID,
		CooperativeID:    in.CooperativeID,
		Notes:            strings.TrimSpace(in.Notes),
		Status:           types.StatusPending,
		InstallmentsPaid: 0,
	}, t)
	if err != nil {
		return types.Loan{}, err
	}
	loan.RemainingBalance = loan.TotalAmount

	created, err := s.store.CreateLoan(ctx, loan)
	if err != nil {
		return types.Loan{}, err
	}

	detail, _ := json.Marshal(map[string]any{
		"staff_id": created.StaffID, "total_amount": created.TotalAmount,
		"method": created.Method, "installments": created.Installments,
	})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "loan.create", Entity: "loan", EntityID: created.ID, Detail: detail,
	}); err != nil {
		return types.Loan{}, err
	}
	s.log.Infof("loan created: %s for staff %s (%s %s)", created.ID, created.StaffID, created.Method, created.TotalAmount)
	return s.decorate(created), nil
}

// UpdateTerms recomputes a loan from fresh terms. Terms are immutable
// once the first repayment has been applied, and after a terminal status.
func (s *LoansService) UpdateTerms(ctx context.Context, actor, id string, in LoanTermsInput) (types.Loan, error) {
	existing, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return types.Loan{}, err
	}
	if existing.InstallmentsPaid > 0 {
		return types.Loan{}, httperr.NewConflict("loan terms are immutable once repayments have started")
	}
	if existing.Status != types.StatusPending && existing.Status != types.StatusActive {
		return types.Loan{}, httperr.NewConflict("loan terms cannot change in status " + existing.Status)
	}

	t, err := parseTerms(in)
	if err != nil {
		return types.Loan{}, err
	}
	next, err := applyTerms(existing, t)
	if err != nil {
		return types.Loan{}, err
	}
	next.RemainingBalance = next.TotalAmount

	updated, err := s.store.UpdateLoanTerms(ctx, next)
	if err != nil {
		return types.Loan{}, err
	}

	detail, _ := json.Marshal(map[string]any{"total_amount": updated.TotalAmount, "installments": updated.Installments, "method": updated.Method})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "loan.update_terms", Entity: "loan", EntityID: updated.ID, Detail: detail,
	}); err != nil {
		return types.Loan{}, err
	}
	return s.decorate(updated), nil
}

func (s *LoansService) UpdateNotes(ctx context.Context, actor, id, notes string) (types.Loan, error) {
	updated, err := s.store.UpdateLoanNotes(ctx, id, strings.TrimSpace(notes))
	if err != nil {
		return types.Loan{}, err
	}
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "loan.update_notes", Entity: "loan", EntityID: updated.ID,
	}); err != nil {
		return types.Loan{}, err
	}
	return s.decorate(updated), nil
}

// Approve moves a pending loan to active. A loan is approved at most once.
func (s *LoansService) Approve(ctx context.Context, actor, id string) (types.Loan, error) {
	approved, err := s.store.ApproveLoan(ctx, id, actor, s.NowUTC().Format(time.RFC3339))
	if err != nil {
		return types.Loan{}, err
	}

	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "loan.approve", Entity: "loan", EntityID: approved.ID,
	}); err != nil {
		return types.Loan{}, err
	}
	s.log.Infof("loan approved: %s by %s", approved.ID, actor)
	return s.decorate(approved), nil
}

// RecordRepayment applies the next scheduled installment: the paid counter
// advances and the remaining balance drops by that installment's principal
// portion. The final installment moves the loan to paid_off.
func (s *LoansService) RecordRepayment(ctx context.Context, actor, id string) (types.Loan, error) {
	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return types.Loan{}, err
	}
	if loan.Status != types.StatusActive {
		return types.Loan{}, httperr.NewConflict("repayments apply to active loans only")
	}
	if loan.InstallmentsPaid >= loan.Installments {
		return types.Loan{}, httperr.NewConflict("all installments are already paid")
	}

	schedule, err := s.projected(loan)
	if err != nil {
		return types.Loan{}, err
	}
	next := schedule[loan.InstallmentsPaid]

	remaining, err := decimal.NewFromString(loan.RemainingBalance)
	if err != nil {
		return types.Loan{}, err
	}
	// A manual downward adjustment can leave less balance than the next
	// scheduled principal portion; the balance floors at zero rather than
	// going negative.
	newRemaining := remaining.Sub(next.Principal)
	if newRemaining.IsNegative() {
		newRemaining = decimal.Zero
	}

	newStatus := loan.Status
	if loan.InstallmentsPaid+1 == loan.Installments {
		newStatus = types.StatusPaidOff
	}

	updated, err := s.store.RecordRepayment(ctx, id, newRemaining.StringFixed(2), newStatus)
	if err != nil {
		return types.Loan{}, err
	}

	detail, _ := json.Marshal(map[string]any{
		"installment_number": next.Number,
		"principal_amount":   next.Principal.StringFixed(2),
		"interest_amount":    next.Interest.StringFixed(2),
		"remaining_balance":  updated.RemainingBalance,
	})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "loan.repayment", Entity: "loan", EntityID: updated.ID, Detail: detail,
	}); err != nil {
		return types.Loan{}, err
	}
	s.log.Infof("loan repayment: %s installment %d/%d", updated.ID, updated.InstallmentsPaid, updated.Installments)
	return s.decorate(updated), nil
}

// SetStatus applies a manual status transition. paid_off is never set
// manually; it is reached through repayments. Cancellation is allowed
// while the loan is pending, or while active with no repayments yet.
func (s *LoansService) SetStatus(ctx context.Context, actor, id, status string) (types.Loan, error) {
	if !types.ValidStatus(status) {
		return types.Loan{}, httperr.NewBadRequest("unknown loan status: " + status)
	}

	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return types.Loan{}, err
	}
	if err := checkTransition(loan, status); err != nil {
		return types.Loan{}, err
	}

	updated, err := s.store.SetLoanStatus(ctx, id, status)
	if err != nil {
		return types.Loan{}, err
	}

	detail, _ := json.Marshal(map[string]any{"from": loan.Status, "to": status})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "loan.status", Entity: "loan", EntityID: updated.ID, Detail: detail,
	}); err != nil {
		return types.Loan{}, err
	}
	return s.decorate(updated), nil
}

func checkTransition(loan types.Loan, to string) error {
	switch to {
	case types.StatusDefaulted:
		if loan.Status != types.StatusActive {
			return httperr.NewConflict("only active loans can default")
		}
	case types.StatusCancelled:
		if loan.Status == types.StatusPending {
			return nil
		}
		if loan.Status == types.StatusActive && loan.InstallmentsPaid == 0 {
			return nil
		}
		if loan.Status == types.StatusActive {
			return httperr.NewConflict("a loan with recorded repayments cannot be cancelled")
		}
		return httperr.NewConflict("loan cannot be cancelled in status " + loan.Status)
	case types.StatusActive:
		return httperr.NewConflict("use approval to activate a loan")
	default:
		return httperr.NewConflict("status " + to + " cannot be set manually")
	}
	return nil
}

type AdjustBalanceInput struct {
	NewBalance string
	Reason     string
}

// AdjustBalance overrides the remaining balance through an explicit,
// attributable adjustment event. A balance above the original amount is
// accepted and surfaces as an anomaly on reads rather than being clamped.
func (s *LoansService) AdjustBalance(ctx context.Context, actor, id string, in AdjustBalanceInput) (types.Adjustment, error) {
	newBalance, err := decimal.NewFromString(strings.TrimSpace(in.NewBalance))
	if err != nil {
		return types.Adjustment{}, httperr.NewBadRequest("new_balance must be a decimal number")
	}
	if newBalance.IsNegative() {
		return types.Adjustment{}, httperr.NewBadRequest("new_balance cannot be negative")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return types.Adjustment{}, httperr.NewBadRequest("reason is required")
	}

	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return types.Adjustment{}, err
	}
	if loan.Status == types.StatusCancelled || loan.Status == types.StatusPaidOff {
		return types.Adjustment{}, httperr.NewConflict("balance cannot change in status " + loan.Status)
	}

	adj, err := s.store.AddAdjustment(ctx, types.Adjustment{
		LoanID:     id,
		Actor:      actor,
		OldBalance: loan.RemainingBalance,
		NewBalance: newBalance.StringFixed(2),
		Reason:     strings.TrimSpace(in.Reason),
	})
	if err != nil {
		return types.Adjustment{}, err
	}

	detail, _ := json.Marshal(map[string]any{"old_balance": adj.OldBalance, "new_balance": adj.NewBalance, "reason": adj.Reason})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "loan.adjust_balance", Entity: "loan", EntityID: id, Detail: detail,
	}); err != nil {
		return types.Adjustment{}, err
	}
	s.log.Warnf("loan balance adjusted: %s %s -> %s (%s)", id, adj.OldBalance, adj.NewBalance, adj.Reason)
	return adj, nil
}

func (s *LoansService) ListAdjustments(ctx context.Context, id string) ([]types.Adjustment, error) {
	if _, err := s.store.GetLoan(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListAdjustments(ctx, id)
}

func (s *LoansService) Get(ctx context.Context, id string) (types.Loan, error) {
	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return types.Loan{}, err
	}
	return s.decorate(loan), nil
}

func (s *LoansService) List(ctx context.Context, f ports.ListFilter) ([]types.Loan, error) {
	list, err := s.store.ListLoans(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = s.decorate(list[i])
	}
	return list, nil
}

// Schedule projects the full installment table for a loan from its stored
// terms and paid counter. Nothing in the table is persisted.
func (s *LoansService) Schedule(ctx context.Context, id string) ([]types.ScheduleEntry, error) {
	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	schedule, err := s.projected(loan)
	if err != nil {
		return nil, err
	}

	out := make([]types.ScheduleEntry, 0, len(schedule))
	for _, inst := range schedule {
		out = append(out, types.ScheduleEntry{
			InstallmentNumber: inst.Number,
			DueDate:           inst.DueDate.Format("2006-01-02"),
			PrincipalAmount:   inst.Principal.StringFixed(2),
			InterestAmount:    inst.Interest.StringFixed(2),
			TotalAmount:       inst.Total.StringFixed(2),
			RemainingAfter:    inst.RemainingAfter.StringFixed(2),
			IsPaid:            inst.Paid,
		})
	}
	return out, nil
}

func (s *LoansService) projected(loan types.Loan) ([]loanmath.Installment, error) {
	amount, err := decimal.NewFromString(loan.TotalAmount)
	if err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(loan.AnnualRatePercent)
	if err != nil {
		return nil, err
	}
	start, err := time.Parse("2006-01-02", loan.StartDate)
	if err != nil {
		return nil, err
	}
	return loanmath.ProjectSchedule(loanmath.Terms{
		Principal:         amount,
		AnnualRatePercent: rate,
		Installments:      loan.Installments,
		Method:            loanmath.Method(loan.Method),
		StartDate:         start,
	}, loan.InstallmentsPaid)
}

// decorate computes the read-side progress figures. Parse failures leave
// the loan undecorated instead of failing the read.
func (s *LoansService) decorate(loan types.Loan) types.Loan {
	amount, err := decimal.NewFromString(loan.TotalAmount)
	if err != nil {
		return loan
	}
	remaining, err := decimal.NewFromString(loan.RemainingBalance)
	if err != nil {
		return loan
	}
	percent, anomaly := loanmath.Progress(amount, remaining)
	loan.ProgressPercent = percent.StringFixed(2)
	loan.BalanceAnomaly = anomaly
	return loan
}

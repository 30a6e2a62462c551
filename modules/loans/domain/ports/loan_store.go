package ports

import (
	"context"

	cooptypes "github.com/adesina-femi/staffcore/modules/cooperatives/domain/types"
	"github.com/adesina-femi/staffcore/modules/loans/domain/types"
	stafftypes "github.com/adesina-femi/staffcore/modules/staff/domain/types"
)

type ListFilter struct {
	StaffID       string
	CooperativeID string
	Status        string
}

// LoanStore persists loans and their adjustment events. Guarded mutations
// (approve, repayment, status, adjustment) enforce their preconditions in
// the store so the pg implementation can do them in one transaction.
type LoanStore interface {
	CreateLoan(ctx context.Context, loan types.Loan) (types.Loan, error)
	GetLoan(ctx context.Context, id string) (types.Loan, error)
	ListLoans(ctx context.Context, filter ListFilter) ([]types.Loan, error)

	// UpdateLoanTerms rewrites the term and baseline fields of a loan that
	// has no repayments yet. Fails with a conflict otherwise.
	UpdateLoanTerms(ctx context.Context, loan types.Loan) (types.Loan, error)

	// ApproveLoan moves a pending loan to active, recording the approver.
	ApproveLoan(ctx context.Context, id, approvedBy, approvedAt string) (types.Loan, error)

	// RecordRepayment applies one installment: increments the paid counter,
	// replaces the remaining balance and sets the new status.
	RecordRepayment(ctx context.Context, id, newRemaining, newStatus string) (types.Loan, error)

	SetLoanStatus(ctx context.Context, id, status string) (types.Loan, error)
	UpdateLoanNotes(ctx context.Context, id, notes string) (types.Loan, error)

	// AddAdjustment records a manual balance override and applies the new
	// balance to the loan atomically.
	AddAdjustment(ctx context.Context, adj types.Adjustment) (types.Adjustment, error)
	ListAdjustments(ctx context.Context, loanID string) ([]types.Adjustment, error)

	CountLoansForCooperative(ctx context.Context, cooperativeID string) (int, error)
}

// StaffDirectory is the slice of the staff store the loans service needs.
type StaffDirectory interface {
	GetStaff(ctx context.Context, id string) (stafftypes.Staff, error)
}

// CooperativeDirectory resolves cooperative references on loan creation.
type CooperativeDirectory interface {
	GetCooperative(ctx context.Context, id string) (cooptypes.Cooperative, error)
}

package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/adesina-femi/staffcore/modules/loans/domain/ports"
	"github.com/adesina-femi/staffcore/modules/loans/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PGStore struct {
	pool pgBeginner
}

func NewPGStore(pool pgBeginner) *PGStore {
	return &PGStore{pool: pool}
}

var _ ports.LoanStore = (*PGStore)(nil)

const loanColumns = `
  id::text,
  staff_id::text,
  COALESCE(cooperative_id::text, '') AS cooperative_id,
  total_amount::text,
  annual_rate_percent::text,
  method,
  installments,
  start_date::text,
  monthly_principal::text,
  monthly_interest::text,
  monthly_total::text,
  total_interest::text,
  end_date::text,
  installments_paid,
  remaining_balance::text,
  status,
  COALESCE(approved_by, '') AS approved_by,
  COALESCE(approved_at::text, '') AS approved_at,
  COALESCE(notes, '') AS notes,
  created_at::text,
  updated_at::text`

func scanLoan(row pgx.Row) (types.Loan, error) {
	var l types.Loan
	err := row.Scan(&l.ID, &l.StaffID, &l.CooperativeID,
		&l.TotalAmount, &l.AnnualRatePercent, &l.Method, &l.Installments, &l.StartDate,
		&l.MonthlyPrincipal, &l.MonthlyInterest, &l.MonthlyTotal, &l.TotalInterest, &l.EndDate,
		&l.InstallmentsPaid, &l.RemainingBalance, &l.Status, &l.ApprovedBy, &l.ApprovedAt, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Loan{}, httperr.NewNotFound("loan not found")
	}
	return l, err
}

func (s *PGStore) CreateLoan(ctx context.Context, loan types.Loan) (types.Loan, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Loan{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Loan{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanLoan(tx.QueryRow(ctx, `
INSERT INTO loans (
  id, staff_id, cooperative_id,
  total_amount, annual_rate_percent, method, installments, start_date,
  monthly_principal, monthly_interest, monthly_total, total_interest, end_date,
  installments_paid, remaining_balance, status, notes
) VALUES (
  $1::uuid, $2::uuid, NULLIF($3, '')::uuid,
  $4::numeric, $5::numeric, $6, $7, $8::date,
  $9::numeric, $10::numeric, $11::numeric, $12::numeric, $13::date,
  0, $14::numeric, $15, NULLIF($16, '')
)
RETURNING `+loanColumns,
		id, loan.StaffID, loan.CooperativeID,
		loan.TotalAmount, loan.AnnualRatePercent, loan.Method, loan.Installments, loan.StartDate,
		loan.MonthlyPrincipal, loan.MonthlyInterest, loan.MonthlyTotal, loan.TotalInterest, loan.EndDate,
		loan.RemainingBalance, loan.Status, loan.Notes))
	if err != nil {
		return types.Loan{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Loan{}, err
	}
	return out, nil
}

func (s *PGStore) GetLoan(ctx context.Context, id string) (types.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Loan{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanLoan(tx.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1::uuid`, id))
	if err != nil {
		return types.Loan{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) ListLoans(ctx context.Context, f ports.ListFilter) ([]types.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+loanColumns+`
FROM loans
WHERE ($1 = '' OR staff_id = $1::uuid)
  AND ($2 = '' OR cooperative_id = $2::uuid)
  AND ($3 = '' OR status = $3)
ORDER BY created_at ASC, id ASC
`, f.StaffID, f.CooperativeID, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) UpdateLoanTerms(ctx context.Context, loan types.Loan) (types.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Loan{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanLoan(tx.QueryRow(ctx, `
UPDATE loans
SET total_amount = $2::numeric,
    annual_rate_percent = $3::numeric,
    method = $4,
    installments = $5,
    start_date = $6::date,
    monthly_principal = $7::numeric,
    monthly_interest = $8::numeric,
    monthly_total = $9::numeric,
    total_interest = $10::numeric,
    end_date = $11::date,
    remaining_balance = $12::numeric,
    updated_at = now()
WHERE id = $1::uuid AND installments_paid = 0
RETURNING `+loanColumns,
		loan.ID, loan.TotalAmount, loan.AnnualRatePercent, loan.Method, loan.Installments, loan.StartDate,
		loan.MonthlyPrincipal, loan.MonthlyInterest, loan.MonthlyTotal, loan.TotalInterest, loan.EndDate,
		loan.RemainingBalance))
	if httperr.IsNotFound(err) {
		// Row exists but the guard refused it, or the loan is gone.
		if _, getErr := s.GetLoan(ctx, loan.ID); getErr == nil {
			return types.Loan{}, httperr.NewConflict("loan terms are immutable once repayments have started")
		}
		return types.Loan{}, err
	}
	if err != nil {
		return types.Loan{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Loan{}, err
	}
	return out, nil
}

func (s *PGStore) ApproveLoan(ctx context.Context, id, approvedBy, approvedAt string) (types.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Loan{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanLoan(tx.QueryRow(ctx, `
UPDATE loans
SET status = 'active',
    approved_by = $2,
    approved_at = $3::timestamptz,
    updated_at = now()
WHERE id = $1::uuid AND status = 'pending' AND approved_by IS NULL
RETURNING `+loanColumns,
		id, approvedBy, approvedAt))
	if httperr.IsNotFound(err) {
		if _, getErr := s.GetLoan(ctx, id); getErr == nil {
			return types.Loan{}, httperr.NewConflict("loan is not awaiting approval")
		}
		return types.Loan{}, err
	}
	if err != nil {
		return types.Loan{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Loan{}, err
	}
	return out, nil
}

func (s *PGStore) RecordRepayment(ctx context.Context, id, newRemaining, newStatus string) (types.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Loan{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanLoan(tx.QueryRow(ctx, `
UPDATE loans
SET installments_paid = installments_paid + 1,
    remaining_balance = $2::numeric,
    status = $3,
    updated_at = now()
WHERE id = $1::uuid AND status = 'active' AND installments_paid < installments
RETURNING `+loanColumns,
		id, newRemaining, newStatus))
	if httperr.IsNotFound(err) {
		if _, getErr := s.GetLoan(ctx, id); getErr == nil {
			return types.Loan{}, httperr.NewConflict("repayments apply to active loans only")
		}
		return types.Loan{}, err
	}
	if err != nil {
		return types.Loan{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Loan{}, err
	}
	return out, nil
}

func (s *PGStore) SetLoanStatus(ctx context.Context, id, status string) (types.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Loan{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanLoan(tx.QueryRow(ctx, `
UPDATE loans SET status = $2, updated_at = now() WHERE id = $1::uuid
RETURNING `+loanColumns, id, status))
	if err != nil {
		return types.Loan{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Loan{}, err
	}
	return out, nil
}

func (s *PGStore) UpdateLoanNotes(ctx context.Context, id, notes string) (types.Loan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Loan{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanLoan(tx.QueryRow(ctx, `
UPDATE loans SET notes = NULLIF($2, ''), updated_at = now() WHERE id = $1::uuid
RETURNING `+loanColumns, id, notes))
	if err != nil {
		return types.Loan{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Loan{}, err
	}
	return out, nil
}

const adjustmentColumns = `
  id::text,
  loan_id::text,
  actor,
  old_balance::text,
  new_balance::text,
  reason,
  created_at::text`

func scanAdjustment(row pgx.Row) (types.Adjustment, error) {
	var a types.Adjustment
	err := row.Scan(&a.ID, &a.LoanID, &a.Actor, &a.OldBalance, &a.NewBalance, &a.Reason, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Adjustment{}, httperr.NewNotFound("adjustment not found")
	}
	return a, err
}

// AddAdjustment writes the event row and the new loan balance in the same
// transaction.
func (s *PGStore) AddAdjustment(ctx context.Context, adj types.Adjustment) (types.Adjustment, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Adjustment{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Adjustment{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanAdjustment(tx.QueryRow(ctx, `
INSERT INTO loan_adjustments (id, loan_id, actor, old_balance, new_balance, reason)
VALUES ($1::uuid, $2::uuid, $3, $4::numeric, $5::numeric, $6)
RETURNING `+adjustmentColumns,
		id, adj.LoanID, adj.Actor, adj.OldBalance, adj.NewBalance, adj.Reason))
	if err != nil {
		return types.Adjustment{}, err
	}

	tag, err := tx.Exec(ctx, `
UPDATE loans SET remaining_balance = $2::numeric, updated_at = now() WHERE id = $1::uuid
`, adj.LoanID, adj.NewBalance)
	if err != nil {
		return types.Adjustment{}, err
	}
	if tag.RowsAffected() == 0 {
		return types.Adjustment{}, httperr.NewNotFound("loan not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Adjustment{}, err
	}
	return out, nil
}

func (s *PGStore) ListAdjustments(ctx context.Context, loanID string) ([]types.Adjustment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+adjustmentColumns+`
FROM loan_adjustments
WHERE loan_id = $1::uuid
ORDER BY created_at ASC, id ASC
`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Adjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) CountLoansForCooperative(ctx context.Context, cooperativeID string) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM loans WHERE cooperative_id = $1::uuid`, cooperativeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, tx.Commit(ctx)
}

package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/adesina-femi/staffcore/modules/loans/domain/ports"
	"github.com/adesina-femi/staffcore/modules/loans/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

type MemoryStore struct {
	mu          sync.Mutex
	byID        map[string]types.Loan
	adjustments map[string][]types.Adjustment
	nowUTC      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:        make(map[string]types.Loan),
		adjustments: make(map[string][]types.Adjustment),
		nowUTC:      func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.LoanStore = (*MemoryStore)(nil)

func (s *MemoryStore) CreateLoan(_ context.Context, loan types.Loan) (types.Loan, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Loan{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowUTC().Format(time.RFC3339)
	loan.ID = id
	loan.CreatedAt = now
	loan.UpdatedAt = now
	s.byID[id] = loan
	return loan, nil
}

func (s *MemoryStore) GetLoan(_ context.Context, id string) (types.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *MemoryStore) get(id string) (types.Loan, error) {
	loan, ok := s.byID[id]
	if !ok {
		return types.Loan{}, httperr.NewNotFound("loan not found")
	}
	return loan, nil
}

func (s *MemoryStore) ListLoans(_ context.Context, f ports.ListFilter) ([]types.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Loan, 0, len(s.byID))
	for _, loan := range s.byID {
		if f.StaffID != "" && loan.StaffID != f.StaffID {
			continue
		}
		if f.CooperativeID != "" && loan.CooperativeID != f.CooperativeID {
			continue
		}
		if f.Status != "" && loan.Status != f.Status {
			continue
		}
		out = append(out, loan)
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *MemoryStore) UpdateLoanTerms(_ context.Context, loan types.Loan) (types.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.get(loan.ID)
	if err != nil {
		return types.Loan{}, err
	}
	if existing.InstallmentsPaid > 0 {
		return types.Loan{}, httperr.NewConflict("loan terms are immutable once repayments have started")
	}

	existing.TotalAmount = loan.TotalAmount
	existing.AnnualRatePercent = loan.AnnualRatePercent
	existing.Method = loan.Method
	existing.Installments = loan.Installments
	existing.StartDate = loan.StartDate
	existing.MonthlyPrincipal = loan.MonthlyPrincipal
	existing.MonthlyInterest = loan.MonthlyInterest
	existing.MonthlyTotal = loan.MonthlyTotal
	existing.TotalInterest = loan.TotalInterest
	existing.EndDate = loan.EndDate
	existing.RemainingBalance = loan.RemainingBalance
	existing.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[existing.ID] = existing
	return existing, nil
}

func (s *MemoryStore) ApproveLoan(_ context.Context, id, approvedBy, approvedAt string) (types.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.get(id)
	if err != nil {
		return types.Loan{}, err
	}
	if loan.Status != types.StatusPending || loan.ApprovedBy != "" {
		return types.Loan{}, httperr.NewConflict("loan is not awaiting approval")
	}

	loan.Status = types.StatusActive
	loan.ApprovedBy = approvedBy
	loan.ApprovedAt = approvedAt
	loan.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[id] = loan
	return loan, nil
}

func (s *MemoryStore) RecordRepayment(_ context.Context, id, newRemaining, newStatus string) (types.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.get(id)
	if err != nil {
		return types.Loan{}, err
	}
	if loan.Status != types.StatusActive {
		return types.Loan{}, httperr.NewConflict("repayments apply to active loans only")
	}

	loan.InstallmentsPaid++
	loan.RemainingBalance = newRemaining
	loan.Status = newStatus
	loan.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[id] = loan
	return loan, nil
}

func (s *MemoryStore) SetLoanStatus(_ context.Context, id, status string) (types.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.get(id)
	if err != nil {
		return types.Loan{}, err
	}
	loan.Status = status
	loan.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[id] = loan
	return loan, nil
}

func (s *MemoryStore) UpdateLoanNotes(_ context.Context, id, notes string) (types.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.get(id)
	if err != nil {
		return types.Loan{}, err
	}
	loan.Notes = notes
	loan.UpdatedAt = s.nowUTC().Format(time.RFC3339)
	s.byID[id] = loan
	return loan, nil
}

func (s *MemoryStore) AddAdjustment(_ context.Context, adj types.Adjustment) (types.Adjustment, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Adjustment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loan, err := s.get(adj.LoanID)
	if err != nil {
		return types.Adjustment{}, err
	}

	adj.ID = id
	adj.CreatedAt = s.nowUTC().Format(time.RFC3339)
	s.adjustments[adj.LoanID] = append(s.adjustments[adj.LoanID], adj)

	loan.RemainingBalance = adj.NewBalance
	loan.UpdatedAt = adj.CreatedAt
	s.byID[loan.ID] = loan
	return adj, nil
}

func (s *MemoryStore) ListAdjustments(_ context.Context, loanID string) ([]types.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.adjustments[loanID]
	out := make([]types.Adjustment, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) CountLoansForCooperative(_ context.Context, cooperativeID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, loan := range s.byID {
		if loan.CooperativeID == cooperativeID {
			count++
		}
	}
	return count, nil
}

func sortByCreatedAt(list []types.Loan) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].CreatedAt < list[i].CreatedAt ||
				(list[j].CreatedAt == list[i].CreatedAt && list[j].ID < list[i].ID) {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
}

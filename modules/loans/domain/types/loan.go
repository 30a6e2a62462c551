package types

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusPaidOff   = "paid_off"
	StatusDefaulted = "defaulted"
	StatusCancelled = "cancelled"
)

// Loan is a monetary advance to a staff member, optionally brokered
// through a cooperative organization. Term fields are immutable once the
// first repayment has been applied; only status, remaining balance (via
// recorded adjustments) and notes may change after that.
type Loan struct {
	ID            string `json:"id"`
	StaffID       string `json:"staff_id"`
	CooperativeID string `json:"cooperative_id,omitempty"`

	// Terms.
	TotalAmount       string `json:"total_amount"`
	AnnualRatePercent string `json:"annual_rate_percent"`
	Method            string `json:"method"`
	Installments      int    `json:"installments"`
	StartDate         string `json:"start_date"`

	// Baseline figures computed from the terms at creation and
	// recomputed on a pre-repayment term edit.
	MonthlyPrincipal string `json:"monthly_principal"`
	MonthlyInterest  string `json:"monthly_interest"`
	MonthlyTotal     string `json:"monthly_total"`
	TotalInterest    string `json:"total_interest"`
	EndDate          string `json:"end_date"`

	// Runtime state.
	InstallmentsPaid int    `json:"installments_paid"`
	RemainingBalance string `json:"remaining_balance"`
	Status           string `json:"status"`
	ApprovedBy       string `json:"approved_by,omitempty"`
	ApprovedAt       string `json:"approved_at,omitempty"`
	Notes            string `json:"notes,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	// Read-side decoration, never persisted.
	ProgressPercent string `json:"progress_percent,omitempty"`
	BalanceAnomaly  bool   `json:"balance_anomaly,omitempty"`
}

// Adjustment is one manual remaining-balance override, recorded as an
// explicit event instead of a silent field overwrite.
type Adjustment struct {
	ID         string `json:"id"`
	LoanID     string `json:"loan_id"`
	Actor      string `json:"actor"`
	OldBalance string `json:"old_balance"`
	NewBalance string `json:"new_balance"`
	Reason     string `json:"reason"`
	CreatedAt  string `json:"created_at"`
}

// ScheduleEntry is one projected installment in wire form.
type ScheduleEntry struct {
	InstallmentNumber int    `json:"installment_number"`
	DueDate           string `json:"due_date"`
	PrincipalAmount   string `json:"principal_amount"`
	InterestAmount    string `json:"interest_amount"`
	TotalAmount       string `json:"total_amount"`
	RemainingAfter    string `json:"remaining_balance_after"`
	IsPaid            bool   `json:"is_paid"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusActive, StatusPaidOff, StatusDefaulted, StatusCancelled:
		return true
	default:
		return false
	}
}

package types

const (
	KindPercentage = "percentage"
	KindFixed      = "fixed"
)

// Rule is a system-wide allowance applied to gross pay, either as a
// percentage of gross or as a fixed amount.
type Rule struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Value     string `json:"value"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

const (
	StatusPending   = "pending"
	StatusApplied   = "applied"
	StatusCancelled = "cancelled"
)

// Individual is a one-off allowance granted to a single staff member for
// one payroll period. Once applied it is part of payroll history and can
// no longer be cancelled.
type Individual struct {
	ID          string `json:"id"`
	StaffID     string `json:"staff_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Period      string `json:"period"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func ValidKind(s string) bool {
	return s == KindPercentage || s == KindFixed
}

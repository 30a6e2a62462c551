package types

const (
	EmploymentActive    = "active"
	EmploymentSuspended = "suspended"
	EmploymentExited    = "exited"
)

type Staff struct {
	ID               string `json:"id"`
	StaffNumber      string `json:"staff_number"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	GradeLevel       int    `json:"grade_level"`
	Step             int    `json:"step"`
	EmploymentStatus string `json:"employment_status"`
	HireDate         string `json:"hire_date"`
	// BasePay is resolved from the CONJUSS table on reads; empty when the
	// table has no entry for the staff member's grade/step.
	BasePay   string `json:"base_pay,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func ValidEmploymentStatus(s string) bool {
	switch s {
	case EmploymentActive, EmploymentSuspended, EmploymentExited:
		return true
	default:
		return false
	}
}

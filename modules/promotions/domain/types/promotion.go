package types

const (
	TypeRegular   = "regular"
	TypeActing    = "acting"
	TypeTemporary = "temporary"
	TypeDemotion  = "demotion"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Promotion is a proposed grade/step movement for a staff member. The
// from fields snapshot the staff's position at proposal time; approval
// applies the to fields to the staff record in the same transaction.
type Promotion struct {
	ID      string `json:"id"`
	StaffID string `json:"staff_id"`
	Type    string `json:"type"`

	FromGradeLevel int `json:"from_grade_level"`
	FromStep       int `json:"from_step"`
	ToGradeLevel   int `json:"to_grade_level"`
	ToStep         int `json:"to_step"`

	EffectiveDate string `json:"effective_date"`
	Status        string `json:"status"`
	ApprovedBy    string `json:"approved_by,omitempty"`
	ApprovedAt    string `json:"approved_at,omitempty"`
	Reason        string `json:"reason,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func ValidType(s string) bool {
	switch s {
	case TypeRegular, TypeActing, TypeTemporary, TypeDemotion:
		return true
	default:
		return false
	}
}

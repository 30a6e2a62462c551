package types

// Cooperative is a third-party lender through which a staff loan may be
// brokered. Loans without one are direct loans.
type Cooperative struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	ContactPerson       string `json:"contact_person"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	Address             string `json:"address"`
	DefaultInterestRate string `json:"default_interest_rate"`
	IsActive            bool   `json:"is_active"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

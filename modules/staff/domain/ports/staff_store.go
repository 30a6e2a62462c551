package ports

import (
	"context"

	"github.com/adesina-femi/staffcore/modules/staff/domain/types"
)

type ListFilter struct {
	EmploymentStatus string
	GradeLevel       int
}

type StaffStore interface {
	CreateStaff(ctx context.Context, s types.Staff) (types.Staff, error)
	GetStaff(ctx context.Context, id string) (types.Staff, error)
	GetStaffByNumber(ctx context.Context, staffNumber string) (types.Staff, error)
	ListStaff(ctx context.Context, f ListFilter) ([]types.Staff, error)
	UpdateStaff(ctx context.Context, s types.Staff) (types.Staff, error)
}

package ports

import (
	"context"

	"github.com/adesina-femi/staffcore/modules/promotions/domain/types"
	stafftypes "github.com/adesina-femi/staffcore/modules/staff/domain/types"
)

type ListFilter struct {
	StaffID string
	Status  string
}

// PromotionStore persists promotion proposals. ApprovePromotion applies
// the staff grade/step change together with the status flip: the pg
// implementation does both writes in one transaction, the memory
// implementation calls into the staff store under its own lock.
type PromotionStore interface {
	CreatePromotion(ctx context.Context, p types.Promotion) (types.Promotion, error)
	GetPromotion(ctx context.Context, id string) (types.Promotion, error)
	ListPromotions(ctx context.Context, filter ListFilter) ([]types.Promotion, error)
	ApprovePromotion(ctx context.Context, id, approvedBy, approvedAt string) (types.Promotion, error)
	RejectPromotion(ctx context.Context, id, rejectedBy, rejectedAt string) (types.Promotion, error)
}

// StaffDirectory resolves the staff member a promotion targets.
type StaffDirectory interface {
	GetStaff(ctx context.Context, id string) (stafftypes.Staff, error)
}

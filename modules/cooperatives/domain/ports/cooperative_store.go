package ports

import (
	"context"

	"github.com/adesina-femi/staffcore/modules/cooperatives/domain/types"
)

type CooperativeStore interface {
	CreateCooperative(ctx context.Context, c types.Cooperative) (types.Cooperative, error)
	GetCooperative(ctx context.Context, id string) (types.Cooperative, error)
	GetCooperativeByName(ctx context.Context, name string) (types.Cooperative, error)
	ListCooperatives(ctx context.Context, activeOnly bool) ([]types.Cooperative, error)
	UpdateCooperative(ctx context.Context, c types.Cooperative) (types.Cooperative, error)
	DeleteCooperative(ctx context.Context, id string) error
}

// LoanCounter is the one question the cooperatives service asks the loans
// module: does anything still reference this organization. It guards the
// delete path.
type LoanCounter interface {
	CountLoansForCooperative(ctx context.Context, cooperativeID string) (int, error)
}

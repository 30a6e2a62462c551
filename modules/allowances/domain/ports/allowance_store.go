package ports

import (
	"context"

	"github.com/adesina-femi/staffcore/modules/allowances/domain/types"
	stafftypes "github.com/adesina-femi/staffcore/modules/staff/domain/types"
)

type RuleStore interface {
	CreateRule(ctx context.Context, r types.Rule) (types.Rule, error)
	GetRule(ctx context.Context, id string) (types.Rule, error)
	GetRuleByName(ctx context.Context, name string) (types.Rule, error)
	ListRules(ctx context.Context, activeOnly bool) ([]types.Rule, error)
	UpdateRule(ctx context.Context, r types.Rule) (types.Rule, error)
	DeleteRule(ctx context.Context, id string) error
}

type IndividualFilter struct {
	StaffID string
	Period  string
	Status  string
}

type IndividualStore interface {
	CreateIndividual(ctx context.Context, a types.Individual) (types.Individual, error)
	GetIndividual(ctx context.Context, id string) (types.Individual, error)
	ListIndividual(ctx context.Context, filter IndividualFilter) ([]types.Individual, error)

	// SetIndividualStatus moves pending to applied or cancelled; any
	// other transition is a conflict.
	SetIndividualStatus(ctx context.Context, id, status string) (types.Individual, error)
}

type StaffDirectory interface {
	GetStaff(ctx context.Context, id string) (stafftypes.Staff, error)
}

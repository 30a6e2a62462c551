package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/modules/allowances/domain/ports"
	"github.com/adesina-femi/staffcore/modules/allowances/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
)

var hundred = decimal.NewFromInt(100)

// ApplyRules totals the active rules against a gross amount. Percentage
// rules take their share of gross, fixed rules add their value as-is.
// Inactive rules contribute nothing. The result is rounded half-up to 2
// decimal places.
func ApplyRules(gross decimal.Decimal, rules []types.Rule) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		value, err := decimal.NewFromString(r.Value)
		if err != nil {
			return decimal.Zero, err
		}
		switch r.Kind {
		case types.KindPercentage:
			total = total.Add(gross.Mul(value).Div(hundred))
		case types.KindFixed:
			total = total.Add(value)
		}
	}
	return total.Round(2), nil
}

type AllowancesService struct {
	rules      ports.RuleStore
	individual ports.IndividualStore
	staff      ports.StaffDirectory
	trail      audit.Store
	log        *logrus.Logger
}

func NewAllowancesService(rules ports.RuleStore, individual ports.IndividualStore, staff ports.StaffDirectory, trail audit.Store, log *logrus.Logger) *AllowancesService {
	return &AllowancesService{rules: rules, individual: individual, staff: staff, trail: trail, log: log}
}

type RuleInput struct {
	Name     string
	Kind     string
	Value    string
	IsActive *bool
}

func parseRuleInput(in RuleInput) (types.Rule, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return types.Rule{}, httperr.NewBadRequest("name is required")
	}
	if !types.ValidKind(in.Kind) {
		return types.Rule{}, httperr.NewBadRequest("kind must be percentage or fixed")
	}
	value, err := decimal.NewFromString(strings.TrimSpace(in.Value))
	if err != nil {
		return types.Rule{}, httperr.NewBadRequest("value must be a decimal number")
	}
	if !value.IsPositive() {
		return types.Rule{}, httperr.NewBadRequest("value must be positive")
	}
	if in.Kind == types.KindPercentage && value.GreaterThan(hundred) {
		return types.Rule{}, httperr.NewBadRequest("a percentage rule cannot exceed 100")
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return types.Rule{Name: name, Kind: in.Kind, Value: value.String(), IsActive: active}, nil
}

func (s *AllowancesService) CreateRule(ctx context.Context, actor string, in RuleInput) (types.Rule, error) {
	rule, err := parseRuleInput(in)
	if err != nil {
		return types.Rule{}, err
	}
	if _, err := s.rules.GetRuleByName(ctx, rule.Name); err == nil {
		return types.Rule{}, httperr.NewConflict("an allowance rule with this name already exists")
	} else if !httperr.IsNotFound(err) {
		return types.Rule{}, err
	}

	created, err := s.rules.CreateRule(ctx, rule)
	if err != nil {
		return types.Rule{}, err
	}

	detail, _ := json.Marshal(map[string]any{"name": created.Name, "kind": created.Kind, "value": created.Value})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "allowance_rule.create", Entity: "allowance_rule", EntityID: created.ID, Detail: detail,
	}); err != nil {
		return types.Rule{}, err
	}
	s.log.Infof("allowance rule created: %s (%s)", created.ID, created.Name)
	return created, nil
}

func (s *AllowancesService) UpdateRule(ctx context.Context, actor, id string, in RuleInput) (types.Rule, error) {
	existing, err := s.rules.GetRule(ctx, id)
	if err != nil {
		return types.Rule{}, err
	}

	next, err := parseRuleInput(in)
	if err != nil {
		return types.Rule{}, err
	}
	next.ID = existing.ID

	updated, err := s.rules.UpdateRule(ctx, next)
	if err != nil {
		return types.Rule{}, err
	}

	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "allowance_rule.update", Entity: "allowance_rule", EntityID: updated.ID,
	}); err != nil {
		return types.Rule{}, err
	}
	return updated, nil
}

func (s *AllowancesService) DeleteRule(ctx context.Context, actor, id string) error {
	if err := s.rules.DeleteRule(ctx, id); err != nil {
		return err
	}
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "allowance_rule.delete", Entity: "allowance_rule", EntityID: id,
	}); err != nil {
		return err
	}
	return nil
}

func (s *AllowancesService) GetRule(ctx context.Context, id string) (types.Rule, error) {
	return s.rules.GetRule(ctx, id)
}

func (s *AllowancesService) ListRules(ctx context.Context, activeOnly bool) ([]types.Rule, error) {
	return s.rules.ListRules(ctx, activeOnly)
}

type IndividualInput struct {
	StaffID     string
	Type        string
	Description string
	Amount      string
	Period      string
}

func (s *AllowancesService) CreateIndividual(ctx context.Context, actor string, in IndividualInput) (types.Individual, error) {
	if strings.TrimSpace(in.Type) == "" {
		return types.Individual{}, httperr.NewBadRequest("type is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return types.Individual{}, httperr.NewBadRequest("description is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil {
		return types.Individual{}, httperr.NewBadRequest("amount must be a decimal number")
	}
	if !amount.IsPositive() {
		return types.Individual{}, httperr.NewBadRequest("amount must be positive")
	}
	if _, err := time.Parse("2006-01", in.Period); err != nil {
		return types.Individual{}, httperr.NewBadRequest("period must be YYYY-MM")
	}
	if _, err := s.staff.GetStaff(ctx, in.StaffID); err != nil {
		return types.Individual{}, err
	}

	created, err := s.individual.CreateIndividual(ctx, types.Individual{
		StaffID:     in.StaffID,
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
		Amount:      amount.StringFixed(2),
		Period:      in.Period,
		Status:      types.StatusPending,
	})
	if err != nil {
		return types.Individual{}, err
	}

	detail, _ := json.Marshal(map[string]any{"staff_id": created.StaffID, "type": created.Type, "amount": created.Amount, "period": created.Period})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "individual_allowance.create", Entity: "individual_allowance", EntityID: created.ID, Detail: detail,
	}); err != nil {
		return types.Individual{}, err
	}
	return created, nil
}

// MarkApplied records that payroll has consumed the allowance.
func (s *AllowancesService) MarkApplied(ctx context.Context, actor, id string) (types.Individual, error) {
	updated, err := s.individual.SetIndividualStatus(ctx, id, types.StatusApplied)
	if err != nil {
		return types.Individual{}, err
	}
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "individual_allowance.apply", Entity: "individual_allowance", EntityID: updated.ID,
	}); err != nil {
		return types.Individual{}, err
	}
	return updated, nil
}

func (s *AllowancesService) Cancel(ctx context.Context, actor, id string) (types.Individual, error) {
	updated, err := s.individual.SetIndividualStatus(ctx, id, types.StatusCancelled)
	if err != nil {
		return types.Individual{}, err
	}
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "individual_allowance.cancel", Entity: "individual_allowance", EntityID: updated.ID,
	}); err != nil {
		return types.Individual{}, err
	}
	return updated, nil
}

func (s *AllowancesService) GetIndividual(ctx context.Context, id string) (types.Individual, error) {
	return s.individual.GetIndividual(ctx, id)
}

func (s *AllowancesService) ListIndividual(ctx context.Context, f ports.IndividualFilter) ([]types.Individual, error) {
	return s.individual.ListIndividual(ctx, f)
}

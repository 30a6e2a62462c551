package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/modules/cooperatives/domain/ports"
	"github.com/adesina-femi/staffcore/modules/cooperatives/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
)

type CooperativesService struct {
	store ports.CooperativeStore
	loans ports.LoanCounter
	trail audit.Store
	log   *logrus.Logger
}

func NewCooperativesService(store ports.CooperativeStore, loans ports.LoanCounter, trail audit.Store, log *logrus.Logger) *CooperativesService {
	return &CooperativesService{store: store, loans: loans, trail: trail, log: log}
}

type CooperativeInput struct {
	Name                string
	ContactPerson       string
	Phone               string
	Email               string
	Address             string
	DefaultInterestRate string
	IsActive            *bool
}

func validateCooperativeInput(in CooperativeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return httperr.NewBadRequest("name is required")
	}
	if in.DefaultInterestRate != "" {
		rate, err := decimal.NewFromString(in.DefaultInterestRate)
		if err != nil {
			return httperr.NewBadRequest("default_interest_rate must be a number")
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return httperr.NewBadRequest("default_interest_rate must be between 0 and 100")
		}
	}
	return nil
}

func (s *CooperativesService) Create(ctx context.Context, actor string, in CooperativeInput) (types.Cooperative, error) {
	if err := validateCooperativeInput(in); err != nil {
		return types.Cooperative{}, err
	}

	name := strings.TrimSpace(in.Name)
	if _, err := s.store.GetCooperativeByName(ctx, name); err == nil {
		return types.Cooperative{}, httperr.NewConflict("a cooperative with this name already exists")
	} else if !httperr.IsNotFound(err) {
		return types.Cooperative{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	created, err := s.store.CreateCooperative(ctx, types.Cooperative{
		Name:                name,
		ContactPerson:       strings.TrimSpace(in.ContactPerson),
		Phone:               strings.TrimSpace(in.Phone),
		Email:               strings.TrimSpace(in.Email),
		Address:             strings.TrimSpace(in.Address),
		DefaultInterestRate: in.DefaultInterestRate,
		IsActive:            active,
	})
	if err != nil {
		return types.Cooperative{}, err
	}

	detail, _ := json.Marshal(map[string]any{"name": created.Name})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "cooperative.create", Entity: "cooperative", EntityID: created.ID, Detail: detail,
	}); err != nil {
		return types.Cooperative{}, err
	}
	s.log.Infof("cooperative created: %s (%s)", created.ID, created.Name)
	return created, nil
}

func (s *CooperativesService) Get(ctx context.Context, id string) (types.Cooperative, error) {
	return s.store.GetCooperative(ctx, id)
}

func (s *CooperativesService) List(ctx context.Context, activeOnly bool) ([]types.Cooperative, error) {
	return s.store.ListCooperatives(ctx, activeOnly)
}

func (s *CooperativesService) Update(ctx context.Context, actor string, id string, in CooperativeInput) (types.Cooperative, error) {
	if err := validateCooperativeInput(in); err != nil {
		return types.Cooperative{}, err
	}

	existing, err := s.store.GetCooperative(ctx, id)
	if err != nil {
		return types.Cooperative{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name != existing.Name {
		if _, err := s.store.GetCooperativeByName(ctx, name); err == nil {
			return types.Cooperative{}, httperr.NewConflict("a cooperative with this name already exists")
		} else if !httperr.IsNotFound(err) {
			return types.Cooperative{}, err
		}
	}

	existing.Name = name
	existing.ContactPerson = strings.TrimSpace(in.ContactPerson)
	existing.Phone = strings.TrimSpace(in.Phone)
	existing.Email = strings.TrimSpace(in.Email)
	existing.Address = strings.TrimSpace(in.Address)
	existing.DefaultInterestRate = in.DefaultInterestRate
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}

	updated, err := s.store.UpdateCooperative(ctx, existing)
	if err != nil {
		return types.Cooperative{}, err
	}

	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "cooperative.update", Entity: "cooperative", EntityID: updated.ID,
	}); err != nil {
		return types.Cooperative{}, err
	}
	return updated, nil
}

// Delete removes an organization. It refuses while any loan still
// references it.
func (s *CooperativesService) Delete(ctx context.Context, actor string, id string) error {
	existing, err := s.store.GetCooperative(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.loans.CountLoansForCooperative(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return httperr.NewConflict("cooperative still has loans and cannot be deleted")
	}

	if err := s.store.DeleteCooperative(ctx, id); err != nil {
		return err
	}

	detail, _ := json.Marshal(map[string]any{"name": existing.Name})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "cooperative.delete", Entity: "cooperative", EntityID: id, Detail: detail,
	}); err != nil {
		return err
	}
	s.log.Infof("cooperative deleted: %s (%s)", id, existing.Name)
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/modules/promotions/domain/ports"
	"github.com/adesina-femi/staffcore/modules/promotions/domain/types"
	"github.com/adesina-femi/staffcore/pkg/conjuss"
	"github.com/adesina-femi/staffcore/pkg/httperr"
)

type PromotionsService struct {
	store  ports.PromotionStore
	staff  ports.StaffDirectory
	trail  audit.Store
	log    *logrus.Logger
	NowUTC func() time.Time
}

func NewPromotionsService(store ports.PromotionStore, staff ports.StaffDirectory, trail audit.Store, log *logrus.Logger) *PromotionsService {
	return &PromotionsService{
		store:  store,
		staff:  staff,
		trail:  trail,
		log:    log,
		NowUTC: func() time.Time { return time.Now().UTC() },
	}
}

type CreatePromotionInput struct {
	StaffID       string
	Type          string
	ToGradeLevel  int
	ToStep        int
	EffectiveDate string
	Reason        string
}

// movesUp reports whether (toGrade, toStep) sits strictly above
// (fromGrade, fromStep) in lexicographic grade-then-step order. A step
// drop inside the same grade is a downward move even when labelled a
// promotion.
func movesUp(fromGrade, fromStep, toGrade, toStep int) bool {
	if toGrade != fromGrade {
		return toGrade > fromGrade
	}
	return toStep > fromStep
}

func (s *PromotionsService) Create(ctx context.Context, actor string, in CreatePromotionInput) (types.Promotion, error) {
	if !types.ValidType(in.Type) {
		return types.Promotion{}, httperr.NewBadRequest("type must be regular, acting, temporary or demotion")
	}
	if !conjuss.ValidGradeLevel(in.ToGradeLevel) {
		return types.Promotion{}, httperr.NewBadRequest(fmt.Sprintf("to_grade_level must be between %d and %d", conjuss.MinGradeLevel, conjuss.MaxGradeLevel))
	}
	if !conjuss.ValidStep(in.ToStep) {
		return types.Promotion{}, httperr.NewBadRequest(fmt.Sprintf("to_step must be between %d and %d", conjuss.MinStep, conjuss.MaxStep))
	}
	effective, err := time.Parse("2006-01-02", in.EffectiveDate)
	if err != nil {
		return types.Promotion{}, httperr.NewBadRequest("effective_date must be YYYY-MM-DD")
	}
	today := s.NowUTC().Truncate(24 * time.Hour)
	if effective.Before(today) {
		return types.Promotion{}, httperr.NewBadRequest("effective_date cannot be in the past")
	}

	member, err := s.staff.GetStaff(ctx, in.StaffID)
	if err != nil {
		return types.Promotion{}, err
	}

	up := movesUp(member.GradeLevel, member.Step, in.ToGradeLevel, in.ToStep)
	if in.Type == types.TypeDemotion && up {
		return types.Promotion{}, httperr.NewBadRequest("a demotion must move to a lower grade/step")
	}
	if in.Type != types.TypeDemotion && !up {
		return types.Promotion{}, httperr.NewBadRequest("a promotion must move to a higher grade/step")
	}

	created, err := s.store.CreatePromotion(ctx, types.Promotion{
		StaffID:        in.StaffID,
		Type:           in.Type,
		FromGradeLevel: member.GradeLevel,
		FromStep:       member.Step,
		ToGradeLevel:   in.ToGradeLevel,
		ToStep:         in.ToStep,
		EffectiveDate:  effective.Format("2006-01-02"),
		Status:         types.StatusPending,
		Reason:         strings.TrimSpace(in.Reason),
	})
	if err != nil {
		return types.Promotion{}, err
	}

	detail, _ := json.Marshal(map[string]any{
		"type": created.Type,
		"from": fmt.Sprintf("GL%02d/S%02d", created.FromGradeLevel, created.FromStep),
		"to":   fmt.Sprintf("GL%02d/S%02d", created.ToGradeLevel, created.ToStep),
	})
	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "promotion.create", Entity: "promotion", EntityID: created.ID, Detail: detail,
	}); err != nil {
		return types.Promotion{}, err
	}
	s.log.Infof("promotion proposed: %s for staff %s", created.ID, created.StaffID)
	return created, nil
}

// Approve flips the promotion to approved and applies the new grade/step
// to the staff record in the same store operation. A promotion is decided
// at most once.
func (s *PromotionsService) Approve(ctx context.Context, actor, id string) (types.Promotion, error) {
	approved, err := s.store.ApprovePromotion(ctx, id, actor, s.NowUTC().Format(time.RFC3339))
	if err != nil {
		return types.Promotion{}, err
	}

	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "promotion.approve", Entity: "promotion", EntityID: approved.ID,
	}); err != nil {
		return types.Promotion{}, err
	}
	s.log.Infof("promotion approved: %s by %s", approved.ID, actor)
	return approved, nil
}

func (s *PromotionsService) Reject(ctx context.Context, actor, id string) (types.Promotion, error) {
	rejected, err := s.store.RejectPromotion(ctx, id, actor, s.NowUTC().Format(time.RFC3339))
	if err != nil {
		return types.Promotion{}, err
	}

	if _, err := s.trail.Append(ctx, audit.Entry{
		Actor: actor, Action: "promotion.reject", Entity: "promotion", EntityID: rejected.ID,
	}); err != nil {
		return types.Promotion{}, err
	}
	return rejected, nil
}

func (s *PromotionsService) Get(ctx context.Context, id string) (types.Promotion, error) {
	return s.store.GetPromotion(ctx, id)
}

func (s *PromotionsService) List(ctx context.Context, f ports.ListFilter) ([]types.Promotion, error) {
	return s.store.ListPromotions(ctx, f)
}

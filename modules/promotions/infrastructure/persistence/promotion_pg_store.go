package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/adesina-femi/staffcore/modules/promotions/domain/ports"
	"github.com/adesina-femi/staffcore/modules/promotions/domain/types"
	"github.com/adesina-femi/staffcore/pkg/httperr"
	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PGStore struct {
	pool pgBeginner
}

func NewPGStore(pool pgBeginner) *PGStore {
	return &PGStore{pool: pool}
}

var _ ports.PromotionStore = (*PGStore)(nil)

const promotionColumns = `
  id::text,
  staff_id::text,
  type,
  from_grade_level,
  from_step,
  to_grade_level,
  to_step,
  effective_date::text,
  status,
  COALESCE(approved_by, '') AS approved_by,
  COALESCE(approved_at::text, '') AS approved_at,
  COALESCE(reason, '') AS reason,
  created_at::text,
  updated_at::text`

func scanPromotion(row pgx.Row) (types.Promotion, error) {
	var p types.Promotion
	err := row.Scan(&p.ID, &p.StaffID, &p.Type,
		&p.FromGradeLevel, &p.FromStep, &p.ToGradeLevel, &p.ToStep,
		&p.EffectiveDate, &p.Status, &p.ApprovedBy, &p.ApprovedAt, &p.Reason,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Promotion{}, httperr.NewNotFound("promotion not found")
	}
	return p, err
}

func (s *PGStore) CreatePromotion(ctx context.Context, p types.Promotion) (types.Promotion, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Promotion{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Promotion{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanPromotion(tx.QueryRow(ctx, `
INSERT INTO promotions (id, staff_id, type, from_grade_level, from_step, to_grade_level, to_step, effective_date, status, reason)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8::date, $9, NULLIF($10, ''))
RETURNING `+promotionColumns,
		id, p.StaffID, p.Type, p.FromGradeLevel, p.FromStep, p.ToGradeLevel, p.ToStep, p.EffectiveDate, p.Status, p.Reason))
	if err != nil {
		return types.Promotion{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Promotion{}, err
	}
	return out, nil
}

func (s *PGStore) GetPromotion(ctx context.Context, id string) (types.Promotion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Promotion{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanPromotion(tx.QueryRow(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE id = $1::uuid`, id))
	if err != nil {
		return types.Promotion{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) ListPromotions(ctx context.Context, f ports.ListFilter) ([]types.Promotion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+promotionColumns+`
FROM promotions
WHERE ($1 = '' OR staff_id = $1::uuid)
  AND ($2 = '' OR status = $2)
ORDER BY created_at ASC, id ASC
`, f.StaffID, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

// ApprovePromotion flips the status and updates the staff grade/step in
// one transaction. Either both writes land or neither does.
func (s *PGStore) ApprovePromotion(ctx context.Context, id, approvedBy, approvedAt string) (types.Promotion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Promotion{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanPromotion(tx.QueryRow(ctx, `
UPDATE promotions
SET status = 'approved',
    approved_by = $2,
    approved_at = $3::timestamptz,
    updated_at = now()
WHERE id = $1::uuid AND status = 'pending'
RETURNING `+promotionColumns,
		id, approvedBy, approvedAt))
	if httperr.IsNotFound(err) {
		if existing, getErr := s.GetPromotion(ctx, id); getErr == nil {
			return types.Promotion{}, httperr.NewConflict("promotion is already " + existing.Status)
		}
		return types.Promotion{}, err
	}
	if err != nil {
		return types.Promotion{}, err
	}

	tag, err := tx.Exec(ctx, `
UPDATE staff SET grade_level = $2, step = $3, updated_at = now() WHERE id = $1::uuid
`, out.StaffID, out.ToGradeLevel, out.ToStep)
	if err != nil {
		return types.Promotion{}, err
	}
	if tag.RowsAffected() == 0 {
		return types.Promotion{}, httperr.NewNotFound("staff not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Promotion{}, err
	}
	return out, nil
}

func (s *PGStore) RejectPromotion(ctx context.Context, id, rejectedBy, rejectedAt string) (types.Promotion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Promotion{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanPromotion(tx.QueryRow(ctx, `
UPDATE promotions
SET status = 'rejected',
    approved_by = $2,
    approved_at = $3::timestamptz,
    updated_at = now()
WHERE id = $1::uuid AND status = 'pending'
RETURNING `+promotionColumns,
		id, rejectedBy, rejectedAt))
	if httperr.IsNotFound(err) {
		if existing, getErr := s.GetPromotion(ctx, id); getErr == nil {
			return types.Promotion{}, httperr.NewConflict("promotion is already " + existing.Status)
		}
		return types.Promotion{}, err
	}
	if err != nil {
		return types.Promotion{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Promotion{}, err
	}
	return out, nil
}

package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/adesina-femi/staffcore/modules/allowances/domain/ports"
	"github.com/adesina-femi/staffcore/modules/allowances/domain/types"
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

var (
	_ ports.RuleStore       = (*PGStore)(nil)
	_ ports.IndividualStore = (*PGStore)(nil)
)

const ruleColumns = `
  id::text,
  name,
  kind,
  value::text,
  is_active,
  created_at::text,
  updated_at::text`

func scanRule(row pgx.Row) (types.Rule, error) {
	var r types.Rule
	err := row.Scan(&r.ID, &r.Name, &r.Kind, &r.Value, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Rule{}, httperr.NewNotFound("allowance rule not found")
	}
	return r, err
}

func (s *PGStore) CreateRule(ctx context.Context, r types.Rule) (types.Rule, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Rule{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Rule{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanRule(tx.QueryRow(ctx, `
INSERT INTO allowance_rules (id, name, kind, value, is_active)
VALUES ($1::uuid, $2, $3, $4::numeric, $5)
RETURNING `+ruleColumns,
		id, r.Name, r.Kind, r.Value, r.IsActive))
	if err != nil {
		return types.Rule{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Rule{}, err
	}
	return out, nil
}

func (s *PGStore) GetRule(ctx context.Context, id string) (types.Rule, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Rule{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanRule(tx.QueryRow(ctx, `SELECT `+ruleColumns+` FROM allowance_rules WHERE id = $1::uuid`, id))
	if err != nil {
		return types.Rule{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) GetRuleByName(ctx context.Context, name string) (types.Rule, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Rule{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanRule(tx.QueryRow(ctx, `SELECT `+ruleColumns+` FROM allowance_rules WHERE name = $1`, name))
	if err != nil {
		return types.Rule{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) ListRules(ctx context.Context, activeOnly bool) ([]types.Rule, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+ruleColumns+`
FROM allowance_rules
WHERE ($1 = false OR is_active = true)
ORDER BY name ASC
`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) UpdateRule(ctx context.Context, r types.Rule) (types.Rule, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Rule{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanRule(tx.QueryRow(ctx, `
UPDATE allowance_rules
SET name = $2, kind = $3, value = $4::numeric, is_active = $5, updated_at = now()
WHERE id = $1::uuid
RETURNING `+ruleColumns,
		r.ID, r.Name, r.Kind, r.Value, r.IsActive))
	if err != nil {
		return types.Rule{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Rule{}, err
	}
	return out, nil
}

func (s *PGStore) DeleteRule(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `DELETE FROM allowance_rules WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httperr.NewNotFound("allowance rule not found")
	}
	return tx.Commit(ctx)
}

const individualColumns = `
  id::text,
  staff_id::text,
  type,
  description,
  amount::text,
  period,
  status,
  created_at::text,
  updated_at::text`

func scanIndividual(row pgx.Row) (types.Individual, error) {
	var a types.Individual
	err := row.Scan(&a.ID, &a.StaffID, &a.Type, &a.Description, &a.Amount, &a.Period, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Individual{}, httperr.NewNotFound("individual allowance not found")
	}
	return a, err
}

func (s *PGStore) CreateIndividual(ctx context.Context, a types.Individual) (types.Individual, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Individual{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Individual{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanIndividual(tx.QueryRow(ctx, `
INSERT INTO individual_allowances (id, staff_id, type, description, amount, period, status)
VALUES ($1::uuid, $2::uuid, $3, $4, $5::numeric, $6, $7)
RETURNING `+individualColumns,
		id, a.StaffID, a.Type, a.Description, a.Amount, a.Period, a.Status))
	if err != nil {
		return types.Individual{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Individual{}, err
	}
	return out, nil
}

func (s *PGStore) GetIndividual(ctx context.Context, id string) (types.Individual, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Individual{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanIndividual(tx.QueryRow(ctx, `SELECT `+individualColumns+` FROM individual_allowances WHERE id = $1::uuid`, id))
	if err != nil {
		return types.Individual{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) ListIndividual(ctx context.Context, f ports.IndividualFilter) ([]types.Individual, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+individualColumns+`
FROM individual_allowances
WHERE ($1 = '' OR staff_id = $1::uuid)
  AND ($2 = '' OR period = $2)
  AND ($3 = '' OR status = $3)
ORDER BY created_at ASC, id ASC
`, f.StaffID, f.Period, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Individual
	for rows.Next() {
		a, err := scanIndividual(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) SetIndividualStatus(ctx context.Context, id, status string) (types.Individual, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Individual{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanIndividual(tx.QueryRow(ctx, `
UPDATE individual_allowances
SET status = $2, updated_at = now()
WHERE id = $1::uuid AND status = 'pending'
RETURNING `+individualColumns,
		id, status))
	if httperr.IsNotFound(err) {
		if existing, getErr := s.GetIndividual(ctx, id); getErr == nil {
			return types.Individual{}, httperr.NewConflict("allowance is already " + existing.Status)
		}
		return types.Individual{}, err
	}
	if err != nil {
		return types.Individual{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Individual{}, err
	}
	return out, nil
}

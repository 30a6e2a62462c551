package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/adesina-femi/staffcore/modules/cooperatives/domain/ports"
	"github.com/adesina-femi/staffcore/modules/cooperatives/domain/types"
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

var _ ports.CooperativeStore = (*PGStore)(nil)

const cooperativeColumns = `
  id::text,
  name,
  COALESCE(contact_person, '') AS contact_person,
  COALESCE(phone, '') AS phone,
  COALESCE(email, '') AS email,
  COALESCE(address, '') AS address,
  COALESCE(default_interest_rate::text, '') AS default_interest_rate,
  is_active,
  created_at::text,
  updated_at::text`

func scanCooperative(row pgx.Row) (types.Cooperative, error) {
	var c types.Cooperative
	err := row.Scan(&c.ID, &c.Name, &c.ContactPerson, &c.Phone, &c.Email, &c.Address,
		&c.DefaultInterestRate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Cooperative{}, httperr.NewNotFound("cooperative not found")
	}
	return c, err
}

func (s *PGStore) CreateCooperative(ctx context.Context, c types.Cooperative) (types.Cooperative, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Cooperative{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Cooperative{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanCooperative(tx.QueryRow(ctx, `
INSERT INTO cooperatives (id, name, contact_person, phone, email, address, default_interest_rate, is_active)
VALUES ($1::uuid, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, '')::numeric, $8)
RETURNING `+cooperativeColumns,
		id, c.Name, c.ContactPerson, c.Phone, c.Email, c.Address, c.DefaultInterestRate, c.IsActive))
	if err != nil {
		return types.Cooperative{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Cooperative{}, err
	}
	return out, nil
}

func (s *PGStore) GetCooperative(ctx context.Context, id string) (types.Cooperative, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Cooperative{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanCooperative(tx.QueryRow(ctx, `SELECT `+cooperativeColumns+` FROM cooperatives WHERE id = $1::uuid`, id))
	if err != nil {
		return types.Cooperative{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) GetCooperativeByName(ctx context.Context, name string) (types.Cooperative, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Cooperative{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanCooperative(tx.QueryRow(ctx, `SELECT `+cooperativeColumns+` FROM cooperatives WHERE name = $1`, name))
	if err != nil {
		return types.Cooperative{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) ListCooperatives(ctx context.Context, activeOnly bool) ([]types.Cooperative, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+cooperativeColumns+`
FROM cooperatives
WHERE ($1 = false OR is_active = true)
ORDER BY name ASC
`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Cooperative
	for rows.Next() {
		c, err := scanCooperative(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) UpdateCooperative(ctx context.Context, c types.Cooperative) (types.Cooperative, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Cooperative{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanCooperative(tx.QueryRow(ctx, `
UPDATE cooperatives
SET name = $2,
    contact_person = NULLIF($3, ''),
    phone = NULLIF($4, ''),
    email = NULLIF($5, ''),
    address = NULLIF($6, ''),
    default_interest_rate = NULLIF($7, '')::numeric,
    is_active = $8,
    updated_at = now()
WHERE id = $1::uuid
RETURNING `+cooperativeColumns,
		c.ID, c.Name, c.ContactPerson, c.Phone, c.Email, c.Address, c.DefaultInterestRate, c.IsActive))
	if err != nil {
		return types.Cooperative{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Cooperative{}, err
	}
	return out, nil
}

func (s *PGStore) DeleteCooperative(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `DELETE FROM cooperatives WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httperr.NewNotFound("cooperative not found")
	}
	return tx.Commit(ctx)
}

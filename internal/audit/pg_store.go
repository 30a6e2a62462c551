package audit

import (
	"context"

	"github.com/jackc/pgx/v5"

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

func (s *PGStore) Append(ctx context.Context, e Entry) (Entry, error) {
	if err := validateEntry(e); err != nil {
		return Entry{}, err
	}

	id, err := uuidv7.NewString()
	if err != nil {
		return Entry{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Entry{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	e.ID = id
	e.Detail = normalizeDetail(e.Detail)
	if err := tx.QueryRow(ctx, `
INSERT INTO audit_logs (id, actor, action, entity, entity_id, detail)
VALUES ($1::uuid, $2, $3, $4, $5, $6::jsonb)
RETURNING created_at::text
`, e.ID, e.Actor, e.Action, e.Entity, e.EntityID, []byte(e.Detail)).Scan(&e.CreatedAt); err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	limit := f.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	rows, err := tx.Query(ctx, `
SELECT
  id::text,
  actor,
  action,
  entity,
  entity_id,
  detail::text,
  created_at::text
FROM audit_logs
WHERE ($1 = '' OR entity = $1)
  AND ($2 = '' OR entity_id = $2)
  AND ($3 = '' OR actor = $3)
ORDER BY created_at DESC, id DESC
LIMIT $4
`, f.Entity, f.EntityID, f.Actor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var detail string
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Detail = []byte(detail)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

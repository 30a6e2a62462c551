package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/adesina-femi/staffcore/modules/staff/domain/ports"
	"github.com/adesina-femi/staffcore/modules/staff/domain/types"
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

var _ ports.StaffStore = (*PGStore)(nil)

const staffColumns = `
  id::text,
  staff_number,
  first_name,
  last_name,
  COALESCE(email, '') AS email,
  grade_level,
  step,
  employment_status,
  COALESCE(hire_date::text, '') AS hire_date,
  created_at::text,
  updated_at::text`

func scanStaff(row pgx.Row) (types.Staff, error) {
	var st types.Staff
	err := row.Scan(&st.ID, &st.StaffNumber, &st.FirstName, &st.LastName, &st.Email,
		&st.GradeLevel, &st.Step, &st.EmploymentStatus, &st.HireDate, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Staff{}, httperr.NewNotFound("staff not found")
	}
	return st, err
}

func (s *PGStore) CreateStaff(ctx context.Context, st types.Staff) (types.Staff, error) {
	id, err := uuidv7.NewString()
	if err != nil {
		return types.Staff{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Staff{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanStaff(tx.QueryRow(ctx, `
INSERT INTO staff (id, staff_number, first_name, last_name, email, grade_level, step, employment_status, hire_date)
VALUES ($1::uuid, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, NULLIF($9, '')::date)
RETURNING `+staffColumns,
		id, st.StaffNumber, st.FirstName, st.LastName, st.Email, st.GradeLevel, st.Step, st.EmploymentStatus, st.HireDate))
	if err != nil {
		return types.Staff{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Staff{}, err
	}
	return out, nil
}

func (s *PGStore) GetStaff(ctx context.Context, id string) (types.Staff, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Staff{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanStaff(tx.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1::uuid`, id))
	if err != nil {
		return types.Staff{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) GetStaffByNumber(ctx context.Context, staffNumber string) (types.Staff, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Staff{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanStaff(tx.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE staff_number = $1`, staffNumber))
	if err != nil {
		return types.Staff{}, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) ListStaff(ctx context.Context, f ports.ListFilter) ([]types.Staff, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT `+staffColumns+`
FROM staff
WHERE ($1 = '' OR employment_status = $1)
  AND ($2 = 0 OR grade_level = $2)
ORDER BY staff_number ASC
`, f.EmploymentStatus, f.GradeLevel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

func (s *PGStore) UpdateStaff(ctx context.Context, st types.Staff) (types.Staff, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Staff{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	out, err := scanStaff(tx.QueryRow(ctx, `
UPDATE staff
SET first_name = $2,
    last_name = $3,
    email = NULLIF($4, ''),
    employment_status = $5,
    updated_at = now()
WHERE id = $1::uuid
RETURNING `+staffColumns,
		st.ID, st.FirstName, st.LastName, st.Email, st.EmploymentStatus))
	if err != nil {
		return types.Staff{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Staff{}, err
	}
	return out, nil
}

package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

// Create implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_types (id, name, description, max_days_per_year, is_active)
		VALUES (uuidv7(), $1, $2, $3, TRUE)
		RETURNING id, is_active, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, lt.Name, lt.Description, lt.MaxDaysPerYear).Scan(
		&lt.ID, &lt.IsActive, &lt.CreatedAt, &lt.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
		return leave.LeaveType{}, err
	}

	return lt, nil
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, description, max_days_per_year, is_active, created_at, updated_at
		FROM leave_types
		WHERE id = $1
	`

	var lt leave.LeaveType
	err := q.QueryRow(ctx, query, id).Scan(
		&lt.ID, &lt.Name, &lt.Description, &lt.MaxDaysPerYear, &lt.IsActive,
		&lt.CreatedAt, &lt.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, err
	}
	return lt, nil
}

// GetByName implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByName(ctx context.Context, name string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, description, max_days_per_year, is_active, created_at, updated_at
		FROM leave_types
		WHERE LOWER(name) = LOWER($1)
	`

	var lt leave.LeaveType
	err := q.QueryRow(ctx, query, name).Scan(
		&lt.ID, &lt.Name, &lt.Description, &lt.MaxDaysPerYear, &lt.IsActive,
		&lt.CreatedAt, &lt.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, err
	}
	return lt, nil
}

// List implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) List(ctx context.Context) ([]leave.LeaveType, error) {
	return r.list(ctx, false)
}

// ListActive implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) ListActive(ctx context.Context) ([]leave.LeaveType, error) {
	return r.list(ctx, true)
}

func (r *leaveTypeRepositoryImpl) list(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, description, max_days_per_year, is_active, created_at, updated_at
		FROM leave_types
		WHERE ($1 = FALSE OR is_active = TRUE)
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]leave.LeaveType, 0)
	for rows.Next() {
		var lt leave.LeaveType
		if err := rows.Scan(
			&lt.ID, &lt.Name, &lt.Description, &lt.MaxDaysPerYear, &lt.IsActive,
			&lt.CreatedAt, &lt.UpdatedAt,
		); err != nil {
			return nil, err
		}
		types = append(types, lt)
	}

	return types, rows.Err()
}

// Update implements leave.LeaveTypeRepository. Only the non-nil fields
// of req are written. Rows are never deleted; disabling sets is_active.
func (r *leaveTypeRepositoryImpl) Update(ctx context.Context, req leave.UpdateLeaveTypeRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_types
		SET name              = COALESCE($2, name),
			description       = COALESCE($3, description),
			max_days_per_year = COALESCE($4, max_days_per_year),
			is_active         = COALESCE($5, is_active),
			updated_at        = $6
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		req.ID, req.Name, req.Description, req.MaxDaysPerYear, req.IsActive,
		time.Now(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return leave.ErrLeaveTypeNameExists
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return leave.ErrLeaveTypeNotFound
	}

	return nil
}
